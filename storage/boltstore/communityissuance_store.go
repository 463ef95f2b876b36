package boltstore

import "nhbchain/native/communityissuance"

const bucketCommunityIssuanceState = "communityissuance_state"

var communityIssuanceBuckets = []string{bucketCommunityIssuanceState}

// CommunityIssuanceStore adapts Store to the Community Issuance engine's
// persistence seam.
type CommunityIssuanceStore struct {
	store *Store
}

func NewCommunityIssuanceStore(store *Store) *CommunityIssuanceStore {
	return &CommunityIssuanceStore{store: store}
}

// CommunityIssuanceBuckets lists the bucket names NewCommunityIssuanceStore requires.
func CommunityIssuanceBuckets() []string { return communityIssuanceBuckets }

func (s *CommunityIssuanceStore) GetIssuanceState() (*communityissuance.IssuanceState, error) {
	var out communityissuance.IssuanceState
	found, err := s.store.getJSON(bucketCommunityIssuanceState, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

func (s *CommunityIssuanceStore) PutIssuanceState(state *communityissuance.IssuanceState) error {
	return s.store.putJSON(bucketCommunityIssuanceState, singletonKey, state)
}
