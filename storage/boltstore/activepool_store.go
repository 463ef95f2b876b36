package boltstore

import "nhbchain/native/activepool"

const bucketActivePoolState = "activepool_state"

var activePoolBuckets = []string{bucketActivePoolState}

// ActivePoolStore adapts Store to the Active Pool engine's persistence seam.
type ActivePoolStore struct {
	store *Store
}

func NewActivePoolStore(store *Store) *ActivePoolStore { return &ActivePoolStore{store: store} }

// ActivePoolBuckets lists the bucket names NewActivePoolStore requires.
func ActivePoolBuckets() []string { return activePoolBuckets }

func (s *ActivePoolStore) GetPoolState() (*activepool.PoolState, error) {
	var out activepool.PoolState
	found, err := s.store.getJSON(bucketActivePoolState, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return activepool.NewGenesisPoolState(), nil
	}
	return &out, nil
}

func (s *ActivePoolStore) PutPoolState(p *activepool.PoolState) error {
	return s.store.putJSON(bucketActivePoolState, singletonKey, p)
}
