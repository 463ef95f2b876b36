package boltstore

import "nhbchain/native/defaultpool"

const bucketDefaultPoolState = "defaultpool_state"

var defaultPoolBuckets = []string{bucketDefaultPoolState}

// DefaultPoolStore adapts Store to the Default Pool engine's persistence seam.
type DefaultPoolStore struct {
	store *Store
}

func NewDefaultPoolStore(store *Store) *DefaultPoolStore { return &DefaultPoolStore{store: store} }

// DefaultPoolBuckets lists the bucket names NewDefaultPoolStore requires.
func DefaultPoolBuckets() []string { return defaultPoolBuckets }

func (s *DefaultPoolStore) GetPoolState() (*defaultpool.PoolState, error) {
	var out defaultpool.PoolState
	found, err := s.store.getJSON(bucketDefaultPoolState, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return defaultpool.NewGenesisPoolState(), nil
	}
	return &out, nil
}

func (s *DefaultPoolStore) PutPoolState(p *defaultpool.PoolState) error {
	return s.store.putJSON(bucketDefaultPoolState, singletonKey, p)
}
