package boltstore

import (
	"math/big"

	"nhbchain/crypto"
)

const (
	bucketCollSurplusClaimable = "collsurpluspool_claimable"
	bucketCollSurplusTotal     = "collsurpluspool_total"
)

var collSurplusPoolBuckets = []string{bucketCollSurplusClaimable, bucketCollSurplusTotal}

// CollSurplusPoolStore adapts Store to the Collateral Surplus Pool engine's
// persistence seam.
type CollSurplusPoolStore struct {
	store *Store
}

func NewCollSurplusPoolStore(store *Store) *CollSurplusPoolStore {
	return &CollSurplusPoolStore{store: store}
}

// CollSurplusPoolBuckets lists the bucket names NewCollSurplusPoolStore requires.
func CollSurplusPoolBuckets() []string { return collSurplusPoolBuckets }

func (s *CollSurplusPoolStore) GetClaimable(addr crypto.Address) (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketCollSurplusClaimable, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *CollSurplusPoolStore) PutClaimable(addr crypto.Address, amount *big.Int) error {
	return s.store.putJSON(bucketCollSurplusClaimable, addr.String(), amount)
}

func (s *CollSurplusPoolStore) GetTotalFURFI() (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketCollSurplusTotal, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *CollSurplusPoolStore) PutTotalFURFI(amount *big.Int) error {
	return s.store.putJSON(bucketCollSurplusTotal, singletonKey, amount)
}
