package boltstore

import (
	"math/big"

	"nhbchain/crypto"
)

const (
	bucketFURFIBalance     = "furfi_balance"
	bucketFURFITotalSupply = "furfi_total_supply"
)

var furfiBuckets = []string{bucketFURFIBalance, bucketFURFITotalSupply}

// FURFIStore adapts Store to the FURFI ledger engine's persistence seam.
type FURFIStore struct {
	store *Store
}

func NewFURFIStore(store *Store) *FURFIStore { return &FURFIStore{store: store} }

// FURFIBuckets lists the bucket names NewFURFIStore requires.
func FURFIBuckets() []string { return furfiBuckets }

func (s *FURFIStore) GetBalance(addr crypto.Address) (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketFURFIBalance, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *FURFIStore) PutBalance(addr crypto.Address, balance *big.Int) error {
	return s.store.putJSON(bucketFURFIBalance, addr.String(), balance)
}

func (s *FURFIStore) GetTotalSupply() (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketFURFITotalSupply, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *FURFIStore) PutTotalSupply(total *big.Int) error {
	return s.store.putJSON(bucketFURFITotalSupply, singletonKey, total)
}
