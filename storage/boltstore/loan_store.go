package boltstore

import (
	"math/big"

	"nhbchain/crypto"
)

const (
	bucketLOANBalance     = "loan_balance"
	bucketLOANTotalSupply = "loan_total_supply"
)

var loanBuckets = []string{bucketLOANBalance, bucketLOANTotalSupply}

// LOANStore adapts Store to the LOAN ledger engine's persistence seam.
type LOANStore struct {
	store *Store
}

func NewLOANStore(store *Store) *LOANStore { return &LOANStore{store: store} }

// LOANBuckets lists the bucket names NewLOANStore requires.
func LOANBuckets() []string { return loanBuckets }

func (s *LOANStore) GetBalance(addr crypto.Address) (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketLOANBalance, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *LOANStore) PutBalance(addr crypto.Address, balance *big.Int) error {
	return s.store.putJSON(bucketLOANBalance, addr.String(), balance)
}

func (s *LOANStore) GetTotalSupply() (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketLOANTotalSupply, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *LOANStore) PutTotalSupply(total *big.Int) error {
	return s.store.putJSON(bucketLOANTotalSupply, singletonKey, total)
}
