package boltstore

import (
	"math/big"

	"nhbchain/crypto"
)

const (
	bucketFURUSDBalance     = "furusd_balance"
	bucketFURUSDTotalSupply = "furusd_total_supply"
)

var furusdBuckets = []string{bucketFURUSDBalance, bucketFURUSDTotalSupply}

// FURUSDStore adapts Store to the FURUSD ledger engine's persistence seam.
type FURUSDStore struct {
	store *Store
}

func NewFURUSDStore(store *Store) *FURUSDStore { return &FURUSDStore{store: store} }

// FURUSDBuckets lists the bucket names NewFURUSDStore requires.
func FURUSDBuckets() []string { return furusdBuckets }

func (s *FURUSDStore) GetBalance(addr crypto.Address) (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketFURUSDBalance, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *FURUSDStore) PutBalance(addr crypto.Address, balance *big.Int) error {
	return s.store.putJSON(bucketFURUSDBalance, addr.String(), balance)
}

func (s *FURUSDStore) GetTotalSupply() (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketFURUSDTotalSupply, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *FURUSDStore) PutTotalSupply(total *big.Int) error {
	return s.store.putJSON(bucketFURUSDTotalSupply, singletonKey, total)
}
