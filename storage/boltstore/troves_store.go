package boltstore

import (
	"math/big"

	"nhbchain/crypto"
	"nhbchain/native/troves"
)

const (
	bucketTrove       = "troves_trove"
	bucketTroveTotals = "troves_system_totals"
	troveTotalsKey    = "singleton"
)

var trovesBuckets = []string{bucketTrove, bucketTroveTotals}

// TrovesStore adapts Store to the Trove engine's persistence seam.
type TrovesStore struct {
	store *Store
}

func NewTrovesStore(store *Store) *TrovesStore { return &TrovesStore{store: store} }

// TrovesBuckets lists the bucket names NewTrovesStore requires.
func TrovesBuckets() []string { return trovesBuckets }

type troveWire struct {
	Owner      string
	Collateral *big.Int
	Debt       *big.Int
	Status     troves.Status
}

func (s *TrovesStore) GetTrove(owner crypto.Address) (*troves.Trove, error) {
	var wire troveWire
	found, err := s.store.getJSON(bucketTrove, owner.String(), &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	decoded, err := crypto.DecodeAddress(wire.Owner)
	if err != nil {
		return nil, err
	}
	return &troves.Trove{Owner: decoded, Collateral: wire.Collateral, Debt: wire.Debt, Status: wire.Status}, nil
}

func (s *TrovesStore) PutTrove(owner crypto.Address, trove *troves.Trove) error {
	wire := troveWire{Owner: trove.Owner.String(), Collateral: trove.Collateral, Debt: trove.Debt, Status: trove.Status}
	return s.store.putJSON(bucketTrove, owner.String(), wire)
}

func (s *TrovesStore) GetSystemTotals() (*troves.SystemTotals, error) {
	var out troves.SystemTotals
	found, err := s.store.getJSON(bucketTroveTotals, troveTotalsKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return troves.NewGenesisSystemTotals(), nil
	}
	return &out, nil
}

func (s *TrovesStore) PutSystemTotals(t *troves.SystemTotals) error {
	return s.store.putJSON(bucketTroveTotals, troveTotalsKey, t)
}
