package boltstore

import (
	"encoding/hex"
	"math/big"

	"github.com/holiman/uint256"

	"nhbchain/crypto"
	"nhbchain/native/stabilitypool"
)

const (
	bucketStabilityPoolState            = "stabilitypool_state"
	bucketStabilityPoolDeposit          = "stabilitypool_deposit"
	bucketStabilityPoolDepositSnapshot  = "stabilitypool_deposit_snapshot"
	bucketStabilityPoolFrontEnd         = "stabilitypool_frontend"
	bucketStabilityPoolFrontEndStake    = "stabilitypool_frontend_stake"
	bucketStabilityPoolFrontEndSnapshot = "stabilitypool_frontend_snapshot"
	bucketStabilityPoolScaleToS         = "stabilitypool_scale_to_s"
	bucketStabilityPoolScaleToG         = "stabilitypool_scale_to_g"
)

var stabilityPoolBuckets = []string{
	bucketStabilityPoolState,
	bucketStabilityPoolDeposit,
	bucketStabilityPoolDepositSnapshot,
	bucketStabilityPoolFrontEnd,
	bucketStabilityPoolFrontEndStake,
	bucketStabilityPoolFrontEndSnapshot,
	bucketStabilityPoolScaleToS,
	bucketStabilityPoolScaleToG,
}

const singletonKey = "singleton"

// StabilityPoolStore adapts Store to the Stability Pool engine's persistence
// seam.
type StabilityPoolStore struct {
	store *Store
}

// NewStabilityPoolStore wraps store for use by a stabilitypool.Engine. The
// caller is responsible for ensuring store was opened with
// StabilityPoolBuckets().
func NewStabilityPoolStore(store *Store) *StabilityPoolStore {
	return &StabilityPoolStore{store: store}
}

// StabilityPoolBuckets lists the bucket names NewStabilityPoolStore requires.
func StabilityPoolBuckets() []string { return stabilityPoolBuckets }

type depositWire struct {
	InitialValue *big.Int
	FrontEndTag  string
	Tagged       bool
}

func (s *StabilityPoolStore) GetPoolState() (*stabilitypool.PoolState, error) {
	var out stabilitypool.PoolState
	found, err := s.store.getJSON(bucketStabilityPoolState, singletonKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return stabilitypool.NewGenesisPoolState(), nil
	}
	return &out, nil
}

func (s *StabilityPoolStore) PutPoolState(p *stabilitypool.PoolState) error {
	return s.store.putJSON(bucketStabilityPoolState, singletonKey, p)
}

func (s *StabilityPoolStore) GetDeposit(addr crypto.Address) (*stabilitypool.Deposit, error) {
	var wire depositWire
	found, err := s.store.getJSON(bucketStabilityPoolDeposit, addr.String(), &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return &stabilitypool.Deposit{InitialValue: big.NewInt(0)}, nil
	}
	deposit := &stabilitypool.Deposit{InitialValue: wire.InitialValue, Tagged: wire.Tagged}
	if wire.Tagged {
		tag, err := crypto.DecodeAddress(wire.FrontEndTag)
		if err != nil {
			return nil, err
		}
		deposit.FrontEndTag = tag
	}
	return deposit, nil
}

func (s *StabilityPoolStore) PutDeposit(addr crypto.Address, d *stabilitypool.Deposit) error {
	wire := depositWire{InitialValue: d.InitialValue, Tagged: d.Tagged}
	if d.Tagged {
		wire.FrontEndTag = d.FrontEndTag.String()
	}
	return s.store.putJSON(bucketStabilityPoolDeposit, addr.String(), wire)
}

func (s *StabilityPoolStore) GetDepositSnapshot(addr crypto.Address) (*stabilitypool.DepositSnapshot, error) {
	var out stabilitypool.DepositSnapshot
	found, err := s.store.getJSON(bucketStabilityPoolDepositSnapshot, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return &stabilitypool.DepositSnapshot{P: big.NewInt(0), S: big.NewInt(0), G: big.NewInt(0), Scale: uint256.NewInt(0), Epoch: uint256.NewInt(0)}, nil
	}
	return &out, nil
}

func (s *StabilityPoolStore) PutDepositSnapshot(addr crypto.Address, snap *stabilitypool.DepositSnapshot) error {
	return s.store.putJSON(bucketStabilityPoolDepositSnapshot, addr.String(), snap)
}

func (s *StabilityPoolStore) GetFrontEnd(addr crypto.Address) (*stabilitypool.FrontEnd, error) {
	var out stabilitypool.FrontEnd
	found, err := s.store.getJSON(bucketStabilityPoolFrontEnd, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return &stabilitypool.FrontEnd{KickbackRate: big.NewInt(0)}, nil
	}
	return &out, nil
}

func (s *StabilityPoolStore) PutFrontEnd(addr crypto.Address, f *stabilitypool.FrontEnd) error {
	return s.store.putJSON(bucketStabilityPoolFrontEnd, addr.String(), f)
}

func (s *StabilityPoolStore) GetFrontEndStake(addr crypto.Address) (*stabilitypool.FrontEndStake, error) {
	var out stabilitypool.FrontEndStake
	found, err := s.store.getJSON(bucketStabilityPoolFrontEndStake, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return &stabilitypool.FrontEndStake{Stake: big.NewInt(0)}, nil
	}
	return &out, nil
}

func (s *StabilityPoolStore) PutFrontEndStake(addr crypto.Address, stake *stabilitypool.FrontEndStake) error {
	return s.store.putJSON(bucketStabilityPoolFrontEndStake, addr.String(), stake)
}

func (s *StabilityPoolStore) GetFrontEndSnapshot(addr crypto.Address) (*stabilitypool.FrontEndSnapshot, error) {
	var out stabilitypool.FrontEndSnapshot
	found, err := s.store.getJSON(bucketStabilityPoolFrontEndSnapshot, addr.String(), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return &stabilitypool.FrontEndSnapshot{P: big.NewInt(0), G: big.NewInt(0), Scale: uint256.NewInt(0), Epoch: uint256.NewInt(0)}, nil
	}
	return &out, nil
}

func (s *StabilityPoolStore) PutFrontEndSnapshot(addr crypto.Address, snap *stabilitypool.FrontEndSnapshot) error {
	return s.store.putJSON(bucketStabilityPoolFrontEndSnapshot, addr.String(), snap)
}

func (s *StabilityPoolStore) GetScaleToS(key stabilitypool.ScaleAndEpoch) (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketStabilityPoolScaleToS, scaleEpochKey(key), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *StabilityPoolStore) PutScaleToS(key stabilitypool.ScaleAndEpoch, value *big.Int) error {
	return s.store.putJSON(bucketStabilityPoolScaleToS, scaleEpochKey(key), value)
}

func (s *StabilityPoolStore) GetScaleToG(key stabilitypool.ScaleAndEpoch) (*big.Int, error) {
	var out big.Int
	found, err := s.store.getJSON(bucketStabilityPoolScaleToG, scaleEpochKey(key), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return &out, nil
}

func (s *StabilityPoolStore) PutScaleToG(key stabilitypool.ScaleAndEpoch, value *big.Int) error {
	return s.store.putJSON(bucketStabilityPoolScaleToG, scaleEpochKey(key), value)
}

func scaleEpochKey(key stabilitypool.ScaleAndEpoch) string {
	raw := key.Key()
	return hex.EncodeToString(raw[:])
}
