package boltstore

import (
	"math/big"

	"nhbchain/crypto"
	"nhbchain/native/vesting"
)

const (
	bucketVestingLock      = "vesting_lock"
	bucketVestingNonce     = "vesting_next_nonce"
	vestingNonceSingletonK = "next"
)

var vestingBuckets = []string{bucketVestingLock, bucketVestingNonce}

// VestingStore adapts Store to the Vesting engine's persistence seam.
type VestingStore struct {
	store *Store
}

func NewVestingStore(store *Store) *VestingStore { return &VestingStore{store: store} }

// VestingBuckets lists the bucket names NewVestingStore requires.
func VestingBuckets() []string { return vestingBuckets }

type lockWire struct {
	Beneficiary      string
	Amount           *big.Int
	StartUnixSeconds int64
	Withdrawn        bool
}

func (s *VestingStore) GetLock(lockAddr crypto.Address) (*vesting.Lock, error) {
	var wire lockWire
	found, err := s.store.getJSON(bucketVestingLock, lockAddr.String(), &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	beneficiary, err := crypto.DecodeAddress(wire.Beneficiary)
	if err != nil {
		return nil, err
	}
	return &vesting.Lock{
		Beneficiary:      beneficiary,
		Amount:           wire.Amount,
		StartUnixSeconds: wire.StartUnixSeconds,
		Withdrawn:        wire.Withdrawn,
	}, nil
}

func (s *VestingStore) PutLock(lockAddr crypto.Address, lock *vesting.Lock) error {
	wire := lockWire{
		Beneficiary:      lock.Beneficiary.String(),
		Amount:           lock.Amount,
		StartUnixSeconds: lock.StartUnixSeconds,
		Withdrawn:        lock.Withdrawn,
	}
	return s.store.putJSON(bucketVestingLock, lockAddr.String(), wire)
}

func (s *VestingStore) GetNextLockNonce() (uint64, error) {
	var out uint64
	found, err := s.store.getJSON(bucketVestingNonce, vestingNonceSingletonK, &out)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return out, nil
}

func (s *VestingStore) PutNextLockNonce(nonce uint64) error {
	return s.store.putJSON(bucketVestingNonce, vestingNonceSingletonK, nonce)
}
