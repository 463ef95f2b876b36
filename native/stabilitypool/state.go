package stabilitypool

import (
	"math/big"

	"nhbchain/crypto"
)

// engineState abstracts persistence away from the engine, mirroring the
// lending engine's storage seam: callers wire a concrete store (bbolt-backed
// in production, an in-memory map in tests) behind this interface.
type engineState interface {
	GetPoolState() (*PoolState, error)
	PutPoolState(*PoolState) error

	GetDeposit(addr crypto.Address) (*Deposit, error)
	PutDeposit(addr crypto.Address, d *Deposit) error
	GetDepositSnapshot(addr crypto.Address) (*DepositSnapshot, error)
	PutDepositSnapshot(addr crypto.Address, s *DepositSnapshot) error

	GetFrontEnd(addr crypto.Address) (*FrontEnd, error)
	PutFrontEnd(addr crypto.Address, f *FrontEnd) error
	GetFrontEndStake(addr crypto.Address) (*FrontEndStake, error)
	PutFrontEndStake(addr crypto.Address, s *FrontEndStake) error
	GetFrontEndSnapshot(addr crypto.Address) (*FrontEndSnapshot, error)
	PutFrontEndSnapshot(addr crypto.Address, s *FrontEndSnapshot) error

	// GetScaleToS and GetScaleToG read the epoch_to_scale_to_S and
	// epoch_to_scale_to_G mappings; a missing entry is treated as zero.
	GetScaleToS(key ScaleAndEpoch) (*big.Int, error)
	PutScaleToS(key ScaleAndEpoch, value *big.Int) error
	GetScaleToG(key ScaleAndEpoch) (*big.Int, error)
	PutScaleToG(key ScaleAndEpoch, value *big.Int) error
}
