package stabilitypool

import (
	"math/big"

	"github.com/holiman/uint256"

	"nhbchain/crypto"
)

// ONE is the fixed-point unit: all monetary quantities are expressed as
// non-negative integers in 18-decimal fixed point.
var ONE = big.NewInt(1_000_000_000_000_000_000)

// ScaleFactor is the running-product rescale step applied whenever P would
// otherwise drop below it, trading a scale-index increment for preserved
// precision.
var ScaleFactor = big.NewInt(1_000_000_000)

// moduleName identifies this module to the pause gate.
const moduleName = "stabilitypool"

// Deposit is a depositor's current principal and front-end tag. It is the
// only field touched directly by a caller; everything else needed to derive
// gains lives in the paired DepositSnapshot.
type Deposit struct {
	// InitialValue is the FURUSD principal recorded at the last touch.
	InitialValue *big.Int
	// FrontEndTag is the referrer this deposit is attributed to, or the zero
	// address if untagged.
	FrontEndTag crypto.Address
	// Tagged reports whether FrontEndTag is meaningful; a zero Address is a
	// valid front end in principle, so this can't be inferred from the
	// address alone.
	Tagged bool
}

// DepositSnapshot is the accumulator state captured the last time a
// depositor's record was touched. Compounded values are derived from the
// delta between this snapshot and the pool's current accumulators.
type DepositSnapshot struct {
	P     *big.Int
	S     *big.Int
	G     *big.Int
	Scale *uint256.Int
	Epoch *uint256.Int
}

// FrontEnd is a registered referrer. Once registered, the kickback rate is
// immutable for the lifetime of the pool.
type FrontEnd struct {
	KickbackRate *big.Int
	Registered   bool
}

// FrontEndStake is the last-recorded sum of deposits tagged to a front end.
type FrontEndStake struct {
	Stake *big.Int
}

// FrontEndSnapshot mirrors DepositSnapshot for front ends; front ends do not
// accrue a collateral gain of their own, so S is not tracked here.
type FrontEndSnapshot struct {
	P     *big.Int
	G     *big.Int
	Scale *uint256.Int
	Epoch *uint256.Int
}

// ScaleAndEpoch is a (epoch, scale) pair used as a map key for the
// epoch_to_scale_to_S / epoch_to_scale_to_G mappings.
type ScaleAndEpoch struct {
	Epoch uint256.Int
	Scale uint256.Int
}

// Key returns a comparable map key for a ScaleAndEpoch pair.
func (k ScaleAndEpoch) Key() [64]byte {
	var out [64]byte
	eb := k.Epoch.Bytes32()
	sb := k.Scale.Bytes32()
	copy(out[:32], eb[:])
	copy(out[32:], sb[:])
	return out
}

// PoolState holds the global accumulators owned exclusively by the Stability
// Pool core.
type PoolState struct {
	// P is the running product; always in (0, ONE] and never zero.
	P *big.Int
	// CurrentScale and CurrentEpoch are the counters that key the S/G
	// mappings and bound how far a stale snapshot can be from current.
	CurrentScale *uint256.Int
	CurrentEpoch *uint256.Int
	// TotalFURUSDDeposits is the sum of all depositors' compounded
	// deposits, maintained incrementally.
	TotalFURUSDDeposits *big.Int
	// FURFIBalance is the pool's authoritative mirror of collateral it
	// controls; it is never read from a live token balance.
	FURFIBalance *big.Int

	// LastLOANError, LastFURFIErrorOffset, and LastFURUSDLossErrorOffset
	// are the feedback error-correction residues described in the
	// accumulator design.
	LastLOANError             *big.Int
	LastFURFIErrorOffset      *big.Int
	LastFURUSDLossErrorOffset *big.Int
}

// NewGenesisPoolState returns the pool state as it exists before any
// operation has ever been applied: P=ONE, scale=0, epoch=0, all sums zero.
func NewGenesisPoolState() *PoolState {
	return &PoolState{
		P:                         new(big.Int).Set(ONE),
		CurrentScale:              uint256.NewInt(0),
		CurrentEpoch:              uint256.NewInt(0),
		TotalFURUSDDeposits:       big.NewInt(0),
		FURFIBalance:              big.NewInt(0),
		LastLOANError:             big.NewInt(0),
		LastFURFIErrorOffset:      big.NewInt(0),
		LastFURUSDLossErrorOffset: big.NewInt(0),
	}
}

func zeroSnapshot() *DepositSnapshot {
	return &DepositSnapshot{
		P:     big.NewInt(0),
		S:     big.NewInt(0),
		G:     big.NewInt(0),
		Scale: uint256.NewInt(0),
		Epoch: uint256.NewInt(0),
	}
}

func zeroFrontEndSnapshot() *FrontEndSnapshot {
	return &FrontEndSnapshot{
		P:     big.NewInt(0),
		G:     big.NewInt(0),
		Scale: uint256.NewInt(0),
		Epoch: uint256.NewInt(0),
	}
}
