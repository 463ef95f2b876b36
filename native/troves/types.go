package troves

import (
	"math/big"

	"nhbchain/crypto"
)

// ONE is the fixed-point unit shared with the Stability Pool: 18 decimals.
var ONE = big.NewInt(1_000_000_000_000_000_000)

// DefaultMCR is the minimum collateral ratio (110%) a trove must stay above
// to avoid liquidation, the Liquity base-configuration constant referenced
// by name in the Stability Pool's external-interface section.
var DefaultMCR = big.NewInt(1_100_000_000_000_000_000)

// Status enumerates a trove's lifecycle state.
type Status int

const (
	StatusNonExistent Status = iota
	StatusActive
	StatusClosedByOwner
	StatusClosedByLiquidation
)

// Trove is a single collateralized debt position.
type Trove struct {
	Owner      crypto.Address
	Collateral *big.Int
	Debt       *big.Int
	Status     Status
}

// SystemTotals tracks aggregate open-trove collateral and debt, used for
// system-wide metrics independent of the Active Pool's own bookkeeping.
type SystemTotals struct {
	TotalCollateral *big.Int
	TotalDebt       *big.Int
	TroveCount      uint64
}

// NewGenesisSystemTotals returns the zero-value system totals.
func NewGenesisSystemTotals() *SystemTotals {
	return &SystemTotals{TotalCollateral: big.NewInt(0), TotalDebt: big.NewInt(0)}
}
