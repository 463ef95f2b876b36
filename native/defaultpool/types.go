package defaultpool

import "math/big"

// PoolState tracks the Default Pool's holdings via an internal counter,
// the decision recorded for the source's two overlapping DefaultPool
// variants: the internal-counter model resists a forced FURFI transfer
// straight to the pool address inflating accounted collateral, matching the
// Active Pool.
type PoolState struct {
	FURFIBalance *big.Int
	FURUSDDebt   *big.Int
}

// NewGenesisPoolState returns the zero-value Default Pool state.
func NewGenesisPoolState() *PoolState {
	return &PoolState{FURFIBalance: big.NewInt(0), FURUSDDebt: big.NewInt(0)}
}
