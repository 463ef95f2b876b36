package activepool

import "math/big"

// PoolState tracks the Active Pool's holdings via internal counters rather
// than a live query of the FURFI ledger, matching the internal-counter model
// chosen for the Default Pool: a forced FURFI transfer straight to the pool
// address cannot silently inflate accounted collateral.
type PoolState struct {
	FURFIBalance *big.Int
	FURUSDDebt   *big.Int
}

// NewGenesisPoolState returns the zero-value Active Pool state.
func NewGenesisPoolState() *PoolState {
	return &PoolState{FURFIBalance: big.NewInt(0), FURUSDDebt: big.NewInt(0)}
}
