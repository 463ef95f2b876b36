package defaultpool

import (
	"math/big"

	"nhbchain/crypto"
)

// engineState abstracts Default Pool persistence away from the engine.
type engineState interface {
	GetPoolState() (*PoolState, error)
	PutPoolState(p *PoolState) error
}

// CollateralLedger is the Default Pool's view of the FURFI ledger.
type CollateralLedger interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}
