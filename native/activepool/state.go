package activepool

import (
	"math/big"

	"nhbchain/crypto"
)

// engineState abstracts Active Pool persistence away from the engine.
type engineState interface {
	GetPoolState() (*PoolState, error)
	PutPoolState(p *PoolState) error
}

// CollateralLedger is the Active Pool's view of the FURFI ledger: the only
// operation it needs is a plain balance transfer between module-owned
// addresses and depositor addresses.
type CollateralLedger interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}
