package furfi

import (
	"math/big"

	"nhbchain/crypto"
)

// engineState abstracts the FURFI collateral balance ledger away from the
// engine, mirroring the lending engine's engineState interface.
type engineState interface {
	GetBalance(addr crypto.Address) (*big.Int, error)
	PutBalance(addr crypto.Address, balance *big.Int) error
	GetTotalSupply() (*big.Int, error)
	PutTotalSupply(total *big.Int) error
}
