package collsurpluspool

import (
	"math/big"

	"nhbchain/crypto"
)

// engineState abstracts Collateral Surplus Pool persistence away from the
// engine: a per-account claimable balance plus the pool's own FURFI total.
type engineState interface {
	GetClaimable(addr crypto.Address) (*big.Int, error)
	PutClaimable(addr crypto.Address, amount *big.Int) error
	GetTotalFURFI() (*big.Int, error)
	PutTotalFURFI(amount *big.Int) error
}

// CollateralLedger is the pool's view of the FURFI ledger.
type CollateralLedger interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}
