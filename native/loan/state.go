package loan

import (
	"math/big"

	"nhbchain/crypto"
)

// engineState abstracts the LOAN balance ledger away from the engine.
type engineState interface {
	GetBalance(addr crypto.Address) (*big.Int, error)
	PutBalance(addr crypto.Address, balance *big.Int) error
	GetTotalSupply() (*big.Int, error)
	PutTotalSupply(total *big.Int) error
}

// LockRegistry is the LOAN ledger's view of the Vesting collaborator: the
// allow-list the time-gated admin transfer restriction consults.
type LockRegistry interface {
	IsRegisteredLock(addr crypto.Address) (bool, error)
}

// clock abstracts wall-clock time so tests can drive the lockout window
// deterministically.
type clock interface {
	NowUnixSeconds() int64
}
