package vesting

import (
	"math/big"

	"nhbchain/crypto"
)

// LOANLedger is the collaborator locks and withdrawals move LOAN balances
// through.
type LOANLedger interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}

// clock abstracts wall-clock time so tests can drive the cliff
// deterministically.
type clock interface {
	NowUnixSeconds() int64
}
