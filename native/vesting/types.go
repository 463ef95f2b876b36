package vesting

import (
	"math/big"

	"nhbchain/crypto"
)

// CliffDurationSeconds is the lockup period the source's LockupContract
// scheme enforces before a beneficiary may withdraw: the entire locked
// balance becomes available at once one year after the lock was funded,
// with no linear vesting in between.
const CliffDurationSeconds = 365 * 24 * 60 * 60

// Lock records a single cliff-vesting allocation of LOAN.
type Lock struct {
	Beneficiary      crypto.Address
	Amount           *big.Int
	StartUnixSeconds int64
	Withdrawn        bool
}

// NewLock constructs a lock entry for the given beneficiary and amount,
// starting the cliff at startUnixSeconds.
func NewLock(beneficiary crypto.Address, amount *big.Int, startUnixSeconds int64) *Lock {
	return &Lock{
		Beneficiary:      beneficiary,
		Amount:           amount,
		StartUnixSeconds: startUnixSeconds,
	}
}

// Unlocked reports whether the cliff has elapsed as of nowUnixSeconds.
func (l *Lock) Unlocked(nowUnixSeconds int64) bool {
	return nowUnixSeconds >= l.StartUnixSeconds+CliffDurationSeconds
}
