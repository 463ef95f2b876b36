package vesting

import "errors"

var (
	errNilState         = errors.New("vesting: state not configured")
	errNilLOAN          = errors.New("vesting: LOAN ledger not configured")
	errInvalidAmount    = errors.New("vesting: amount must be positive")
	errInvalidBeneficiary = errors.New("vesting: beneficiary address required")
	errLockNotFound     = errors.New("vesting: lock not found")
	errNotBeneficiary   = errors.New("vesting: caller is not the lock beneficiary")
	errAlreadyWithdrawn = errors.New("vesting: lock already fully withdrawn")
	errStillLocked      = errors.New("vesting: cliff has not yet elapsed")
)
