package loan

import "errors"

var (
	errNilState            = errors.New("loan ledger: state not configured")
	errInvalidAmount       = errors.New("loan ledger: amount must be positive")
	errInsufficientBalance = errors.New("loan ledger: insufficient balance")
	errUnauthorizedMinter  = errors.New("loan ledger: caller not an authorized minter")
	errSupplyCapExceeded   = errors.New("loan ledger: mint would exceed the fixed supply cap")
	errTransferRestricted  = errors.New("loan ledger: restricted sender may not transfer to this recipient before the lockout window elapses")
	errOverflow            = errors.New("loan ledger: arithmetic overflow")
)
