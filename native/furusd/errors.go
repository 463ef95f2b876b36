package furusd

import "errors"

var (
	errNilState            = errors.New("furusd ledger: state not configured")
	errInvalidAmount       = errors.New("furusd ledger: amount must be positive")
	errInsufficientBalance = errors.New("furusd ledger: insufficient balance")
	errUnauthorizedMinter  = errors.New("furusd ledger: caller not an authorized minter")
	errUnauthorizedBurner  = errors.New("furusd ledger: caller not an authorized burner")
	errOverflow            = errors.New("furusd ledger: arithmetic overflow")
)
