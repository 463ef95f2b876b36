package furfi

import "errors"

var (
	errNilState            = errors.New("furfi ledger: state not configured")
	errInvalidAmount       = errors.New("furfi ledger: amount must be positive")
	errInsufficientBalance = errors.New("furfi ledger: insufficient balance")
	errUnauthorizedMinter  = errors.New("furfi ledger: caller not an authorized minter")
	errOverflow            = errors.New("furfi ledger: arithmetic overflow")
)
