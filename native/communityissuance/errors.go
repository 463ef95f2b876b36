package communityissuance

import "errors"

var (
	errNilState      = errors.New("community issuance: state not configured")
	errNilLOAN       = errors.New("community issuance: LOAN ledger not configured")
	errInvalidAmount = errors.New("community issuance: amount must be positive")
)
