package activepool

import "errors"

var (
	errNilState         = errors.New("active pool: state not configured")
	errNilCollateral     = errors.New("active pool: collateral ledger not configured")
	errInvalidAmount     = errors.New("active pool: amount must be positive")
	errInsufficientFURFI = errors.New("active pool: insufficient FURFI balance")
	errInsufficientDebt  = errors.New("active pool: debt decrease exceeds outstanding debt")
	errUnauthorizedCaller = errors.New("active pool: caller not authorized")
)
