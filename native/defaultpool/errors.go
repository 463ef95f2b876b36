package defaultpool

import "errors"

var (
	errNilState           = errors.New("default pool: state not configured")
	errNilCollateral       = errors.New("default pool: collateral ledger not configured")
	errInvalidAmount       = errors.New("default pool: amount must be positive")
	errInsufficientFURFI   = errors.New("default pool: insufficient FURFI balance")
	errInsufficientDebt    = errors.New("default pool: debt decrease exceeds outstanding debt")
	errUnauthorizedCaller  = errors.New("default pool: caller not authorized")
)
