package collsurpluspool

import "errors"

var (
	errNilState           = errors.New("collateral surplus pool: state not configured")
	errNilCollateral       = errors.New("collateral surplus pool: collateral ledger not configured")
	errInvalidAmount       = errors.New("collateral surplus pool: amount must be positive")
	errNoSurplus           = errors.New("collateral surplus pool: no claimable surplus for account")
	errUnauthorizedCaller  = errors.New("collateral surplus pool: caller not authorized")
)
