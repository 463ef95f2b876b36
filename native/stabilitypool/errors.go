package stabilitypool

import "errors"

// Error taxonomy: authorization, precondition, arithmetic, and invariant
// failures are all fatal to the call that triggered them and leave no
// observable state change.
var (
	errNilState           = errors.New("stabilitypool: nil state")
	errNilPoolState       = errors.New("stabilitypool: pool state not initialized")
	errNotTroveManager    = errors.New("stabilitypool: caller is not the authorized trove manager")
	errZeroAmount         = errors.New("stabilitypool: amount must be greater than zero")
	errFrontEndUnregister = errors.New("stabilitypool: front end tag is not a registered front end")
	errCallerIsFrontEnd   = errors.New("stabilitypool: registered front ends may not hold deposits")
	errFrontEndExists     = errors.New("stabilitypool: front end already registered")
	errFrontEndHasDeposit = errors.New("stabilitypool: caller has an existing deposit and cannot register as a front end")
	errKickbackOutOfRange = errors.New("stabilitypool: kickback rate exceeds ONE")
	errNoDeposit          = errors.New("stabilitypool: caller has no deposit")
	errNoTrove            = errors.New("stabilitypool: caller has no active trove")
	errNoCollateralGain   = errors.New("stabilitypool: caller has no collateral gain to move")
	errUnderCollateralized = errors.New("stabilitypool: an under-collateralized trove exists")
	errDebtExceedsPool    = errors.New("stabilitypool: debt to offset exceeds total deposits")
	errInvariantPZero     = errors.New("stabilitypool: invariant violated, P is not positive")
	errArithmeticOverflow = errors.New("stabilitypool: arithmetic overflow")
	errArithmeticUnderflow = errors.New("stabilitypool: arithmetic underflow")
)
