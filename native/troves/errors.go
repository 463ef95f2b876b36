package troves

import "errors"

var (
	errNilState              = errors.New("troves engine: state not configured")
	errNilPriceOracle        = errors.New("troves engine: price oracle not configured")
	errNilCollateral         = errors.New("troves engine: FURFI ledger not configured")
	errNilStablecoin         = errors.New("troves engine: FURUSD ledger not configured")
	errNilActivePool         = errors.New("troves engine: active pool not configured")
	errNilStabilityPool      = errors.New("troves engine: stability pool not configured")
	errInvalidAmount         = errors.New("troves engine: amount must be positive")
	errTroveExists           = errors.New("troves engine: trove already open for this owner")
	errTroveNotFound         = errors.New("troves engine: no open trove for this owner")
	errBelowMinCollateralRatio = errors.New("troves engine: resulting collateral ratio below the minimum")
	errNotLiquidatable       = errors.New("troves engine: trove collateral ratio at or above the minimum")
	errOutstandingDebt       = errors.New("troves engine: cannot close a trove with outstanding debt other than the gas-compensation floor")
	errDecreaseExceedsTrove  = errors.New("troves engine: decrease exceeds trove balance")
	errZeroAdjustment        = errors.New("troves engine: adjustment must change collateral or debt")
	errArithmeticOverflow    = errors.New("troves engine: arithmetic overflow")
)
