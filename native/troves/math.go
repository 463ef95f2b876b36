package troves

import "math/big"

func checkedAdd(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if sum.Sign() < 0 {
		return nil, errArithmeticOverflow
	}
	return sum, nil
}

func checkedSub(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, errDecreaseExceedsTrove
	}
	return new(big.Int).Sub(a, b), nil
}

// collateralRatio computes collateral*price/debt at ONE precision. A debt
// of zero is treated as infinite collateralization.
func collateralRatio(collateral, price, debt *big.Int) *big.Int {
	if debt == nil || debt.Sign() == 0 {
		return new(big.Int).Lsh(big.NewInt(1), 255)
	}
	numerator := new(big.Int).Mul(collateral, price)
	return numerator.Div(numerator, debt)
}
