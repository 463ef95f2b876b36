package furfi

import "math/big"

func checkedAdd(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if sum.Sign() < 0 {
		return nil, errOverflow
	}
	return sum, nil
}

func checkedSub(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, errInsufficientBalance
	}
	return new(big.Int).Sub(a, b), nil
}
