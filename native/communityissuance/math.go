package communityissuance

import "math/big"

var one = big.NewInt(1_000_000_000_000_000_000)

// decPow raises an 18-decimal fixed-point base to an integer exponent using
// exponentiation by squaring, mirroring the minute-by-minute decay curve
// computation the source's CommunityIssuance contract performs.
func decPow(base *big.Int, exponent uint64) *big.Int {
	if exponent == 0 {
		return new(big.Int).Set(one)
	}
	result := new(big.Int).Set(one)
	b := new(big.Int).Set(base)
	e := exponent
	for e > 0 {
		if e&1 == 1 {
			result = decMul(result, b)
		}
		b = decMul(b, b)
		e >>= 1
	}
	return result
}

func decMul(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	half := new(big.Int).Div(one, big.NewInt(2))
	product.Add(product, half)
	return product.Div(product, one)
}
