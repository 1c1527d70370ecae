package aggregate

import "math/big"

func mul(values ...*big.Int) *big.Int {
	out := big.NewInt(1)
	for _, v := range values {
		out.Mul(out, orZero(v))
	}
	return out
}

// quo truncates toward zero. Callers guard against a zero divisor.
func quo(x, y *big.Int) *big.Int {
	return new(big.Int).Quo(orZero(x), y)
}

func add(values ...*big.Int) *big.Int {
	out := new(big.Int)
	for _, v := range values {
		out.Add(out, orZero(v))
	}
	return out
}

func isZero(v *big.Int) bool {
	return v == nil || v.Sign() == 0
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// usdValue converts a token amount into a PRECISION-scaled USD value.
func usdValue(amount, price *big.Int, p Params) *big.Int {
	return quo(mul(amount, price), p.TokenUnit)
}
