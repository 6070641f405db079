package lib

import (
	"math"
	"math/big"
)

/*
	This file implements exact, overflow-checked integer math for share issuance
	and swap pricing. All intermediate products are computed in big.Int so a
	uint64 overflow is a hard error rather than a silent wrap, and all division
	truncates toward zero.
*/

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// ErrArithmeticOverflow is returned whenever a result cannot fit in a uint64
func ErrArithmeticOverflow() ErrorI {
	return NewError(CodeArithmeticOverflow, SettlementModule, "arithmetic overflow")
}

// IntegerSqrt() computes floor(sqrt(x)) using Newton's method: starting from
// z0 = (x+1)/2 and iterating z = (x/z + z)/2 until the iterate stops shrinking
func IntegerSqrt(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	// (x-1)/2+1 equals (x+1)/2 without overflowing at MaxUint64; the seed must
	// sit strictly below x for x > 1 or the loop exits before refining
	z, y := (x-1)/2+1, x
	for z < y {
		y = z
		z = (x/z + z) / 2
	}
	return y
}

// SqrtProduct() computes floor(sqrt(a*b)) with the product taken at full
// precision, so a*b overflowing uint64 is fine as long as the root fits
func SqrtProduct(a, b uint64) (uint64, ErrorI) {
	// products that fit a uint64 take the Newton path directly
	if b == 0 || a <= math.MaxUint64/b {
		return IntegerSqrt(a * b), nil
	}
	product := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	root := new(big.Int).Sqrt(product)
	return bigToUint64(root)
}

// SafeAdd() adds two uint64 values, erroring on overflow
func SafeAdd(a, b uint64) (uint64, ErrorI) {
	if a > math.MaxUint64-b {
		return 0, ErrArithmeticOverflow()
	}
	return a + b, nil
}

// SafeMul() multiplies two uint64 values, erroring on overflow
func SafeMul(a, b uint64) (uint64, ErrorI) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, ErrArithmeticOverflow()
	}
	return a * b, nil
}

// SafeMulDiv() computes (a*b)/c at full precision with truncating division
func SafeMulDiv(a, b, c uint64) (uint64, ErrorI) {
	if c == 0 {
		return 0, ErrDivideByZero()
	}
	res := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	res.Div(res, new(big.Int).SetUint64(c))
	return bigToUint64(res)
}

// SwapOutput() executes the overflow protected constant-product formula with
// the fee taken on the input side:
//
//	feeAdjustedIn = amountIn * (feeDenominator - feeNumerator)
//	amountOut     = (feeAdjustedIn * reserveOut) / (reserveIn * feeDenominator + feeAdjustedIn)
//
// which guarantees (reserveIn + amountIn) * (reserveOut - amountOut) >= reserveIn * reserveOut
func SwapOutput(amountIn, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (uint64, ErrorI) {
	if feeDenominator == 0 || feeDenominator <= feeNumerator {
		return 0, ErrInvalidArgument()
	}
	bIn := new(big.Int).SetUint64(amountIn)
	// feeAdjustedIn = amountIn * (feeDenominator - feeNumerator)
	feeAdjustedIn := new(big.Int).Mul(bIn, new(big.Int).SetUint64(feeDenominator-feeNumerator))
	// numerator = feeAdjustedIn * reserveOut
	numerator := new(big.Int).Mul(feeAdjustedIn, new(big.Int).SetUint64(reserveOut))
	// denominator = reserveIn * feeDenominator + feeAdjustedIn
	denominator := new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), new(big.Int).SetUint64(feeDenominator))
	denominator.Add(denominator, feeAdjustedIn)
	if denominator.Sign() == 0 {
		return 0, ErrDivideByZero()
	}
	// integer flooring
	return bigToUint64(new(big.Int).Div(numerator, denominator))
}

// MinUint64() returns the smaller of two uint64 values
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// bigToUint64() converts a big.Int back to uint64, erroring if it doesn't fit
func bigToUint64(b *big.Int) (uint64, ErrorI) {
	if b.Sign() < 0 || b.Cmp(maxUint64) > 0 {
		return 0, ErrArithmeticOverflow()
	}
	return b.Uint64(), nil
}
