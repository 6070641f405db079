package lib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegerSqrt(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		input    uint64
		expected uint64
	}{
		{name: "zero", detail: "sqrt(0) = 0", input: 0, expected: 0},
		{name: "one", detail: "sqrt(1) = 1", input: 1, expected: 1},
		{name: "two", detail: "sqrt(2) floors to 1, the seed must refine", input: 2, expected: 1},
		{name: "three", detail: "sqrt(3) floors to 1", input: 3, expected: 1},
		{name: "below square", detail: "sqrt(8) floors to 2", input: 8, expected: 2},
		{name: "perfect square", detail: "sqrt(9) = 3", input: 9, expected: 3},
		{name: "above square", detail: "sqrt(10) floors to 3", input: 10, expected: 3},
		{name: "large", detail: "sqrt of the pool bootstrap product", input: 1_000_000 * 250_000, expected: 500_000},
		{name: "max", detail: "sqrt(MaxUint64) floors to 2^32-1", input: math.MaxUint64, expected: 1<<32 - 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, IntegerSqrt(test.input))
		})
	}
}

func TestIntegerSqrtBounds(t *testing.T) {
	// r^2 <= x < (r+1)^2 across a sweep of awkward values
	for _, x := range []uint64{2, 3, 15, 24, 99, 10_000, 123_456_789, 1 << 40, math.MaxUint64 - 1} {
		r := IntegerSqrt(x)
		require.LessOrEqual(t, r*r, x)
		if r < 1<<32-1 {
			require.Greater(t, (r+1)*(r+1), x)
		}
	}
}

func TestSqrtProduct(t *testing.T) {
	// the product is taken at full precision before the root
	out, err := SqrtProduct(math.MaxUint64, math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), out)
	out, err = SqrtProduct(1_000_000, 250_000)
	require.NoError(t, err)
	require.Equal(t, uint64(500_000), out)
	// the in-range path floors like the big.Int path
	out, err = SqrtProduct(2, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), out)
}

func TestSafeArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		fn       func() (uint64, ErrorI)
		expected uint64
		overflow bool
	}{
		{
			name:     "add in range",
			detail:   "ordinary addition passes through",
			fn:       func() (uint64, ErrorI) { return SafeAdd(1, 2) },
			expected: 3,
		},
		{
			name:     "add overflow",
			detail:   "a sum past MaxUint64 is a hard error",
			fn:       func() (uint64, ErrorI) { return SafeAdd(math.MaxUint64, 1) },
			overflow: true,
		},
		{
			name:     "mul in range",
			detail:   "ordinary multiplication passes through",
			fn:       func() (uint64, ErrorI) { return SafeMul(1 << 31, 2) },
			expected: 1 << 32,
		},
		{
			name:     "mul overflow",
			detail:   "a product past MaxUint64 is a hard error",
			fn:       func() (uint64, ErrorI) { return SafeMul(1<<32, 1<<32) },
			overflow: true,
		},
		{
			name:     "muldiv full precision",
			detail:   "the intermediate product may exceed uint64",
			fn:       func() (uint64, ErrorI) { return SafeMulDiv(math.MaxUint64, 10, 20) },
			expected: math.MaxUint64 / 2,
		},
		{
			name:     "muldiv truncates",
			detail:   "division floors toward zero",
			fn:       func() (uint64, ErrorI) { return SafeMulDiv(7, 3, 2) },
			expected: 10,
		},
		{
			name:     "muldiv overflowing quotient",
			detail:   "a quotient past MaxUint64 is a hard error",
			fn:       func() (uint64, ErrorI) { return SafeMulDiv(math.MaxUint64, 4, 2) },
			overflow: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := test.fn()
			if test.overflow {
				require.Error(t, err)
				require.Equal(t, CodeArithmeticOverflow, err.Code())
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, out)
		})
	}
}

func TestSwapOutput(t *testing.T) {
	tests := []struct {
		name       string
		detail     string
		amountIn   uint64
		reserveIn  uint64
		reserveOut uint64
		expected   uint64
	}{
		{
			name:       "reference trade",
			detail:     "10_000 in against (1_000_000, 250_000) nets 2_467 after the 0.3% fee",
			amountIn:   10_000,
			reserveIn:  1_000_000,
			reserveOut: 250_000,
			expected:   2_467,
		},
		{
			name:       "tiny trade floors to zero",
			detail:     "an output below one unit is floored away",
			amountIn:   1,
			reserveIn:  1_000_000,
			reserveOut: 250_000,
			expected:   0,
		},
		{
			name:       "huge input approaches the reserve",
			detail:     "the closed form can never reach the full output reserve",
			amountIn:   math.MaxUint64 / 2,
			reserveIn:  1_000,
			reserveOut: 1_000,
			expected:   999,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := SwapOutput(test.amountIn, test.reserveIn, test.reserveOut, 3, 1000)
			require.NoError(t, err)
			require.Equal(t, test.expected, out)
			require.Less(t, out, test.reserveOut)
			// the product of the post-trade reserves never decreases
			before, e := SafeMul(test.reserveIn, test.reserveOut)
			require.NoError(t, e)
			after, e := SafeMulDiv(test.reserveIn+test.amountIn, test.reserveOut-out, 1)
			if e == nil {
				require.GreaterOrEqual(t, after, before)
			}
		})
	}
	// the fee must be a proper fraction
	_, err := SwapOutput(1, 1, 1, 1000, 1000)
	require.Error(t, err)
}
