package fsm

import (
	"testing"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/stretchr/testify/require"
)

// newTestPoolMachine creates a machine with pool 1 committed and both assets
// funded for the sender
func newTestPoolMachine(t *testing.T, fundA, fundB uint64) (*StateMachine, *FundedPort) {
	sm, port := newTestStateMachine(t)
	require.NoError(t, sm.CreatePool(1, assetA, assetB))
	require.NoError(t, sm.commit())
	port.Fund(assetA, senderAddr, fundA)
	port.Fund(assetB, senderAddr, fundB)
	return sm, port
}

func TestHandleMessageAddLiquidity(t *testing.T) {
	tests := []struct {
		name           string
		detail         string
		presetDeposit  *MessageAddLiquidity
		amountA        uint64
		amountB        uint64
		errorContains  string
		expectedShares uint64
		expectedSupply uint64
	}{
		{
			name:           "first deposit",
			detail:         "the first deposit mints floor(sqrt(a*b)) shares",
			amountA:        1_000_000,
			amountB:        250_000,
			expectedShares: 500_000,
			expectedSupply: 500_000,
		},
		{
			name:   "pro rata deposit",
			detail: "later deposits mint by the lesser per-asset entitlement",
			presetDeposit: &MessageAddLiquidity{
				PoolId: 1, AmountA: 1_000_000, AmountB: 250_000,
			},
			amountA:        100_000,
			amountB:        25_000,
			expectedShares: 50_000,
			expectedSupply: 550_000,
		},
		{
			name:   "imbalanced deposit donates the excess",
			detail: "the smaller entitlement wins so the surplus side mints nothing extra",
			presetDeposit: &MessageAddLiquidity{
				PoolId: 1, AmountA: 1_000_000, AmountB: 250_000,
			},
			amountA:        100_000,
			amountB:        250_000,
			expectedShares: 50_000,
			expectedSupply: 550_000,
		},
		{
			name:          "dust deposit",
			detail:        "a deposit that mints zero shares is rejected",
			amountA:       1,
			amountB:       0,
			errorContains: "amount is invalid",
		},
		{
			name:   "rounding to zero shares",
			detail: "a later deposit below one share's worth is rejected",
			presetDeposit: &MessageAddLiquidity{
				PoolId: 1, AmountA: 1_000_000, AmountB: 250_000,
			},
			amountA:       1,
			amountB:       1,
			errorContains: "too small to mint",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm, _ := newTestPoolMachine(t, 2_000_000, 1_000_000)
			if test.presetDeposit != nil {
				test.presetDeposit.Provider = ownerAddr.Bytes()
				// fund and apply the preset liquidity from a second provider
				sm.port.(*FundedPort).Fund(assetA, ownerAddr, test.presetDeposit.AmountA)
				sm.port.(*FundedPort).Fund(assetB, ownerAddr, test.presetDeposit.AmountB)
				require.NoError(t, sm.HandleMessage(test.presetDeposit))
			}
			err := sm.HandleMessage(&MessageAddLiquidity{
				PoolId:   1,
				Provider: senderAddr.Bytes(),
				AmountA:  test.amountA,
				AmountB:  test.amountB,
			})
			if test.errorContains != "" {
				require.ErrorContains(t, err, test.errorContains)
				return
			}
			require.NoError(t, err)
			pool, e := sm.GetPool(1)
			require.NoError(t, e)
			require.Equal(t, test.expectedShares, pool.GetSharesFor(senderAddr.Bytes()))
			require.Equal(t, test.expectedSupply, pool.TotalShares)
		})
	}
}

func TestRemoveLiquidityRoundTrip(t *testing.T) {
	// the sole provider burns all shares and recovers the exact deposit
	sm, port := newTestPoolMachine(t, 1_000_000, 250_000)
	require.NoError(t, sm.HandleMessage(&MessageAddLiquidity{
		PoolId:   1,
		Provider: senderAddr.Bytes(),
		AmountA:  1_000_000,
		AmountB:  250_000,
	}))
	require.NoError(t, sm.HandleMessage(&MessageRemoveLiquidity{
		PoolId:   1,
		Provider: senderAddr.Bytes(),
		Shares:   500_000,
	}))
	require.EqualValues(t, 1_000_000, port.BalanceOf(assetA, senderAddr))
	require.EqualValues(t, 250_000, port.BalanceOf(assetB, senderAddr))
	pool, err := sm.GetPool(1)
	require.NoError(t, err)
	require.EqualValues(t, 0, pool.TotalShares)
	require.EqualValues(t, 0, pool.ReserveA)
	require.EqualValues(t, 0, pool.ReserveB)
}

func TestHandleMessageRemoveLiquidity(t *testing.T) {
	tests := []struct {
		name          string
		detail        string
		shares        uint64
		errorContains string
		expectedA     uint64
		expectedB     uint64
	}{
		{
			name:      "partial withdrawal",
			detail:    "a pro-rata withdrawal truncates toward zero",
			shares:    100_000,
			expectedA: 200_000,
			expectedB: 50_000,
		},
		{
			name:          "more shares than held",
			detail:        "burning more shares than the balance is rejected",
			shares:        600_000,
			errorContains: "insufficient share balance",
		},
		{
			name:          "zero shares",
			detail:        "a zero share burn is rejected statelessly",
			shares:        0,
			errorContains: "share amount is invalid",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm, port := newTestPoolMachine(t, 1_000_000, 250_000)
			require.NoError(t, sm.HandleMessage(&MessageAddLiquidity{
				PoolId:   1,
				Provider: senderAddr.Bytes(),
				AmountA:  1_000_000,
				AmountB:  250_000,
			}))
			err := sm.HandleMessage(&MessageRemoveLiquidity{
				PoolId:   1,
				Provider: senderAddr.Bytes(),
				Shares:   test.shares,
			})
			if test.errorContains != "" {
				require.ErrorContains(t, err, test.errorContains)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expectedA, port.BalanceOf(assetA, senderAddr))
			require.Equal(t, test.expectedB, port.BalanceOf(assetB, senderAddr))
		})
	}
}

func TestHandleMessageSwap(t *testing.T) {
	tests := []struct {
		name          string
		detail        string
		amountIn      uint64
		direction     SwapDirection
		errorContains string
		expectedOut   uint64
	}{
		{
			name:        "a to b",
			detail:      "10_000 A against (1_000_000, 250_000) nets 2_467 B after the fee",
			amountIn:    10_000,
			direction:   SwapDirectionAToB,
			expectedOut: 2_467,
		},
		{
			name:        "b to a",
			detail:      "the reverse direction prices off the mirrored reserves",
			amountIn:    10_000,
			direction:   SwapDirectionBToA,
			expectedOut: 38_350,
		},
		{
			name:          "dust input",
			detail:        "an input producing zero output is rejected",
			amountIn:      1,
			direction:     SwapDirectionAToB,
			errorContains: "drain the pool",
		},
		{
			name:          "bad direction",
			detail:        "an unknown direction is rejected statelessly",
			amountIn:      10_000,
			direction:     SwapDirection("sideways"),
			errorContains: "direction is invalid",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm, port := newTestPoolMachine(t, 1_000_000, 250_000)
			require.NoError(t, sm.HandleMessage(&MessageAddLiquidity{
				PoolId:   1,
				Provider: senderAddr.Bytes(),
				AmountA:  1_000_000,
				AmountB:  250_000,
			}))
			// fund the trader on the input side only so the output balance
			// reflects the payout alone
			inAsset := assetA
			if test.direction == SwapDirectionBToA {
				inAsset = assetB
			}
			port.Fund(inAsset, recvAddr, test.amountIn)
			before, e := sm.GetPool(1)
			require.NoError(t, e)
			err := sm.HandleMessage(&MessageSwap{
				PoolId:    1,
				Trader:    recvAddr.Bytes(),
				AmountIn:  test.amountIn,
				Direction: test.direction,
			})
			if test.errorContains != "" {
				require.ErrorContains(t, err, test.errorContains)
				return
			}
			require.NoError(t, err)
			after, e := sm.GetPool(1)
			require.NoError(t, e)
			outAsset, outBefore := assetB, before.ReserveB-after.ReserveB
			if test.direction == SwapDirectionBToA {
				outAsset, outBefore = assetA, before.ReserveA-after.ReserveA
			}
			require.Equal(t, test.expectedOut, outBefore)
			require.Equal(t, test.expectedOut, port.BalanceOf(outAsset, recvAddr))
			// the product never decreases across a successful swap
			require.True(t, reserveProduct(after.ReserveA, after.ReserveB).
				Cmp(reserveProduct(before.ReserveA, before.ReserveB)) >= 0)
		})
	}
}

func TestSwapNeverDrainsReserve(t *testing.T) {
	// even an enormous input cannot take the last unit of the output side
	sm, port := newTestPoolMachine(t, 1_000, 1_000)
	require.NoError(t, sm.HandleMessage(&MessageAddLiquidity{
		PoolId:   1,
		Provider: senderAddr.Bytes(),
		AmountA:  1_000,
		AmountB:  1_000,
	}))
	port.Fund(assetA, recvAddr, 1_000_000_000)
	require.NoError(t, sm.HandleMessage(&MessageSwap{
		PoolId:    1,
		Trader:    recvAddr.Bytes(),
		AmountIn:  1_000_000_000,
		Direction: SwapDirectionAToB,
	}))
	pool, err := sm.GetPool(1)
	require.NoError(t, err)
	require.Greater(t, pool.ReserveB, uint64(0))
}

func TestCreatePool(t *testing.T) {
	sm, _ := newTestStateMachine(t)
	require.NoError(t, sm.CreatePool(1, assetA, assetB))
	// duplicate ids are rejected
	err := sm.CreatePool(1, assetA, assetB)
	require.ErrorContains(t, err, "already exists")
	// identical assets are rejected
	err = sm.CreatePool(2, assetA, assetA)
	require.ErrorContains(t, err, "asset id is invalid")
	// unknown pools error on read
	_, err = sm.GetPool(9)
	require.ErrorContains(t, err, "does not exist")
}

func TestArithmeticOverflowRejected(t *testing.T) {
	// a reserve pushed past MaxUint64 is a hard failure before any transfer
	sm, _ := newTestPoolMachine(t, ^uint64(0), ^uint64(0))
	require.NoError(t, sm.HandleMessage(&MessageAddLiquidity{
		PoolId:   1,
		Provider: senderAddr.Bytes(),
		AmountA:  ^uint64(0) - 1,
		AmountB:  ^uint64(0) - 1,
	}))
	err := sm.HandleMessage(&MessageAddLiquidity{
		PoolId:   1,
		Provider: senderAddr.Bytes(),
		AmountA:  2,
		AmountB:  2,
	})
	require.Error(t, err)
	require.Equal(t, lib.CodeArithmeticOverflow, err.Code())
}
