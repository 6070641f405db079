package fsm

import (
	"github.com/crossbeam-network/crossbeam/lib"
)

// addEvent stamps and records an event on the machine's tracker
func (s *StateMachine) addEvent(eventType lib.EventType, address lib.HexBytes, msg any) {
	s.events.Add(&lib.Event{
		EventType: eventType,
		ChainId:   s.chainId,
		Address:   address,
		Msg:       msg,
	})
}

// AddLockedEvent emits an event for a successful lock operation
func (s *StateMachine) AddLockedEvent(msg *MessageLock) {
	s.addEvent(lib.EventTypeLocked, msg.Sender, &lib.EventLocked{
		Asset:         msg.Asset,
		Sender:        msg.Sender,
		Amount:        msg.Amount,
		TargetChainId: msg.TargetChainId,
		Recipient:     msg.Recipient,
	})
}

// AddReleasedEvent emits an event for a successful release operation
func (s *StateMachine) AddReleasedEvent(msg *MessageRelease) {
	s.addEvent(lib.EventTypeReleased, msg.Authority, &lib.EventReleased{
		Asset:     msg.Asset,
		Recipient: msg.Recipient,
		Amount:    msg.Amount,
		ProofId:   msg.ProofId,
	})
}

// AddLiquidityAddedEvent emits an event for a successful liquidity deposit
func (s *StateMachine) AddLiquidityAddedEvent(provider lib.HexBytes, poolId, amountA, amountB, shares uint64) {
	s.addEvent(lib.EventTypeLiquidityAdded, provider, &lib.EventLiquidityAdded{
		PoolId:       poolId,
		AmountA:      amountA,
		AmountB:      amountB,
		SharesIssued: shares,
	})
}

// AddLiquidityRemovedEvent emits an event for a successful liquidity withdrawal
func (s *StateMachine) AddLiquidityRemovedEvent(provider lib.HexBytes, poolId, amountA, amountB, shares uint64) {
	s.addEvent(lib.EventTypeLiquidityRemoved, provider, &lib.EventLiquidityRemoved{
		PoolId:  poolId,
		AmountA: amountA,
		AmountB: amountB,
		Shares:  shares,
	})
}

// AddSwapEvent emits an event for a successful swap
func (s *StateMachine) AddSwapEvent(trader lib.HexBytes, poolId, amountIn, amountOut uint64, direction SwapDirection) {
	s.addEvent(lib.EventTypeSwap, trader, &lib.EventSwap{
		PoolId:    poolId,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Direction: string(direction),
	})
}
