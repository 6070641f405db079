package lib

import (
	"encoding/json"
)

type EventType string

const (
	EventTypeLocked           EventType = "locked"
	EventTypeReleased         EventType = "released"
	EventTypeLiquidityAdded   EventType = "liquidity-added"
	EventTypeLiquidityRemoved EventType = "liquidity-removed"
	EventTypeSwap             EventType = "swap"
)

// Event is a flat record describing a single successful state change, emitted
// exactly once per operation and ordered by operation completion
type Event struct {
	EventType EventType `json:"eventType"`           // the kind of state change
	Sequence  uint64    `json:"sequence"`            // monotonic per-instance completion order
	ChainId   uint64    `json:"chainId"`             // the settlement instance the event belongs to
	Address   HexBytes  `json:"address,omitempty"`   // the caller that triggered the operation
	Reference string    `json:"reference,omitempty"` // opaque correlation string set by the host
	Msg       any       `json:"msg,omitempty"`       // one of the Event* payloads below
}

// EventLocked is the payload of a successful bridge lock
type EventLocked struct {
	Asset         HexBytes `json:"asset"`
	Sender        HexBytes `json:"sender"`
	Amount        uint64   `json:"amount"`
	TargetChainId uint64   `json:"targetChainId"`
	Recipient     HexBytes `json:"recipient"`
}

// EventReleased is the payload of a successful bridge release
type EventReleased struct {
	Asset     HexBytes `json:"asset"`
	Recipient HexBytes `json:"recipient"`
	Amount    uint64   `json:"amount"`
	ProofId   HexBytes `json:"proofId"`
}

// EventLiquidityAdded is the payload of a successful liquidity deposit
type EventLiquidityAdded struct {
	PoolId       uint64 `json:"poolId"`
	AmountA      uint64 `json:"amountA"`
	AmountB      uint64 `json:"amountB"`
	SharesIssued uint64 `json:"sharesIssued"`
}

// EventLiquidityRemoved is the payload of a successful liquidity withdrawal
type EventLiquidityRemoved struct {
	PoolId  uint64 `json:"poolId"`
	AmountA uint64 `json:"amountA"`
	AmountB uint64 `json:"amountB"`
	Shares  uint64 `json:"shares"`
}

// EventSwap is the payload of a successful pool swap
type EventSwap struct {
	PoolId    uint64 `json:"poolId"`
	AmountIn  uint64 `json:"amountIn"`
	AmountOut uint64 `json:"amountOut"`
	Direction string `json:"direction"`
}

// EventsTracker accumulates events during a single operation so they are only
// observable after the operation completed successfully
type EventsTracker struct {
	Reference string // opaque correlation string for the events
	Sequence  uint64 // the next sequence number to hand out
	Events    Events // the captured events
}

// Add() adds an event to the tracker, stamping the next sequence number
func (t *EventsTracker) Add(event *Event) (e ErrorI) {
	if t == nil {
		return ErrEmptyEventsTracker()
	}
	t.Sequence++
	event.Sequence = t.Sequence
	event.Reference = t.Reference
	t.Events = append(t.Events, event)
	return
}

// Rewind() drops every event stamped after the checkpoint and restores the
// sequence counter, so a failed operation leaves no trace in the stream
func (t *EventsTracker) Rewind(checkpoint uint64) {
	if t == nil {
		return
	}
	kept := t.Events[:0]
	for _, event := range t.Events {
		if event.Sequence <= checkpoint {
			kept = append(kept, event)
		}
	}
	t.Events, t.Sequence = kept, checkpoint
}

// Refer() sets a reference string for the event tracker
func (t *EventsTracker) Refer(s string) {
	if t == nil {
		return
	}
	t.Reference = s
}

// Reset() resets the event tracker and returns the captured events
func (t *EventsTracker) Reset() (e Events) {
	if t == nil {
		return
	}
	// save
	e = t.Events
	// reset
	t.Events, t.Reference = nil, ""
	// exit
	return
}

type Events []*Event

func (e Events) Len() int { return len(e) }

// eventJSON represents the JSON structure for Event unmarshalling
type eventJSON struct {
	EventType EventType       `json:"eventType"`
	Sequence  uint64          `json:"sequence"`
	ChainId   uint64          `json:"chainId"`
	Address   HexBytes        `json:"address,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Msg       json.RawMessage `json:"msg,omitempty"`
}

// UnmarshalJSON implements custom JSON unmarshalling for Event, recovering the
// typed payload based on the event type
func (e *Event) UnmarshalJSON(data []byte) error {
	var temp eventJSON
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	e.EventType = temp.EventType
	e.Sequence = temp.Sequence
	e.ChainId = temp.ChainId
	e.Address = temp.Address
	e.Reference = temp.Reference
	if len(temp.Msg) == 0 {
		return nil
	}
	switch temp.EventType {
	case EventTypeLocked:
		var msg EventLocked
		if err := json.Unmarshal(temp.Msg, &msg); err != nil {
			return err
		}
		e.Msg = &msg
	case EventTypeReleased:
		var msg EventReleased
		if err := json.Unmarshal(temp.Msg, &msg); err != nil {
			return err
		}
		e.Msg = &msg
	case EventTypeLiquidityAdded:
		var msg EventLiquidityAdded
		if err := json.Unmarshal(temp.Msg, &msg); err != nil {
			return err
		}
		e.Msg = &msg
	case EventTypeLiquidityRemoved:
		var msg EventLiquidityRemoved
		if err := json.Unmarshal(temp.Msg, &msg); err != nil {
			return err
		}
		e.Msg = &msg
	case EventTypeSwap:
		var msg EventSwap
		if err := json.Unmarshal(temp.Msg, &msg); err != nil {
			return err
		}
		e.Msg = &msg
	}
	return nil
}
