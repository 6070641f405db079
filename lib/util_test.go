package lib

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLenPrefixRoundTrip(t *testing.T) {
	segments := [][]byte{[]byte("a"), []byte("bb"), {0, 1, 2, 3}}
	joined := JoinLenPrefix(segments...)
	decoded, err := DecodeLengthPrefixed(joined)
	require.NoError(t, err)
	require.Equal(t, segments, decoded)
	// a length prefix running past the end is rejected
	_, err = DecodeLengthPrefixed([]byte{5, 1, 2})
	require.Error(t, err)
}

func TestHexBytesJSON(t *testing.T) {
	type wrapper struct {
		Data HexBytes `json:"data"`
	}
	bz, err := json.Marshal(wrapper{Data: []byte{0xde, 0xad}})
	require.NoError(t, err)
	require.JSONEq(t, `{"data":"dead"}`, string(bz))
	decoded := new(wrapper)
	require.NoError(t, json.Unmarshal(bz, decoded))
	require.Equal(t, HexBytes{0xde, 0xad}, decoded.Data)
}

func TestEventsTracker(t *testing.T) {
	tracker := &EventsTracker{}
	tracker.Refer("op-1")
	require.NoError(t, tracker.Add(&Event{EventType: EventTypeLocked}))
	require.NoError(t, tracker.Add(&Event{EventType: EventTypeSwap}))
	events := tracker.Reset()
	require.Len(t, events, 2)
	// sequence stamps completion order and the reference is carried
	require.EqualValues(t, 1, events[0].Sequence)
	require.EqualValues(t, 2, events[1].Sequence)
	require.Equal(t, "op-1", events[0].Reference)
	// reset clears the captured events
	require.Empty(t, tracker.Reset())
	// a nil tracker rejects additions
	var missing *EventsTracker
	require.Error(t, missing.Add(&Event{}))
}

func TestEventJSONRoundTrip(t *testing.T) {
	event := &Event{
		EventType: EventTypeReleased,
		Sequence:  3,
		ChainId:   1,
		Address:   HexBytes{0x01},
		Msg: &EventReleased{
			Asset:     HexBytes("asset"),
			Recipient: HexBytes{0x02},
			Amount:    7,
			ProofId:   HexBytes{0x03},
		},
	}
	bz, err := json.Marshal(event)
	require.NoError(t, err)
	decoded := new(Event)
	require.NoError(t, json.Unmarshal(bz, decoded))
	// the typed payload is recovered from the event type
	require.Equal(t, event, decoded)
}
