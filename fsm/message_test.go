package fsm

import (
	"testing"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/stretchr/testify/require"
)

func TestInstructionRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		msg    MessageI
	}{
		{
			name:   "lock",
			detail: "a lock instruction survives the wire format",
			msg: &MessageLock{
				Asset:         assetA,
				Sender:        senderAddr.Bytes(),
				Amount:        12_345,
				TargetChainId: 7,
				Recipient:     []byte("chain-7-recipient"),
			},
		},
		{
			name:   "release",
			detail: "a release instruction survives the wire format",
			msg: &MessageRelease{
				Asset:     assetA,
				Authority: ownerAddr.Bytes(),
				Recipient: recvAddr.Bytes(),
				Amount:    99,
				ProofId:   testProofId(5),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bz, err := EncodeInstruction(test.msg)
			require.NoError(t, err)
			decoded, err := DecodeInstruction(bz)
			require.NoError(t, err)
			require.Equal(t, test.msg, decoded)
		})
	}
}

func TestEncodeInstructionRejectsOversizedSegment(t *testing.T) {
	// a 300 byte recipient overflows the one-byte length prefix, so encoding
	// must fail instead of producing a body that decodes to different fields
	_, err := EncodeInstruction(&MessageLock{
		Asset:         assetA,
		Sender:        senderAddr.Bytes(),
		Amount:        1,
		TargetChainId: 7,
		Recipient:     make([]byte, 300),
	})
	require.Error(t, err)
	require.Equal(t, lib.CodeInvalidInstruction, err.Code())
}

func TestDecodeInstructionRejectsGarbage(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		data   []byte
	}{
		{name: "empty", detail: "no data at all", data: nil},
		{name: "unknown tag", detail: "a tag outside the instruction set", data: []byte{9, 1, 2}},
		{name: "truncated lock", detail: "a lock tag with a mangled body", data: []byte{0, 200, 1}},
		{name: "wrong segment count", detail: "a release with too few segments", data: append([]byte{1}, lib.JoinLenPrefix([]byte("a"), []byte("b"))...)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeInstruction(test.data)
			require.Error(t, err)
			require.Equal(t, lib.CodeInvalidInstruction, err.Code())
		})
	}
}

func TestMessageCheck(t *testing.T) {
	tests := []struct {
		name          string
		detail        string
		msg           MessageI
		errorContains string
	}{
		{
			name:          "lock with short sender",
			detail:        "native addresses are exactly 20 bytes",
			msg:           &MessageLock{Asset: assetA, Sender: []byte{1}, Amount: 1, Recipient: []byte("r")},
			errorContains: "address is invalid",
		},
		{
			name:          "lock with empty recipient",
			detail:        "the foreign recipient may be any non-empty bytes",
			msg:           &MessageLock{Asset: assetA, Sender: senderAddr.Bytes(), Amount: 1},
			errorContains: "address is invalid",
		},
		{
			name:          "lock with empty asset",
			detail:        "an asset identifier is required",
			msg:           &MessageLock{Sender: senderAddr.Bytes(), Amount: 1, Recipient: []byte("r")},
			errorContains: "asset id is invalid",
		},
		{
			name:          "release with short proof",
			detail:        "proof ids are exactly 32 bytes",
			msg:           &MessageRelease{Asset: assetA, Authority: ownerAddr.Bytes(), Recipient: recvAddr.Bytes(), Amount: 1, ProofId: []byte{1, 2}},
			errorContains: "proof id is invalid",
		},
		{
			name:          "swap without direction",
			detail:        "the direction must be one of the two legs",
			msg:           &MessageSwap{PoolId: 1, Trader: senderAddr.Bytes(), AmountIn: 1},
			errorContains: "direction is invalid",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.ErrorContains(t, test.msg.Check(), test.errorContains)
		})
	}
}

func TestNewMessageFromName(t *testing.T) {
	for _, name := range []string{
		MessageLockName, MessageReleaseName, MessageAddLiquidityName,
		MessageRemoveLiquidityName, MessageSwapName,
	} {
		msg, err := NewMessageFromName(name)
		require.NoError(t, err)
		require.Equal(t, name, msg.Name())
	}
	_, err := NewMessageFromName("stake")
	require.Error(t, err)
	require.Equal(t, lib.CodeUnknownMsg, err.Code())
}
