package fsm

import (
	"encoding/binary"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/crossbeam-network/crossbeam/lib/crypto"
)

const (
	MessageLockName            = "lock"
	MessageReleaseName         = "release"
	MessageAddLiquidityName    = "add-liquidity"
	MessageRemoveLiquidityName = "remove-liquidity"
	MessageSwapName            = "swap"
)

// MessageI is a settlement operation submitted to the state machine
type MessageI interface {
	// Name() returns the unique identifier of the message kind
	Name() string
	// Check() performs stateless sanity validation of the message
	Check() lib.ErrorI
}

// registeredMessages maps message names to prototypes for RPC decoding
var registeredMessages = map[string]func() MessageI{
	MessageLockName:            func() MessageI { return new(MessageLock) },
	MessageReleaseName:         func() MessageI { return new(MessageRelease) },
	MessageAddLiquidityName:    func() MessageI { return new(MessageAddLiquidity) },
	MessageRemoveLiquidityName: func() MessageI { return new(MessageRemoveLiquidity) },
	MessageSwapName:            func() MessageI { return new(MessageSwap) },
}

// NewMessageFromName() creates an empty message of the named kind
func NewMessageFromName(name string) (MessageI, lib.ErrorI) {
	prototype, ok := registeredMessages[name]
	if !ok {
		return nil, ErrUnknownMessageName(name)
	}
	return prototype(), nil
}

// MessageLock locks an amount of an asset into bridge custody for transfer
// to a recipient on another chain
type MessageLock struct {
	Asset         lib.HexBytes `json:"asset"`         // the asset being locked
	Sender        lib.HexBytes `json:"sender"`        // the principal funding the lock
	Amount        uint64       `json:"amount"`        // the amount to lock
	TargetChainId uint64       `json:"targetChainId"` // the destination chain
	Recipient     lib.HexBytes `json:"recipient"`     // the destination address
}

func (x *MessageLock) Name() string { return MessageLockName }

func (x *MessageLock) Check() lib.ErrorI {
	if x.Amount == 0 {
		return ErrInvalidAmount()
	}
	if err := checkAsset(x.Asset); err != nil {
		return err
	}
	if err := checkAddress(x.Sender); err != nil {
		return err
	}
	if len(x.Recipient) == 0 {
		return ErrInvalidAddress()
	}
	return nil
}

// MessageRelease pays out custodied funds to a recipient against a proof of
// a lock on the source chain; only the owner may submit it
type MessageRelease struct {
	Asset     lib.HexBytes `json:"asset"`     // the asset being released
	Authority lib.HexBytes `json:"authority"` // the submitting principal, must be the owner
	Recipient lib.HexBytes `json:"recipient"` // the principal receiving the funds
	Amount    uint64       `json:"amount"`    // the amount to release
	ProofId   lib.HexBytes `json:"proofId"`   // the source chain transaction hash
}

func (x *MessageRelease) Name() string { return MessageReleaseName }

func (x *MessageRelease) Check() lib.ErrorI {
	if x.Amount == 0 {
		return ErrInvalidAmount()
	}
	if err := checkAsset(x.Asset); err != nil {
		return err
	}
	if err := checkAddress(x.Authority); err != nil {
		return err
	}
	if err := checkAddress(x.Recipient); err != nil {
		return err
	}
	if len(x.ProofId) != crypto.ProofSize {
		return ErrInvalidProofId()
	}
	return nil
}

// MessageAddLiquidity deposits both pool assets and mints shares to the provider
type MessageAddLiquidity struct {
	PoolId   uint64       `json:"poolId"`   // the target pool
	Provider lib.HexBytes `json:"provider"` // the principal funding the deposit
	AmountA  uint64       `json:"amountA"`  // the deposit in asset A
	AmountB  uint64       `json:"amountB"`  // the deposit in asset B
}

func (x *MessageAddLiquidity) Name() string { return MessageAddLiquidityName }

func (x *MessageAddLiquidity) Check() lib.ErrorI {
	if x.AmountA == 0 || x.AmountB == 0 {
		return ErrInvalidAmount()
	}
	return checkAddress(x.Provider)
}

// MessageRemoveLiquidity burns shares and pays out the pro-rata reserves
type MessageRemoveLiquidity struct {
	PoolId   uint64       `json:"poolId"`   // the target pool
	Provider lib.HexBytes `json:"provider"` // the principal burning the shares
	Shares   uint64       `json:"shares"`   // the number of shares to burn
}

func (x *MessageRemoveLiquidity) Name() string { return MessageRemoveLiquidityName }

func (x *MessageRemoveLiquidity) Check() lib.ErrorI {
	if x.Shares == 0 {
		return ErrInvalidShares()
	}
	return checkAddress(x.Provider)
}

// SwapDirection selects which pool asset is being sold
type SwapDirection string

const (
	SwapDirectionAToB SwapDirection = "a-to-b"
	SwapDirectionBToA SwapDirection = "b-to-a"
)

// MessageSwap trades one pool asset for the other at the invariant price
type MessageSwap struct {
	PoolId    uint64        `json:"poolId"`    // the target pool
	Trader    lib.HexBytes  `json:"trader"`    // the principal trading
	AmountIn  uint64        `json:"amountIn"`  // the amount of the input asset sold
	Direction SwapDirection `json:"direction"` // which asset is the input
}

func (x *MessageSwap) Name() string { return MessageSwapName }

func (x *MessageSwap) Check() lib.ErrorI {
	if x.AmountIn == 0 {
		return ErrInvalidAmount()
	}
	if x.Direction != SwapDirectionAToB && x.Direction != SwapDirectionBToA {
		return ErrInvalidDirection()
	}
	return checkAddress(x.Trader)
}

// HandleMessage processes a settlement message against the state, committing
// the staged writes on success and discarding them on any failure
func (s *StateMachine) HandleMessage(msg MessageI) (err lib.ErrorI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// a halted machine accepts nothing
	if s.halted {
		return ErrHalted()
	}
	// stateless validation before touching the store
	if err = msg.Check(); err != nil {
		return
	}
	// tag the events of this operation with the hash of the message and
	// remember where the stream stood in case the operation fails
	if bz, e := lib.MarshalJSON(msg); e == nil {
		s.events.Refer(crypto.HashString(bz))
	}
	checkpoint := s.events.Sequence
	// route the message to its handler
	switch x := msg.(type) {
	case *MessageLock:
		err = s.HandleMessageLock(x)
	case *MessageRelease:
		err = s.HandleMessageRelease(x)
	case *MessageAddLiquidity:
		err = s.HandleMessageAddLiquidity(x)
	case *MessageRemoveLiquidity:
		err = s.HandleMessageRemoveLiquidity(x)
	case *MessageSwap:
		err = s.HandleMessageSwap(x)
	default:
		err = ErrUnknownMessage(msg)
	}
	// all-or-nothing: commit on success, discard both the staged writes and
	// the staged events on failure
	if err == nil {
		err = s.commit()
	}
	if err != nil {
		s.rollback()
		s.events.Rewind(checkpoint)
	}
	return
}

/*
	Binary instruction encoding for hosts that submit raw instruction data
	rather than JSON messages. Layout is a single tag byte followed by
	length-prefixed segments, with amounts as little-endian uint64.
*/

const (
	instructionTagLock    = byte(0)
	instructionTagRelease = byte(1)

	// maxSegmentBytes is the largest segment a single-byte length prefix can carry
	maxSegmentBytes = 255
)

// EncodeInstruction() serializes a bridge message to its wire form
func EncodeInstruction(msg MessageI) ([]byte, lib.ErrorI) {
	switch x := msg.(type) {
	case *MessageLock:
		body, err := encodeSegments(
			x.Asset, x.Sender, formatUint64LE(x.Amount), formatUint64LE(x.TargetChainId), x.Recipient)
		if err != nil {
			return nil, err
		}
		return lib.Append([]byte{instructionTagLock}, body), nil
	case *MessageRelease:
		body, err := encodeSegments(
			x.Asset, x.Authority, x.Recipient, formatUint64LE(x.Amount), x.ProofId)
		if err != nil {
			return nil, err
		}
		return lib.Append([]byte{instructionTagRelease}, body), nil
	default:
		return nil, ErrUnknownMessage(msg)
	}
}

// encodeSegments length-prefixes the segments, rejecting any segment the
// one-byte prefix would silently truncate
func encodeSegments(segments ...[]byte) ([]byte, lib.ErrorI) {
	for _, segment := range segments {
		if len(segment) > maxSegmentBytes {
			return nil, ErrInvalidInstruction()
		}
	}
	return lib.JoinLenPrefix(segments...), nil
}

// DecodeInstruction() parses raw instruction data into a bridge message
func DecodeInstruction(data []byte) (MessageI, lib.ErrorI) {
	if len(data) == 0 {
		return nil, ErrInvalidInstruction()
	}
	tag, body := data[0], data[1:]
	switch tag {
	case instructionTagLock:
		segments, err := lib.DecodeLengthPrefixed(body)
		if err != nil || len(segments) != 5 {
			return nil, ErrInvalidInstruction()
		}
		amount, e := parseUint64LE(segments[2])
		if e != nil {
			return nil, e
		}
		targetChainId, e := parseUint64LE(segments[3])
		if e != nil {
			return nil, e
		}
		return &MessageLock{
			Asset:         segments[0],
			Sender:        segments[1],
			Amount:        amount,
			TargetChainId: targetChainId,
			Recipient:     segments[4],
		}, nil
	case instructionTagRelease:
		segments, err := lib.DecodeLengthPrefixed(body)
		if err != nil || len(segments) != 5 {
			return nil, ErrInvalidInstruction()
		}
		amount, e := parseUint64LE(segments[3])
		if e != nil {
			return nil, e
		}
		return &MessageRelease{
			Asset:     segments[0],
			Authority: segments[1],
			Recipient: segments[2],
			Amount:    amount,
			ProofId:   segments[4],
		}, nil
	default:
		return nil, ErrInvalidInstruction()
	}
}

// formatUint64LE encodes a uint64 as 8 little-endian bytes
func formatUint64LE(u uint64) []byte {
	bz := make([]byte, 8)
	binary.LittleEndian.PutUint64(bz, u)
	return bz
}

// parseUint64LE decodes 8 little-endian bytes into a uint64
func parseUint64LE(bz []byte) (uint64, lib.ErrorI) {
	if len(bz) != 8 {
		return 0, ErrInvalidInstruction()
	}
	return binary.LittleEndian.Uint64(bz), nil
}

// checkAddress validates a native settlement address
func checkAddress(address lib.HexBytes) lib.ErrorI {
	if len(address) != crypto.AddressSize {
		return ErrInvalidAddress()
	}
	return nil
}

// checkAsset validates an asset identifier
func checkAsset(asset lib.HexBytes) lib.ErrorI {
	if len(asset) == 0 {
		return ErrInvalidAsset()
	}
	return nil
}
