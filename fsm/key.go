package fsm

import (
	"encoding/binary"

	"github.com/crossbeam-network/crossbeam/lib"
)

/* Key.go contains prefix keys logic for the underlying store */

var (
	lockedBalancePrefix = []byte{1} // store key prefix for per-asset locked balances
	proofPrefix         = []byte{2} // store key prefix for processed release proofs
	poolPrefix          = []byte{3} // store key prefix for liquidity pools
	genesisPrefix       = []byte{4} // store key prefix for the applied-genesis marker
)

/*
- Prefixes are used to allow 'grouping' and organization in a schemaless key-value database environment

- Iterating over a prefix enables operations over groups of similar datastructures (balances, pools)

- Length prefixed append is used to be able to easily separate the segments of a key

- BigEndianEncoding is used for uint64 to accommodate the 'lexicographical' sorting nature of the key-value database
*/
func LockedBalancePrefix() []byte { return lib.JoinLenPrefix(lockedBalancePrefix) }
func ProofPrefix() []byte         { return lib.JoinLenPrefix(proofPrefix) }
func PoolPrefix() []byte          { return lib.JoinLenPrefix(poolPrefix) }
func GenesisKey() []byte          { return lib.JoinLenPrefix(genesisPrefix) }

func KeyForLockedBalance(asset []byte) []byte {
	return lib.JoinLenPrefix(lockedBalancePrefix, asset)
}

func KeyForProof(proofId []byte) []byte {
	return lib.JoinLenPrefix(proofPrefix, proofId)
}

func KeyForPool(id uint64) []byte {
	return lib.JoinLenPrefix(poolPrefix, formatUint64(id))
}

// IdFromKey() extracts the trailing uint64 segment of a prefixed key
func IdFromKey(k []byte) (uint64, lib.ErrorI) {
	segments, err := lib.DecodeLengthPrefixed(k)
	if err != nil || len(segments) != 2 || len(segments[1]) != 8 {
		return 0, ErrInvalidKey(k)
	}
	return binary.BigEndian.Uint64(segments[1]), nil
}

// AssetFromKey() extracts the trailing asset segment of a locked balance key
func AssetFromKey(k []byte) ([]byte, lib.ErrorI) {
	segments, err := lib.DecodeLengthPrefixed(k)
	if err != nil || len(segments) != 2 {
		return nil, ErrInvalidKey(k)
	}
	return segments[1], nil
}

func formatUint64(u uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, u)
	return b
}
