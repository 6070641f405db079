package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
)

const (
	AddressSize = 20       // the size of a principal address in bytes
	ProofSize   = HashSize // a proof id is the hash of a source-chain transaction
)

// AddressI is the interface for a settlement principal (a locker, liquidity
// provider, or the bridge authority)
type AddressI interface {
	Bytes() []byte
	String() string
	Equals(AddressI) bool
}

var _ AddressI = &Address{}

// Address is a 20-byte principal identifier
type Address []byte

func (a *Address) Bytes() []byte { return *a }

func (a *Address) String() string { return hex.EncodeToString(*a) }

func (a *Address) Equals(other AddressI) bool {
	if a == nil || other == nil {
		return false
	}
	return bytes.Equal(a.Bytes(), other.Bytes())
}

// MarshalJSON() serializes the Address as a hex string
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(a))
}

// UnmarshalJSON() deserializes the Address from a hex string
func (a *Address) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}
	bz, err := hex.DecodeString(s)
	if err != nil {
		return
	}
	*a = bz
	return
}

// NewAddress() converts address bytes into the Address object
func NewAddress(bz []byte) AddressI {
	a := Address(bz)
	return &a
}

// NewAddressFromString() converts a hex string into the Address object
func NewAddressFromString(hexString string) (AddressI, error) {
	bz, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, err
	}
	if len(bz) != AddressSize {
		return nil, errors.New("invalid address size")
	}
	return NewAddress(bz), nil
}
