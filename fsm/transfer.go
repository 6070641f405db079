package fsm

import (
	"errors"
	"sync"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/crossbeam-network/crossbeam/lib/crypto"
)

/*
	The asset transfer port is the seam between the settlement core and the
	chain-specific integration that actually moves funds. The core only
	depends on this interface; any non-success from the port aborts the
	whole operation with zero state change.
*/

// TransferPort moves funds between principals and the settlement custody
type TransferPort interface {
	// TransferIn() moves amount of asset from the principal into custody
	TransferIn(asset []byte, from crypto.AddressI, amount uint64) lib.ErrorI
	// TransferOut() moves amount of asset from custody to the principal
	TransferOut(asset []byte, to crypto.AddressI, amount uint64) lib.ErrorI
}

// FundedPort is an in-memory TransferPort backed by per-asset account
// balances, used by tests and local single-process deployments. It supports
// failure injection to exercise the abort paths of the settlement core.
type FundedPort struct {
	mu       sync.Mutex
	balances map[string]uint64 // asset/address -> balance
	custody  map[string]uint64 // asset -> custodied amount
	failIn   bool              // fail the next TransferIn
	failOut  bool              // fail the next TransferOut
}

// NewFundedPort() creates a new empty FundedPort
func NewFundedPort() *FundedPort {
	return &FundedPort{
		balances: make(map[string]uint64),
		custody:  make(map[string]uint64),
	}
}

// Fund() credits a principal's balance for an asset
func (p *FundedPort) Fund(asset []byte, addr crypto.AddressI, amount uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balances[accountKey(asset, addr.Bytes())] += amount
}

// BalanceOf() returns a principal's balance for an asset
func (p *FundedPort) BalanceOf(asset []byte, addr crypto.AddressI) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances[accountKey(asset, addr.Bytes())]
}

// Custody() returns the amount of an asset currently held in custody
func (p *FundedPort) Custody(asset []byte) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.custody[lib.BytesToString(asset)]
}

// FailNextTransferIn() makes the next TransferIn report failure
func (p *FundedPort) FailNextTransferIn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failIn = true
}

// FailNextTransferOut() makes the next TransferOut report failure
func (p *FundedPort) FailNextTransferOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOut = true
}

// TransferIn() implements TransferPort
func (p *FundedPort) TransferIn(asset []byte, from crypto.AddressI, amount uint64) lib.ErrorI {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failIn {
		p.failIn = false
		return ErrTransferFailed(errors.New("injected transfer-in failure"))
	}
	key := accountKey(asset, from.Bytes())
	if p.balances[key] < amount {
		return ErrTransferFailed(errors.New("insufficient account balance"))
	}
	p.balances[key] -= amount
	p.custody[lib.BytesToString(asset)] += amount
	return nil
}

// TransferOut() implements TransferPort
func (p *FundedPort) TransferOut(asset []byte, to crypto.AddressI, amount uint64) lib.ErrorI {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOut {
		p.failOut = false
		return ErrTransferFailed(errors.New("injected transfer-out failure"))
	}
	assetKey := lib.BytesToString(asset)
	if p.custody[assetKey] < amount {
		return ErrTransferFailed(errors.New("insufficient custody balance"))
	}
	p.custody[assetKey] -= amount
	p.balances[accountKey(asset, to.Bytes())] += amount
	return nil
}

func accountKey(asset, addr []byte) string {
	return lib.BytesToString(asset) + "/" + lib.BytesToString(addr)
}
