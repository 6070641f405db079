package fsm

import (
	"sync"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/crossbeam-network/crossbeam/lib/crypto"
)

/*
	state.go holds the StateMachine: the deterministic settlement core for a
	single chain. All mutations flow through HandleMessage() under a single
	writer lock; a message either fully applies and commits or leaves the
	durable state untouched.
*/

// StateMachine is the per-chain settlement state: the bridge ledger of
// locked balances and processed proofs plus the liquidity pools
type StateMachine struct {
	chainId uint64
	owner   crypto.AddressI
	store   lib.RWStoreI
	port    TransferPort
	events  *lib.EventsTracker
	log     lib.LoggerI
	halted  bool
	mu      sync.Mutex
}

// New() creates a new StateMachine over the store
func New(chainId uint64, owner crypto.AddressI, store lib.RWStoreI, port TransferPort, log lib.LoggerI) *StateMachine {
	return &StateMachine{
		chainId: chainId,
		owner:   owner,
		store:   store,
		port:    port,
		events:  &lib.EventsTracker{},
		log:     log,
	}
}

// ChainId() returns the chain id this machine settles for
func (s *StateMachine) ChainId() uint64 { return s.chainId }

// Owner() returns the release authority address
func (s *StateMachine) Owner() crypto.AddressI { return s.owner }

// Store() returns the underlying store
func (s *StateMachine) Store() lib.RWStoreI { return s.store }

// Events() returns the events emitted by operations on this machine
func (s *StateMachine) Events() []*lib.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.Events
}

// Halted() returns true if the machine latched on a broken invariant
func (s *StateMachine) Halted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

// ReadOnly() runs a query callback under the machine lock so concurrent
// readers never race a writer on the staged transaction
func (s *StateMachine) ReadOnly(fn func(sm *StateMachine) lib.ErrorI) lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Get() reads a key from the store
func (s *StateMachine) Get(key []byte) ([]byte, lib.ErrorI) {
	return s.store.Get(key)
}

// Set() writes a key to the store
func (s *StateMachine) Set(key, value []byte) lib.ErrorI {
	return s.store.Set(key, value)
}

// Delete() removes a key from the store
func (s *StateMachine) Delete(key []byte) lib.ErrorI {
	return s.store.Delete(key)
}

// commit() flushes the staged writes to durable storage
func (s *StateMachine) commit() lib.ErrorI {
	if st, ok := s.store.(lib.StoreI); ok {
		return st.Commit()
	}
	return nil
}

// rollback() discards the staged writes
func (s *StateMachine) rollback() {
	if st, ok := s.store.(lib.StoreI); ok {
		st.Discard()
	}
}

// halt() latches the machine after a post-mutation invariant violation;
// every later message is rejected until the operator intervenes
func (s *StateMachine) halt(detail string) lib.ErrorI {
	s.halted = true
	s.log.Errorf("chain %d halted: %s", s.chainId, detail)
	return ErrInvariantBroken(detail)
}

// unmarshal is a convenience wrapper over the JSON codec
func (s *StateMachine) unmarshal(bz []byte, ptr any) lib.ErrorI {
	return lib.UnmarshalJSON(bz, ptr)
}

// marshal is a convenience wrapper over the JSON codec
func (s *StateMachine) marshal(msg any) ([]byte, lib.ErrorI) {
	return lib.MarshalJSON(msg)
}
