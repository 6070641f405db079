package fsm

import (
	"sync"

	"github.com/crossbeam-network/crossbeam/lib"
)

// Keeper owns the StateMachine instances of the process, addressed by stable
// chain ids. Operations against different chains proceed independently; the
// per-chain ordering is enforced by each machine's own lock.
type Keeper struct {
	mu     sync.RWMutex
	chains map[uint64]*StateMachine
	log    lib.LoggerI
}

// NewKeeper() creates an empty keeper
func NewKeeper(log lib.LoggerI) *Keeper {
	return &Keeper{chains: make(map[uint64]*StateMachine), log: log}
}

// AddChain() registers a machine under its chain id
func (k *Keeper) AddChain(sm *StateMachine) lib.ErrorI {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.chains[sm.ChainId()]; ok {
		return ErrInvariantBroken("duplicate chain id")
	}
	k.chains[sm.ChainId()] = sm
	return nil
}

// Chain() returns the machine for a chain id
func (k *Keeper) Chain(chainId uint64) (*StateMachine, lib.ErrorI) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	sm, ok := k.chains[chainId]
	if !ok {
		return nil, ErrUnknownChain(chainId)
	}
	return sm, nil
}

// ChainIds() lists the registered chain ids
func (k *Keeper) ChainIds() (ids []uint64) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for id := range k.chains {
		ids = append(ids, id)
	}
	return
}

// SubmitMessage() routes a settlement message to its chain
func (k *Keeper) SubmitMessage(chainId uint64, msg MessageI) lib.ErrorI {
	sm, err := k.Chain(chainId)
	if err != nil {
		return err
	}
	if err = sm.HandleMessage(msg); err != nil {
		k.log.Warnf("chain %d rejected %s: %s", chainId, msg.Name(), err.Error())
		return err
	}
	k.log.Infof("chain %d applied %s", chainId, msg.Name())
	return nil
}

// SubmitInstruction() decodes raw instruction data and routes the message
func (k *Keeper) SubmitInstruction(chainId uint64, data []byte) lib.ErrorI {
	msg, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	return k.SubmitMessage(chainId, msg)
}

// Close() shuts down every chain's store
func (k *Keeper) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for id, sm := range k.chains {
		if st, ok := sm.Store().(lib.StoreI); ok {
			if err := st.Close(); err != nil {
				k.log.Errorf("closing chain %d store: %s", id, err.Error())
			}
		}
	}
}
