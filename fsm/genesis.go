package fsm

import (
	"os"

	"github.com/crossbeam-network/crossbeam/lib"
)

// GenesisState declares the initial settlement state for a chain: the release
// authority, any pre-funded custody balances, and the pool pairs
type GenesisState struct {
	Owner          lib.HexBytes     `json:"owner"`                    // the release authority
	LockedBalances []*LockedBalance `json:"lockedBalances,omitempty"` // pre-funded custody
	Pools          []*GenesisPool   `json:"pools,omitempty"`          // the pool pairs to register
}

// GenesisPool declares an empty pool to register at genesis
type GenesisPool struct {
	Id     uint64       `json:"id"`
	AssetA lib.HexBytes `json:"assetA"`
	AssetB lib.HexBytes `json:"assetB"`
}

// NewGenesisFromFile() reads and validates a genesis file
func NewGenesisFromFile(filePath string) (*GenesisState, lib.ErrorI) {
	bz, err := os.ReadFile(filePath)
	if err != nil {
		return nil, ErrReadGenesisFile(err)
	}
	genesis := new(GenesisState)
	if err := lib.UnmarshalJSON(bz, genesis); err != nil {
		return nil, ErrUnmarshalGenesis(err)
	}
	if err := genesis.Check(); err != nil {
		return nil, err
	}
	return genesis, nil
}

// Check() performs stateless validation of the genesis declaration
func (g *GenesisState) Check() lib.ErrorI {
	if err := checkAddress(g.Owner); err != nil {
		return err
	}
	seen := lib.NewDeDuplicator[uint64]()
	for _, pool := range g.Pools {
		if found := seen.Found(pool.Id); found {
			return ErrPoolExists(pool.Id)
		}
		if err := checkAsset(pool.AssetA); err != nil {
			return err
		}
		if err := checkAsset(pool.AssetB); err != nil {
			return err
		}
	}
	for _, balance := range g.LockedBalances {
		if err := checkAsset(balance.Asset); err != nil {
			return err
		}
	}
	return nil
}

// ApplyGenesis() writes the genesis state to an empty store; it is a no-op if
// the chain already initialized
func (s *StateMachine) ApplyGenesis(genesis *GenesisState) lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	applied, err := s.genesisApplied()
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	for _, balance := range genesis.LockedBalances {
		if err = s.SetLockedBalance(balance); err != nil {
			s.rollback()
			return err
		}
	}
	for _, pool := range genesis.Pools {
		if err = s.CreatePool(pool.Id, pool.AssetA, pool.AssetB); err != nil {
			s.rollback()
			return err
		}
	}
	// marker prevents re-initialization on restart
	if err = s.Set(GenesisKey(), []byte{1}); err != nil {
		s.rollback()
		return err
	}
	return s.commit()
}

// genesisApplied() returns true once the genesis marker is durable
func (s *StateMachine) genesisApplied() (bool, lib.ErrorI) {
	bz, err := s.Get(GenesisKey())
	if err != nil {
		return false, err
	}
	return bz != nil, nil
}
