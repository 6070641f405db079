package fsm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/stretchr/testify/require"
)

func newTestGenesisState() *GenesisState {
	return &GenesisState{
		Owner: ownerAddr.Bytes(),
		LockedBalances: []*LockedBalance{
			{Asset: assetA, Amount: 1_000},
		},
		Pools: []*GenesisPool{
			{Id: 1, AssetA: assetA, AssetB: assetB},
		},
	}
}

func TestApplyGenesis(t *testing.T) {
	sm, _ := newTestStateMachine(t)
	genesis := newTestGenesisState()
	require.NoError(t, sm.ApplyGenesis(genesis))
	// the declared custody balance is durable
	balance, err := sm.GetLockedBalance(assetA)
	require.NoError(t, err)
	require.EqualValues(t, 1_000, balance.Amount)
	// the declared pool exists and is empty
	pool, err := sm.GetPool(1)
	require.NoError(t, err)
	require.EqualValues(t, 0, pool.TotalShares)
	// re-applying is a no-op
	genesis.LockedBalances[0].Amount = 9_999
	require.NoError(t, sm.ApplyGenesis(genesis))
	balance, err = sm.GetLockedBalance(assetA)
	require.NoError(t, err)
	require.EqualValues(t, 1_000, balance.Amount)
}

func TestNewGenesisFromFile(t *testing.T) {
	tests := []struct {
		name          string
		detail        string
		genesis       *GenesisState
		errorContains string
	}{
		{
			name:    "valid genesis",
			detail:  "a well-formed file loads and validates",
			genesis: newTestGenesisState(),
		},
		{
			name:          "missing owner",
			detail:        "the release authority is mandatory",
			genesis:       &GenesisState{},
			errorContains: "address is invalid",
		},
		{
			name:   "duplicate pool id",
			detail: "pool ids must be unique",
			genesis: &GenesisState{
				Owner: ownerAddr.Bytes(),
				Pools: []*GenesisPool{
					{Id: 1, AssetA: assetA, AssetB: assetB},
					{Id: 1, AssetA: assetB, AssetB: assetA},
				},
			},
			errorContains: "already exists",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			filePath := filepath.Join(t.TempDir(), lib.GenesisFilePath)
			bz, err := lib.MarshalJSONIndent(test.genesis)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filePath, bz, 0o777))
			genesis, e := NewGenesisFromFile(filePath)
			if test.errorContains != "" {
				require.ErrorContains(t, e, test.errorContains)
				return
			}
			require.NoError(t, e)
			require.Equal(t, test.genesis.Owner, genesis.Owner)
		})
	}
	// a missing file is a read error
	_, err := NewGenesisFromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	require.Equal(t, lib.CodeReadGenesisFile, err.Code())
}
