package fsm

import (
	"testing"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/crossbeam-network/crossbeam/store"
	"github.com/stretchr/testify/require"
)

func newTestKeeper(t *testing.T, chainIds ...uint64) (*Keeper, *FundedPort) {
	keeper := NewKeeper(lib.NewNullLogger())
	port := NewFundedPort()
	for _, chainId := range chainIds {
		db, err := store.NewStoreInMemory(lib.NewNullLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, keeper.AddChain(New(chainId, ownerAddr, db, port, lib.NewNullLogger())))
	}
	return keeper, port
}

func TestKeeperRouting(t *testing.T) {
	keeper, port := newTestKeeper(t, 1, 2)
	port.Fund(assetA, senderAddr, 1_000)
	// a lock against chain 1 does not touch chain 2
	require.NoError(t, keeper.SubmitMessage(1, &MessageLock{
		Asset:         assetA,
		Sender:        senderAddr.Bytes(),
		Amount:        400,
		TargetChainId: 2,
		Recipient:     recvAddr.Bytes(),
	}))
	chainOne, err := keeper.Chain(1)
	require.NoError(t, err)
	chainTwo, err := keeper.Chain(2)
	require.NoError(t, err)
	balance, err := chainOne.GetLockedBalance(assetA)
	require.NoError(t, err)
	require.EqualValues(t, 400, balance.Amount)
	balance, err = chainTwo.GetLockedBalance(assetA)
	require.NoError(t, err)
	require.EqualValues(t, 0, balance.Amount)
	// an unknown chain is rejected
	err = keeper.SubmitMessage(9, &MessageLock{})
	require.Error(t, err)
	require.Equal(t, lib.CodeUnknownChain, err.Code())
	// duplicate registration is rejected
	err = keeper.AddChain(New(1, ownerAddr, chainOne.Store(), port, lib.NewNullLogger()))
	require.Error(t, err)
	require.Len(t, keeper.ChainIds(), 2)
}

func TestKeeperSubmitInstruction(t *testing.T) {
	keeper, port := newTestKeeper(t, 1)
	port.Fund(assetA, senderAddr, 1_000)
	bz, err := EncodeInstruction(&MessageLock{
		Asset:         assetA,
		Sender:        senderAddr.Bytes(),
		Amount:        250,
		TargetChainId: 2,
		Recipient:     recvAddr.Bytes(),
	})
	require.NoError(t, err)
	require.NoError(t, keeper.SubmitInstruction(1, bz))
	sm, err := keeper.Chain(1)
	require.NoError(t, err)
	balance, err := sm.GetLockedBalance(assetA)
	require.NoError(t, err)
	require.EqualValues(t, 250, balance.Amount)
	// garbage instruction data is rejected before routing
	err = keeper.SubmitInstruction(1, []byte{42})
	require.Error(t, err)
	require.Equal(t, lib.CodeInvalidInstruction, err.Code())
}
