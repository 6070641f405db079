package fsm

import (
	"fmt"

	"github.com/crossbeam-network/crossbeam/lib"
)

// This file defines error objects for the settlement state machine

func ErrInvalidAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidAmount, lib.SettlementModule, "amount is invalid")
}

func ErrTransferFailed(err error) lib.ErrorI {
	return lib.NewError(lib.CodeTransferFailed, lib.SettlementModule, fmt.Sprintf("asset transfer failed with err: %s", err.Error()))
}

func ErrUnauthorized() lib.ErrorI {
	return lib.NewError(lib.CodeUnauthorized, lib.SettlementModule, "caller is not the bridge authority")
}

func ErrProofAlreadyProcessed() lib.ErrorI {
	return lib.NewError(lib.CodeProofAlreadyProcessed, lib.SettlementModule, "proof was already processed")
}

func ErrInsufficientLockedBalance() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientLockedBalance, lib.SettlementModule, "insufficient locked balance")
}

func ErrZeroLiquidityMinted() lib.ErrorI {
	return lib.NewError(lib.CodeZeroLiquidityMinted, lib.SettlementModule, "deposit too small to mint liquidity shares")
}

func ErrInsufficientWithdrawAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientWithdraw, lib.SettlementModule, "withdraw amount is zero")
}

func ErrInsufficientLiquidity() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientLiquidity, lib.SettlementModule, "swap would drain the pool reserve")
}

func ErrHalted() lib.ErrorI {
	return lib.NewError(lib.CodeHalted, lib.SettlementModule, "the settlement instance is halted")
}

func ErrInvalidAddress() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidAddress, lib.SettlementModule, "address is invalid")
}

func ErrInvalidProofId() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidProofId, lib.SettlementModule, "proof id is invalid")
}

func ErrInvalidAsset() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidAsset, lib.SettlementModule, "asset id is invalid")
}

func ErrInvalidInstruction() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidInstruction, lib.SettlementModule, "instruction data is invalid")
}

func ErrUnknownMessage(x MessageI) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownMsg, lib.SettlementModule, fmt.Sprintf("message %T is unknown", x))
}

func ErrUnknownMessageName(name string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownMsg, lib.SettlementModule, fmt.Sprintf("message name %s is unknown", name))
}

func ErrInvalidShares() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidShares, lib.SettlementModule, "share amount is invalid")
}

func ErrInsufficientShares() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientShares, lib.SettlementModule, "insufficient share balance")
}

func ErrUnknownChain(chainId uint64) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownChain, lib.SettlementModule, fmt.Sprintf("no settlement instance for chain id %d", chainId))
}

func ErrInvariantBroken(detail string) lib.ErrorI {
	return lib.NewError(lib.CodeInvariantBroken, lib.SettlementModule, fmt.Sprintf("state invariant broken: %s", detail))
}

func ErrInvalidKey(key []byte) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidKey, lib.SettlementModule, fmt.Sprintf("key %s is invalid", lib.BytesToString(key)))
}

func ErrReadGenesisFile(err error) lib.ErrorI {
	return lib.NewError(lib.CodeReadGenesisFile, lib.SettlementModule, fmt.Sprintf("read genesis file failed with err: %s", err.Error()))
}

func ErrUnmarshalGenesis(err error) lib.ErrorI {
	return lib.NewError(lib.CodeUnmarshalGenesis, lib.SettlementModule, fmt.Sprintf("unmarshal genesis failed with err: %s", err.Error()))
}

func ErrPoolExists(id uint64) lib.ErrorI {
	return lib.NewError(lib.CodePoolExists, lib.SettlementModule, fmt.Sprintf("pool %d already exists", id))
}

func ErrUnknownPool(id uint64) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownPool, lib.SettlementModule, fmt.Sprintf("pool %d does not exist", id))
}

func ErrInvalidDirection() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidDirection, lib.SettlementModule, "swap direction is invalid")
}
