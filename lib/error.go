package lib

import (
	"fmt"
	"math"
)

// ErrorI is the project-wide error abstraction: every failure carries a stable
// code and the module it originated from so callers can branch on the kind
// without string matching
type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	// Constructs a new Error instance
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code, and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeJSONMarshal     ErrorCode = 1
	CodeJSONUnmarshal   ErrorCode = 2
	CodeStringToBytes   ErrorCode = 3
	CodeWriteFile       ErrorCode = 4
	CodeReadFile        ErrorCode = 5
	CodeInvalidArgument ErrorCode = 6
	CodeArithmetic      ErrorCode = 7
	CodeDivideByZero    ErrorCode = 8
	CodeLogWrite        ErrorCode = 9
	CodeEmptyEvents     ErrorCode = 10

	// Settlement Module
	SettlementModule ErrorModule = "settlement"

	// Settlement Module Error Codes
	CodeInvalidAmount             ErrorCode = 1
	CodeTransferFailed            ErrorCode = 2
	CodeUnauthorized              ErrorCode = 3
	CodeProofAlreadyProcessed     ErrorCode = 4
	CodeInsufficientLockedBalance ErrorCode = 5
	CodeZeroLiquidityMinted       ErrorCode = 6
	CodeInsufficientWithdraw      ErrorCode = 7
	CodeInsufficientLiquidity     ErrorCode = 8
	CodeArithmeticOverflow        ErrorCode = 9
	CodeHalted                    ErrorCode = 10
	CodeInvalidAddress            ErrorCode = 11
	CodeInvalidProofId            ErrorCode = 12
	CodeInvalidAsset              ErrorCode = 13
	CodeInvalidInstruction        ErrorCode = 14
	CodeUnknownMsg                ErrorCode = 15
	CodeInvalidShares             ErrorCode = 16
	CodeInsufficientShares        ErrorCode = 17
	CodeUnknownChain              ErrorCode = 18
	CodeInvariantBroken           ErrorCode = 19
	CodeInvalidKey                ErrorCode = 20
	CodeReadGenesisFile           ErrorCode = 21
	CodeUnmarshalGenesis          ErrorCode = 22
	CodePoolExists                ErrorCode = 23
	CodeUnknownPool               ErrorCode = 24
	CodeInvalidDirection          ErrorCode = 25

	// Store Module
	StoreModule ErrorModule = "store"

	// Store Module Error Codes
	CodeOpenDB      ErrorCode = 1
	CodeCloseDB     ErrorCode = 2
	CodeStoreGet    ErrorCode = 3
	CodeStoreSet    ErrorCode = 4
	CodeStoreDelete ErrorCode = 5
	CodeCommitDB    ErrorCode = 6

	// RPC Module
	RPCModule ErrorModule = "rpc"

	// RPC Module Error Codes
	CodeInvalidParams  ErrorCode = 1
	CodeInvalidRequest ErrorCode = 2
	CodeServerTimeout  ErrorCode = 3
)

// MAIN MODULE ERRORS BELOW

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json marshal failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json unmarshal failed with err: %s", err.Error()))
}

func ErrStringToBytes(err error) ErrorI {
	return NewError(CodeStringToBytes, MainModule, fmt.Sprintf("hex decode failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("write file failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("read file failed with err: %s", err.Error()))
}

func ErrInvalidArgument() ErrorI {
	return NewError(CodeInvalidArgument, MainModule, "the argument is invalid")
}

func ErrDivideByZero() ErrorI {
	return NewError(CodeDivideByZero, MainModule, "divide by zero")
}

func ErrEmptyEventsTracker() ErrorI {
	return NewError(CodeEmptyEvents, MainModule, "the events tracker is empty")
}

func newLogError(err error) ErrorI {
	return NewError(CodeLogWrite, MainModule, fmt.Sprintf("log write failed with err: %s", err.Error()))
}
