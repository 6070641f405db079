package rpc

import (
	"github.com/crossbeam-network/crossbeam/lib"
)

// This file defines error objects for the RPC surface

func ErrServerTimeout() lib.ErrorI {
	return lib.NewError(lib.CodeServerTimeout, lib.RPCModule, "server timeout")
}

func ErrInvalidParams(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidParams, lib.RPCModule, "params are invalid: "+err.Error())
}
