package rpc

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/crossbeam-network/crossbeam/fsm"
	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

const (
	colon = ":"

	SoftwareVersion = "0.1.0"
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json; charset=utf-8"

	maxRequestBytes = int64(1 << 20) // 1MB request body cap

	maxEventsPerResponse = 1_000 // events returned per query at most
)

// Server represents a Crossbeam RPC server with configuration options.
type Server struct {
	// keeper owns the per-chain settlement state machines
	keeper *fsm.Keeper

	// node configuration
	config lib.Config

	logger lib.LoggerI
}

// NewServer constructs and returns a new Crossbeam RPC server
func NewServer(keeper *fsm.Keeper, config lib.Config, logger lib.LoggerI) *Server {
	return &Server{
		keeper: keeper,
		config: config,
		logger: logger,
	}
}

// Start initializes the Crossbeam RPC server
func (s *Server) Start() {
	go s.startRPC(createRouter(s), s.config.RPCConfig.RPCPort)
}

// startRPC starts an RPC server with the provided router and port
func (s *Server) startRPC(router *httprouter.Router, port string) {
	// Create CORS policy
	cor := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS", "POST"},
	})

	// Create a default timeout for HTTP requests
	timeout := time.Duration(s.config.RPCConfig.TimeoutS) * time.Second

	// Start RPC server
	s.logger.Infof("Starting RPC server at 0.0.0.0:%s", port)
	s.logger.Fatal((&http.Server{
		Addr:    colon + port,
		Handler: cor.Handler(http.TimeoutHandler(router, timeout, ErrServerTimeout().Error())),
	}).ListenAndServe().Error())
}

// chainRequest is the common request envelope naming the target chain
type chainRequest struct {
	ChainId uint64 `json:"chainId"`
}

// assetRequest asks for a single asset on a chain
type assetRequest struct {
	ChainId uint64       `json:"chainId"`
	Asset   lib.HexBytes `json:"asset"`
}

// poolRequest asks for a single pool on a chain
type poolRequest struct {
	ChainId uint64 `json:"chainId"`
	PoolId  uint64 `json:"poolId"`
}

// sharesRequest asks for a provider's stake in a pool
type sharesRequest struct {
	ChainId uint64       `json:"chainId"`
	PoolId  uint64       `json:"poolId"`
	Address lib.HexBytes `json:"address"`
}

// receiptRequest asks for the release receipt of a processed proof
type receiptRequest struct {
	ChainId uint64       `json:"chainId"`
	ProofId lib.HexBytes `json:"proofId"`
}

// txRequest submits a settlement message by name
type txRequest struct {
	ChainId uint64          `json:"chainId"`
	Type    string          `json:"type"`
	Msg     json.RawMessage `json:"msg"`
}

// txRawRequest submits binary instruction data
type txRawRequest struct {
	ChainId     uint64       `json:"chainId"`
	Instruction lib.HexBytes `json:"instruction"`
}

// Version handles the version request
func (s *Server) Version(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, SoftwareVersion, http.StatusOK)
}

// Chains responds with the registered chain ids
func (s *Server) Chains(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, s.keeper.ChainIds(), http.StatusOK)
}

// LockedBalance responds with the custody balance of a single asset
func (s *Server) LockedBalance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(assetRequest)
	if !unmarshal(w, r, req) {
		return
	}
	s.readOnlyState(w, req.ChainId, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		return sm.GetLockedBalance(req.Asset)
	})
}

// LockedBalances responds with every asset custody balance of a chain
func (s *Server) LockedBalances(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(chainRequest)
	if !unmarshal(w, r, req) {
		return
	}
	s.readOnlyState(w, req.ChainId, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		return sm.GetLockedBalances()
	})
}

// Receipt responds with the release receipt of a processed proof
func (s *Server) Receipt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(receiptRequest)
	if !unmarshal(w, r, req) {
		return
	}
	s.readOnlyState(w, req.ChainId, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		return sm.GetReleaseReceipt(req.ProofId)
	})
}

// Pool responds with the state of a single pool
func (s *Server) Pool(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(poolRequest)
	if !unmarshal(w, r, req) {
		return
	}
	s.readOnlyState(w, req.ChainId, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		return sm.GetPool(req.PoolId)
	})
}

// Pools responds with every pool of a chain
func (s *Server) Pools(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(chainRequest)
	if !unmarshal(w, r, req) {
		return
	}
	s.readOnlyState(w, req.ChainId, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		return sm.GetPools()
	})
}

// Shares responds with a provider's stake in a pool
func (s *Server) Shares(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(sharesRequest)
	if !unmarshal(w, r, req) {
		return
	}
	s.readOnlyState(w, req.ChainId, func(sm *fsm.StateMachine) (any, lib.ErrorI) {
		pool, err := sm.GetPool(req.PoolId)
		if err != nil {
			return nil, err
		}
		return pool.GetSharesFor(req.Address), nil
	})
}

// Events responds with the events emitted by a chain, newest last
func (s *Server) Events(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(chainRequest)
	if !unmarshal(w, r, req) {
		return
	}
	sm, err := s.keeper.Chain(req.ChainId)
	if err != nil {
		write(w, err, http.StatusNotFound)
		return
	}
	write(w, lib.TruncateSlice(sm.Events(), maxEventsPerResponse), http.StatusOK)
}

// Transaction submits a named settlement message to a chain
func (s *Server) Transaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(txRequest)
	if !unmarshal(w, r, req) {
		return
	}
	msg, err := fsm.NewMessageFromName(req.Type)
	if err != nil {
		write(w, err, http.StatusBadRequest)
		return
	}
	if e := json.Unmarshal(req.Msg, msg); e != nil {
		write(w, ErrInvalidParams(e), http.StatusBadRequest)
		return
	}
	if err = s.keeper.SubmitMessage(req.ChainId, msg); err != nil {
		write(w, err, http.StatusBadRequest)
		return
	}
	write(w, msg, http.StatusOK)
}

// TransactionRaw submits binary instruction data to a chain
func (s *Server) TransactionRaw(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(txRawRequest)
	if !unmarshal(w, r, req) {
		return
	}
	if err := s.keeper.SubmitInstruction(req.ChainId, req.Instruction); err != nil {
		write(w, err, http.StatusBadRequest)
		return
	}
	write(w, req.Instruction, http.StatusOK)
}

// readOnlyState runs a query against a chain's state and writes the result
func (s *Server) readOnlyState(w http.ResponseWriter, chainId uint64, query func(sm *fsm.StateMachine) (any, lib.ErrorI)) {
	sm, err := s.keeper.Chain(chainId)
	if err != nil {
		write(w, err, http.StatusNotFound)
		return
	}
	var result any
	if err = sm.ReadOnly(func(sm *fsm.StateMachine) (e lib.ErrorI) {
		result, e = query(sm)
		return
	}); err != nil {
		write(w, err, http.StatusBadRequest)
		return
	}
	write(w, result, http.StatusOK)
}

// unmarshal reads and parses the request body into ptr
func unmarshal(w http.ResponseWriter, r *http.Request, ptr interface{}) bool {
	bz, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		write(w, ErrInvalidParams(err), http.StatusBadRequest)
		return false
	}
	defer func() { _ = r.Body.Close() }()
	if err = json.Unmarshal(bz, ptr); err != nil {
		write(w, ErrInvalidParams(err), http.StatusBadRequest)
		return false
	}
	return true
}

// write marshaled payload to w
func write(w http.ResponseWriter, payload interface{}, code int) {
	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(code)
	bz, _ := json.MarshalIndent(payload, "", "  ")
	_, _ = w.Write(bz)
}
