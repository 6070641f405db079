package rpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Crossbeam RPC Paths
const (
	VersionRoutePath        = "/v1/"
	TxRoutePath             = "/v1/tx"
	TxRawRoutePath          = "/v1/tx-raw"
	ChainsRoutePath         = "/v1/query/chains"
	LockedBalanceRoutePath  = "/v1/query/locked-balance"
	LockedBalancesRoutePath = "/v1/query/locked-balances"
	ReceiptRoutePath        = "/v1/query/receipt"
	PoolRoutePath           = "/v1/query/pool"
	PoolsRoutePath          = "/v1/query/pools"
	SharesRoutePath         = "/v1/query/shares"
	EventsRoutePath         = "/v1/query/events"
)

// Crossbeam RPC Route Names
const (
	VersionRouteName        = "version"
	TxRouteName             = "tx"
	TxRawRouteName          = "tx-raw"
	ChainsRouteName         = "chains"
	LockedBalanceRouteName  = "locked-balance"
	LockedBalancesRouteName = "locked-balances"
	ReceiptRouteName        = "receipt"
	PoolRouteName           = "pool"
	PoolsRouteName          = "pools"
	SharesRouteName         = "shares"
	EventsRouteName         = "events"
)

type routes map[string]struct {
	Method string
	Path   string
}

// routePaths is a mapping from route names to their corresponding HTTP methods and paths.
var routePaths = routes{
	VersionRouteName:        {Method: http.MethodGet, Path: VersionRoutePath},
	TxRouteName:             {Method: http.MethodPost, Path: TxRoutePath},
	TxRawRouteName:          {Method: http.MethodPost, Path: TxRawRoutePath},
	ChainsRouteName:         {Method: http.MethodGet, Path: ChainsRoutePath},
	LockedBalanceRouteName:  {Method: http.MethodPost, Path: LockedBalanceRoutePath},
	LockedBalancesRouteName: {Method: http.MethodPost, Path: LockedBalancesRoutePath},
	ReceiptRouteName:        {Method: http.MethodPost, Path: ReceiptRoutePath},
	PoolRouteName:           {Method: http.MethodPost, Path: PoolRoutePath},
	PoolsRouteName:          {Method: http.MethodPost, Path: PoolsRoutePath},
	SharesRouteName:         {Method: http.MethodPost, Path: SharesRoutePath},
	EventsRouteName:         {Method: http.MethodPost, Path: EventsRoutePath},
}

// httpRouteHandlers is a custom type that maps strings to httprouter handle functions
type httpRouteHandlers map[string]httprouter.Handle

// createRouter initializes and returns a new HTTP router with predefined route handlers.
func createRouter(s *Server) *httprouter.Router {
	var r = httpRouteHandlers{
		VersionRouteName:        s.Version,
		TxRouteName:             s.Transaction,
		TxRawRouteName:          s.TransactionRaw,
		ChainsRouteName:         s.Chains,
		LockedBalanceRouteName:  s.LockedBalance,
		LockedBalancesRouteName: s.LockedBalances,
		ReceiptRouteName:        s.Receipt,
		PoolRouteName:           s.Pool,
		PoolsRouteName:          s.Pools,
		SharesRouteName:         s.Shares,
		EventsRouteName:         s.Events,
	}
	router := httprouter.New()
	for name, handler := range r {
		route := routePaths[name]
		router.Handle(route.Method, route.Path, handler)
	}
	return router
}
