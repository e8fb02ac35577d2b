package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/lockfi/stakevault/internal/config"
	"github.com/lockfi/stakevault/internal/engine"
	"github.com/lockfi/stakevault/internal/logger"
	"github.com/lockfi/stakevault/internal/state"
	"github.com/lockfi/stakevault/internal/types"
	"github.com/lockfi/stakevault/internal/utils"
)

// WebServer exposes the staking engine over HTTP: read endpoints for the
// registry and ledger, mutation endpoints for the user transitions, and
// owner-gated admin endpoints. Caller identity comes from the request body;
// the engine's access controller does the actual gating.
type WebServer struct {
	router *mux.Router
	port   string
	engine *engine.Engine
	clock  func() time.Time
	logger zerolog.Logger
}

// NewWebServer creates a new web server instance around the given engine.
// The component logger is taken here rather than at package init so it
// derives from the initialized global logger.
func NewWebServer(port string, eng *engine.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		engine: eng,
		clock:  time.Now,
		logger: logger.GetForComponent("web_server"),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/pools/{id}", ws.handleGetPool).Methods("GET")
	api.HandleFunc("/deposits/{id}", ws.handleGetDeposit).Methods("GET")
	api.HandleFunc("/deposits/{id}/pending", ws.handleGetPendingReward).Methods("GET")
	api.HandleFunc("/users/{account}/deposits", ws.handleGetUserDeposits).Methods("GET")
	api.HandleFunc("/users/{account}/deposits/history", ws.handleGetUserDepositHistory).Methods("GET")
	api.HandleFunc("/users/{account}/staked", ws.handleGetUserStaked).Methods("GET")
	api.HandleFunc("/params", ws.handleGetParams).Methods("GET")
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET")

	api.HandleFunc("/stake", ws.handleStake).Methods("POST")
	api.HandleFunc("/unstake", ws.handleUnstake).Methods("POST")
	api.HandleFunc("/emergency-withdraw", ws.handleEmergencyWithdraw).Methods("POST")
	api.HandleFunc("/compound", ws.handleCompound).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/apr-factor", ws.handleSetAPRFactor).Methods("POST")
	admin.HandleFunc("/bonus-apr", ws.handleSetBonusAPR).Methods("POST")
	admin.HandleFunc("/emergency-fee", ws.handleSetEmergencyFee).Methods("POST")
	admin.HandleFunc("/compound-period", ws.handleSetCompoundPeriod).Methods("POST")
	admin.HandleFunc("/paused", ws.handleSetPaused).Methods("POST")
	admin.HandleFunc("/pools/{id}/apr", ws.handleSetPoolAPR).Methods("POST")
	admin.HandleFunc("/pools/{id}/enabled", ws.handleSetPoolEnabled).Methods("POST")
	admin.HandleFunc("/pools/enabled-batch", ws.handleSetPoolsEnabledBatch).Methods("POST")
	admin.HandleFunc("/user-bonus", ws.handleSetUserBonus).Methods("POST")
	admin.HandleFunc("/user-bonus-batch", ws.handleSetUserBonusBatch).Methods("POST")
	admin.HandleFunc("/return-all-deposits", ws.handleReturnAllDeposits).Methods("POST")
	admin.HandleFunc("/sweep-native", ws.handleSweepNative).Methods("POST")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	ws.logger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server and engine health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	pools := ws.engine.Pools()
	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "stakevault-staking-ledger",
			"version": "1.0.0",
			"token":   config.TokenSymbol,
		},
		"engine_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"paused":           ws.engine.Paused(),
			"pool_count":       len(pools),
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// snapshot persists the current registry and ledger after a mutation. A
// failed snapshot is logged, never surfaced; the in-memory engine state is
// authoritative.
func (ws *WebServer) snapshot() {
	if err := state.SaveLedgerSnapshot(ws.engine.Pools(), ws.engine.Deposits()); err != nil {
		ws.logger.Error().Err(err).Msg("Failed to save ledger snapshot")
	}
}

// writeJSONResponse writes a JSON response with the given status code
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes a JSON error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	ws.writeJSONResponse(w, statusCode, map[string]interface{}{
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// writeEngineError maps engine sentinel errors to HTTP status codes.
func (ws *WebServer) writeEngineError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrUnauthorized), errors.Is(err, engine.ErrInvalidOwner):
		statusCode = http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidPoolID), errors.Is(err, engine.ErrInvalidDepositID):
		statusCode = http.StatusNotFound
	case errors.Is(err, engine.ErrPoolDisabled),
		errors.Is(err, engine.ErrEndedDeposit),
		errors.Is(err, engine.ErrCantUnstakeNow),
		errors.Is(err, engine.ErrCantCompound),
		errors.Is(err, engine.ErrContractPaused):
		statusCode = http.StatusConflict
	case errors.Is(err, engine.ErrCantStakeThatMuch):
		statusCode = http.StatusBadRequest
	case errors.Is(err, engine.ErrTokenTransferFailed), errors.Is(err, engine.ErrNativeTransferFailed):
		statusCode = http.StatusBadGateway
	}
	ws.writeErrorResponse(w, statusCode, err.Error())
}

func (ws *WebServer) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON request body")
		return false
	}
	return true
}

func parsePathUint(r *http.Request, key string) (uint64, error) {
	vars := mux.Vars(r)
	return strconv.ParseUint(vars[key], 10, 64)
}

func muxVar(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}

// corsMiddleware adds CORS headers to all responses
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		ws.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// depositView is the wire shape of a deposit, with amounts as strings.
type depositView struct {
	DepositID uint64 `json:"deposit_id"`
	PoolID    uint64 `json:"pool_id"`
	Owner     string `json:"owner"`
	Amount    string `json:"amount"`
	Compound  string `json:"compounded"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Ended     bool   `json:"ended"`
}

func toDepositView(d types.Deposit) depositView {
	return depositView{
		DepositID: uint64(d.ID),
		PoolID:    uint64(d.PoolID),
		Owner:     d.Owner,
		Amount:    utils.FormatAmount(d.Amount),
		Compound:  utils.FormatAmount(d.Compounded),
		StartDate: d.StartDate.UTC().Format(time.RFC3339),
		EndDate:   d.EndDate.UTC().Format(time.RFC3339),
		Ended:     d.Ended,
	}
}
