package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lockfi/stakevault/internal/state"
	"github.com/lockfi/stakevault/internal/types"
	"github.com/lockfi/stakevault/internal/utils"
)

// --- Read endpoints ---

func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	pools := ws.engine.Pools()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
		"count": len(pools),
	})
}

func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathUint(r, "id")
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
		return
	}

	pool, err := ws.engine.PoolByID(types.PoolID(id))
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pool)
}

func (ws *WebServer) handleGetDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathUint(r, "id")
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid deposit ID")
		return
	}

	deposit, err := ws.engine.DepositByID(types.DepositID(id))
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, toDepositView(deposit))
}

func (ws *WebServer) handleGetPendingReward(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathUint(r, "id")
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid deposit ID")
		return
	}

	pending, err := ws.engine.PendingReward(types.DepositID(id), ws.clock())
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"deposit_id": id,
		"pending":    utils.FormatAmount(pending),
	})
}

func (ws *WebServer) handleGetUserDeposits(w http.ResponseWriter, r *http.Request) {
	account := muxVar(r, "account")
	deposits := ws.engine.DepositsByUser(account)

	views := make([]depositView, 0, len(deposits))
	for _, d := range deposits {
		views = append(views, toDepositView(d))
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"account":  account,
		"deposits": views,
		"count":    len(views),
	})
}

// handleGetUserDepositHistory serves the durable deposit view from the
// snapshot store rather than the in-memory ledger, so closed deposits survive
// a restart.
func (ws *WebServer) handleGetUserDepositHistory(w http.ResponseWriter, r *http.Request) {
	account := muxVar(r, "account")

	deposits, err := state.LoadDepositsByOwner(account)
	if err != nil {
		ws.logger.Error().Err(err).Str("account", account).Msg("Failed to load deposit history")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve deposit history")
		return
	}

	views := make([]depositView, 0, len(deposits))
	for _, d := range deposits {
		views = append(views, toDepositView(d))
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"account":  account,
		"deposits": views,
		"count":    len(views),
	})
}

func (ws *WebServer) handleGetUserStaked(w http.ResponseWriter, r *http.Request) {
	account := muxVar(r, "account")
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"staked":  utils.FormatAmount(ws.engine.TotalStakedByUser(account)),
	})
}

func (ws *WebServer) handleGetParams(w http.ResponseWriter, r *http.Request) {
	params := ws.engine.Params()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"apr_factor":              params.APRFactor,
		"bonus_apr":               params.BonusAPR,
		"emergency_fee":           params.EmergencyFee,
		"compound_period_seconds": int64(params.CompoundPeriod / time.Second),
		"paused":                  ws.engine.Paused(),
	})
}

func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	events, err := state.GetRecentEvents(limit)
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to get recent events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
		"limit":  limit,
	})
}

// --- User transitions ---

type stakeRequest struct {
	Owner  string `json:"owner"`
	PoolID uint64 `json:"pool_id"`
	Amount string `json:"amount"`
}

func (ws *WebServer) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	depositID, err := ws.engine.Stake(req.Owner, types.PoolID(req.PoolID), amount, ws.clock())
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()

	ws.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"deposit_id": uint64(depositID),
		"pool_id":    req.PoolID,
		"amount":     utils.FormatAmount(amount),
	})
}

type depositRequest struct {
	Owner     string `json:"owner"`
	DepositID uint64 `json:"deposit_id"`
}

func (ws *WebServer) handleUnstake(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}

	payout, err := ws.engine.Unstake(req.Owner, types.DepositID(req.DepositID), ws.clock())
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"deposit_id": req.DepositID,
		"payout":     utils.FormatAmount(payout),
	})
}

func (ws *WebServer) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}

	payout, err := ws.engine.EmergencyWithdraw(req.Owner, types.DepositID(req.DepositID), ws.clock())
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"deposit_id": req.DepositID,
		"payout":     utils.FormatAmount(payout),
	})
}

func (ws *WebServer) handleCompound(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}

	compounded, err := ws.engine.Compound(req.Owner, types.DepositID(req.DepositID), ws.clock())
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"deposit_id": req.DepositID,
		"compounded": utils.FormatAmount(compounded),
	})
}

// --- Administration ---

type adminValueRequest struct {
	Caller string `json:"caller"`
	Value  int64  `json:"value"`
}

func (ws *WebServer) handleSetAPRFactor(w http.ResponseWriter, r *http.Request) {
	var req adminValueRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetAPRFactor(req.Caller, req.Value, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"apr_factor": req.Value})
}

func (ws *WebServer) handleSetBonusAPR(w http.ResponseWriter, r *http.Request) {
	var req adminValueRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetBonusAPR(req.Caller, req.Value, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"bonus_apr": req.Value})
}

func (ws *WebServer) handleSetEmergencyFee(w http.ResponseWriter, r *http.Request) {
	var req adminValueRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetEmergencyFee(req.Caller, req.Value, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"emergency_fee": req.Value})
}

func (ws *WebServer) handleSetCompoundPeriod(w http.ResponseWriter, r *http.Request) {
	var req adminValueRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	period := time.Duration(req.Value) * time.Second
	if err := ws.engine.SetCompoundPeriod(req.Caller, period, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"compound_period_seconds": req.Value})
}

type adminFlagRequest struct {
	Caller  string `json:"caller"`
	Enabled bool   `json:"enabled"`
}

func (ws *WebServer) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	var req adminFlagRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetPaused(req.Caller, req.Enabled, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"paused": req.Enabled})
}

func (ws *WebServer) handleSetPoolAPR(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathUint(r, "id")
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
		return
	}
	var req adminValueRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetPoolAPR(req.Caller, types.PoolID(id), req.Value, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"pool_id": id, "apr": req.Value})
}

func (ws *WebServer) handleSetPoolEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathUint(r, "id")
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
		return
	}
	var req adminFlagRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetPoolEnabled(req.Caller, types.PoolID(id), req.Enabled, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"pool_id": id, "enabled": req.Enabled})
}

type poolBatchRequest struct {
	Caller  string   `json:"caller"`
	PoolIDs []uint64 `json:"pool_ids"`
	Enabled bool     `json:"enabled"`
}

func (ws *WebServer) handleSetPoolsEnabledBatch(w http.ResponseWriter, r *http.Request) {
	var req poolBatchRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	ids := make([]types.PoolID, 0, len(req.PoolIDs))
	for _, id := range req.PoolIDs {
		ids = append(ids, types.PoolID(id))
	}
	if err := ws.engine.SetPoolsEnabledBatch(req.Caller, ids, req.Enabled, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"pool_ids": req.PoolIDs, "enabled": req.Enabled})
}

type userBonusRequest struct {
	Caller   string `json:"caller"`
	Account  string `json:"account"`
	HasBonus bool   `json:"has_bonus"`
}

func (ws *WebServer) handleSetUserBonus(w http.ResponseWriter, r *http.Request) {
	var req userBonusRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetUserBonus(req.Caller, req.Account, req.HasBonus, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"account": req.Account, "has_bonus": req.HasBonus})
}

type userBonusBatchRequest struct {
	Caller   string   `json:"caller"`
	Accounts []string `json:"accounts"`
	HasBonus bool     `json:"has_bonus"`
}

func (ws *WebServer) handleSetUserBonusBatch(w http.ResponseWriter, r *http.Request) {
	var req userBonusBatchRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	if err := ws.engine.SetUserBonusBatch(req.Caller, req.Accounts, req.HasBonus, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"accounts": req.Accounts, "has_bonus": req.HasBonus})
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (ws *WebServer) handleReturnAllDeposits(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}
	returned, err := ws.engine.ReturnAllDeposits(req.Caller, ws.clock())
	if err != nil {
		// Snapshot anyway; the sweep may have partially completed.
		ws.snapshot()
		ws.writeEngineError(w, err)
		return
	}
	ws.snapshot()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"returned": returned})
}

type sweepNativeRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (ws *WebServer) handleSweepNative(w http.ResponseWriter, r *http.Request) {
	var req sweepNativeRequest
	if !ws.decodeRequest(w, r, &req) {
		return
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ws.engine.SweepNative(req.Caller, req.To, amount, ws.clock()); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"to":     req.To,
		"amount": utils.FormatAmount(amount),
	})
}
