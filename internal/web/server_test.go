package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockfi/stakevault/internal/engine"
	"github.com/lockfi/stakevault/internal/logger"
	"github.com/lockfi/stakevault/internal/token"
	"github.com/lockfi/stakevault/internal/types"
)

const (
	testOwner   = "admin"
	testAccount = "engine"
)

// newTestServer builds a server around a live engine with one 30-day pool.
// No database is attached; the snapshot and journal paths degrade to logs.
func newTestServer(t *testing.T) (*WebServer, *token.MemoryLedger, *token.MemoryBank) {
	t.Helper()
	logger.Initialize("error")

	ledger := token.NewMemoryLedger(testAccount)
	ledger.Mint(testAccount, sdkmath.NewInt(1_000_000_000_000))
	bank := token.NewMemoryBank(sdkmath.NewInt(500))

	eng, err := engine.New(engine.Config{
		Ledger:  ledger,
		Bank:    bank,
		Access:  token.StaticOwner{Owner: testOwner},
		Account: testAccount,
		Params: types.EngineParameters{
			APRFactor:      10,
			BonusAPR:       150,
			EmergencyFee:   10,
			CompoundPeriod: 24 * time.Hour,
		},
	})
	require.NoError(t, err)

	_, err = eng.CreatePool(testOwner, 1000, 30, time.Now())
	require.NoError(t, err)

	return NewWebServer("0", eng), ledger, bank
}

func doJSON(ws *WebServer, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ws.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsDegradedWithoutDatabase(t *testing.T) {
	ws, _, _ := newTestServer(t)

	rec := doJSON(ws, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"DEGRADED"`)
}

func TestStakeEndpoint(t *testing.T) {
	ws, ledger, _ := newTestServer(t)
	ledger.Mint("alice", sdkmath.NewInt(100))

	rec := doJSON(ws, http.MethodPost, "/api/stake",
		`{"owner":"alice","pool_id":0,"amount":"40"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, sdkmath.NewInt(60), ledger.BalanceOf("alice"))

	rec = doJSON(ws, http.MethodPost, "/api/stake",
		`{"owner":"alice","pool_id":0,"amount":"500"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "over-balance stake is rejected")
}

func TestUserDepositHistoryRouteRequiresDatabase(t *testing.T) {
	ws, _, _ := newTestServer(t)

	rec := doJSON(ws, http.MethodGet, "/api/users/alice/deposits/history", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code,
		"history is served from the snapshot store, which needs a database")
	assert.Contains(t, rec.Body.String(), "deposit history")
}

func TestSweepNativeEndpoint(t *testing.T) {
	ws, _, bank := newTestServer(t)

	rec := doJSON(ws, http.MethodPost, "/api/admin/sweep-native",
		`{"caller":"mallory","to":"treasury","amount":"100"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(ws, http.MethodPost, "/api/admin/sweep-native",
		`{"caller":"admin","to":"treasury","amount":"100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, sdkmath.NewInt(100), bank.Sent["treasury"])

	rec = doJSON(ws, http.MethodPost, "/api/admin/sweep-native",
		`{"caller":"admin","to":"treasury","amount":"junk"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(ws, http.MethodPost, "/api/admin/sweep-native",
		`{"caller":"admin","to":"treasury","amount":"9999"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code, "over-draw is refused by the bank")
}

func TestRequestLoggingUsesInitializedLogger(t *testing.T) {
	ws, _, _ := newTestServer(t)
	assert.NotEqual(t, zerolog.Logger{}, ws.logger,
		"component logger must derive from the initialized global logger, not the package-init zero value")
}
