package main

import (
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lockfi/stakevault/internal/config"
	"github.com/lockfi/stakevault/internal/engine"
	"github.com/lockfi/stakevault/internal/logger"
	"github.com/lockfi/stakevault/internal/state"
	"github.com/lockfi/stakevault/internal/token"
	"github.com/lockfi/stakevault/internal/utils"
	"github.com/lockfi/stakevault/internal/web"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main is the entry point for the staking ledger service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("StakeVault staking ledger starting...")

	// Initialize Database Connection (parameter store, snapshots, event journal)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Engine Parameters
	engineParams, err := state.LoadActiveEngineParameters(engine.DEFAULT_PARAMS_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active engine parameters, using defaults and saving.")
		defaultParams := config.DefaultEngineParameters
		if _, err := state.SaveEngineParameters(defaultParams, engine.DEFAULT_PARAMS_CONFIG_NAME, engine.DEFAULT_PARAMS_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default engine parameters.")
		}
		engineParams = &defaultParams
	}
	log.Info().Msg("Engine parameters loaded successfully.")

	// --- 2. Token Ledger Initialization (with Safety Switch) ---
	var ledger token.Ledger
	var bank token.NativeBank
	mode := os.Getenv("STAKEVAULT_MODE")

	if mode == "local" {
		memLedger := token.NewMemoryLedger(config.EngineAccount)
		seedGenesisBalances(memLedger)
		ledger = memLedger
		bank = token.NewMemoryBank(sdkmath.ZeroInt())
		log.Info().Msg("Initialized in LOCAL mode with an in-memory token ledger.")
	} else {
		log.Fatal().Msg("STAKEVAULT_MODE is not set to 'local'. Halting: no token ledger adapter configured for this mode.")
	}

	// --- 3. Create Engine Instance with Dependency Injection ---
	eng, err := engine.New(engine.Config{
		Ledger:  ledger,
		Bank:    bank,
		Access:  token.StaticOwner{Owner: config.OwnerAccount},
		Account: config.EngineAccount,
		Params:  *engineParams,
		Journal: state.NewEventStore(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create staking engine")
	}

	// Create the genesis pool set
	for _, seed := range config.GenesisPools {
		poolID, err := eng.CreatePool(config.OwnerAccount, seed.APR, seed.PeriodInDays, time.Now())
		if err != nil {
			log.Fatal().Err(err).Int64("apr", seed.APR).Int64("period", seed.PeriodInDays).Msg("Failed to create genesis pool")
		}
		log.Info().Uint64("poolId", uint64(poolID)).Int64("apr", seed.APR).Int64("periodDays", seed.PeriodInDays).Msg("Genesis pool created")
	}

	// --- 4. Start Web Server ---
	webPort := config.GetEnvOrDefault("WEB_PORT", "8080")
	webServer := web.NewWebServer(webPort, eng)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting staking API server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Wait for shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down...")

	if err := state.SaveLedgerSnapshot(eng.Pools(), eng.Deposits()); err != nil {
		log.Error().Err(err).Msg("Failed to save final ledger snapshot")
	}
}

// seedGenesisBalances mints the balances listed in STAKEVAULT_GENESIS, a
// comma-separated list of account:amount pairs.
func seedGenesisBalances(ledger *token.MemoryLedger) {
	genesis := os.Getenv("STAKEVAULT_GENESIS")
	if genesis == "" {
		return
	}

	for _, pair := range strings.Split(genesis, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			log.Fatal().Str("pair", pair).Msg("STAKEVAULT_GENESIS entries must look like account:amount")
		}
		amount, err := utils.ParseAmount(parts[1])
		if err != nil {
			log.Fatal().Err(err).Str("pair", pair).Msg("Invalid genesis amount")
		}
		ledger.Mint(parts[0], amount)
		log.Info().Str("account", parts[0]).Str("amount", amount.String()).Msg("Seeded genesis balance")
	}
}

func mustAtoi(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
