package config

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// OwnerAccount is the account allowed through the administration surface.
	OwnerAccount string

	// EngineAccount is the account on the token ledger that holds staked funds.
	EngineAccount string

	// TokenSymbol is the symbol of the staking token, used for logging and the API.
	TokenSymbol string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	OwnerAccount, err = getEnv("STAKEVAULT_OWNER")
	if err != nil {
		return err
	}

	EngineAccount, err = getEnv("STAKEVAULT_ACCOUNT")
	if err != nil {
		return err
	}

	TokenSymbol, err = getEnv("STAKEVAULT_TOKEN_SYMBOL")
	if err != nil {
		return err
	}

	log.Debug().
		Str("OwnerAccount", OwnerAccount).
		Str("EngineAccount", EngineAccount).
		Str("TokenSymbol", TokenSymbol).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// GetEnvOrDefault retrieves a string environment variable, falling back to a default.
func GetEnvOrDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
