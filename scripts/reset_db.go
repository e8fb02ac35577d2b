/*

Drops and recreates the staking schema. Destructive; meant for local
development only.

*/

package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lockfi/stakevault/internal/config"
	"github.com/lockfi/stakevault/internal/logger"
	"github.com/lockfi/stakevault/internal/state"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}
	logger.Initialize(config.GetEnvOrDefault("LOG_LEVEL", "info"))

	user := os.Getenv("DB_USER")
	name := os.Getenv("DB_NAME")
	if user == "" || name == "" {
		log.Fatal().Msg("DB_USER and DB_NAME must be set")
	}

	port, err := strconv.Atoi(config.GetEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		log.Fatal().Err(err).Msg("DB_PORT must be a number")
	}

	cfg := state.DBConfig{
		Host:     config.GetEnvOrDefault("DB_HOST", "localhost"),
		Port:     port,
		User:     user,
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   name,
		SSLMode:  config.GetEnvOrDefault("DB_SSLMODE", "disable"),
	}

	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Str("dbname", cfg.DBName).Msg("Resetting staking schema")

	if err := state.InitDB(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer state.CloseDB()

	if err := state.DropSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop staking tables")
	}
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate staking schema")
	}

	log.Info().Msg("Staking schema reset complete")
}
