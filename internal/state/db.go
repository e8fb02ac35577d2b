// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS engine_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			apr_factor BIGINT NOT NULL,
			bonus_apr BIGINT NOT NULL,
			emergency_fee BIGINT NOT NULL,
			compound_period_seconds BIGINT NOT NULL,
			CONSTRAINT uq_engine_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_engine_parameters_config_active ON engine_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS pools (
			pool_id BIGINT PRIMARY KEY,
			apr BIGINT NOT NULL,
			period_in_days BIGINT NOT NULL,
			total_stakers BIGINT NOT NULL,
			enabled BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS deposits (
			deposit_id BIGINT PRIMARY KEY,
			pool_id BIGINT NOT NULL,
			owner VARCHAR(255) NOT NULL,
			amount NUMERIC(40, 0) NOT NULL,
			compounded NUMERIC(40, 0) NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			ended BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_deposits_owner ON deposits(owner);
		CREATE INDEX IF NOT EXISTS idx_deposits_pool ON deposits(pool_id);

		CREATE TABLE IF NOT EXISTS staking_events (
			seq SERIAL PRIMARY KEY,
			event_id VARCHAR(64) NOT NULL,
			kind VARCHAR(50) NOT NULL,
			actor VARCHAR(255),
			pool_id BIGINT,
			deposit_id BIGINT,
			amount NUMERIC(40, 0) NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL,
			note TEXT,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_staking_events_timestamp ON staking_events(event_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_staking_events_kind ON staking_events(kind);
		CREATE INDEX IF NOT EXISTS idx_staking_events_actor ON staking_events(actor);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// DropSchema removes every table owned by the service. Used by the reset script.
func DropSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	dropSQL := `
		DROP TABLE IF EXISTS staking_events CASCADE;
		DROP TABLE IF EXISTS deposits CASCADE;
		DROP TABLE IF EXISTS pools CASCADE;
		DROP TABLE IF EXISTS engine_parameters CASCADE;
	`
	if _, err := DB.Exec(dropSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	log.Warn().Msg("Dropped all staking tables.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
