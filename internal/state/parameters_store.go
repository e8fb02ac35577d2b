// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lockfi/stakevault/internal/types"
	"github.com/rs/zerolog/log"
)

// SaveEngineParameters saves a new version of engine parameters.
func SaveEngineParameters(params types.EngineParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE engine_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO engine_parameters (
            version, config_name, is_active, activated_at, created_at,
            apr_factor, bonus_apr, emergency_fee, compound_period_seconds
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.APRFactor, params.BonusAPR, params.EmergencyFee,
		int64(params.CompoundPeriod/time.Second),
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert engine parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved engine parameters")
	return paramsID, nil
}

// LoadActiveEngineParameters loads the currently active engine parameters.
func LoadActiveEngineParameters(configName string) (*types.EngineParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT apr_factor, bonus_apr, emergency_fee, compound_period_seconds
        FROM engine_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	p := &types.EngineParameters{}
	var compoundSeconds int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&p.APRFactor, &p.BonusAPR, &p.EmergencyFee, &compoundSeconds)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active engine parameters found for config '%s'", configName)
		}
		return nil, fmt.Errorf("failed to scan active engine parameters for config '%s': %w", configName, err)
	}
	p.CompoundPeriod = time.Duration(compoundSeconds) * time.Second

	log.Info().Str("config", configName).Msg("Loaded active engine parameters")
	return p, nil
}
