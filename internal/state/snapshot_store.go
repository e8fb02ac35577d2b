/*

This file persists point-in-time snapshots of the pool registry and the
deposit ledger. The engine's in-memory state is authoritative at runtime;
snapshots give the dashboard and operators a durable view across restarts.

*/

package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/lockfi/stakevault/internal/types"
)

// SaveLedgerSnapshot upserts the full pool registry and deposit ledger in one
// transaction.
func SaveLedgerSnapshot(pools []types.Pool, deposits []types.Deposit) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	poolStmt := `
        INSERT INTO pools (pool_id, apr, period_in_days, total_stakers, enabled, updated_at)
        VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
        ON CONFLICT (pool_id) DO UPDATE SET
            apr = EXCLUDED.apr,
            total_stakers = EXCLUDED.total_stakers,
            enabled = EXCLUDED.enabled,
            updated_at = CURRENT_TIMESTAMP;`

	for _, p := range pools {
		if _, err = tx.Exec(poolStmt, int64(p.ID), p.APR, p.PeriodInDays, int64(p.TotalStakers), p.Enabled); err != nil {
			return fmt.Errorf("failed to upsert pool %d: %w", p.ID, err)
		}
	}

	depositStmt := `
        INSERT INTO deposits (deposit_id, pool_id, owner, amount, compounded, start_date, end_date, ended, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
        ON CONFLICT (deposit_id) DO UPDATE SET
            amount = EXCLUDED.amount,
            compounded = EXCLUDED.compounded,
            ended = EXCLUDED.ended,
            updated_at = CURRENT_TIMESTAMP;`

	for _, d := range deposits {
		if _, err = tx.Exec(depositStmt,
			int64(d.ID), int64(d.PoolID), d.Owner,
			d.Amount.String(), d.Compounded.String(),
			d.StartDate, d.EndDate, d.Ended,
		); err != nil {
			return fmt.Errorf("failed to upsert deposit %d: %w", d.ID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}

	log.Debug().
		Int("pools", len(pools)).
		Int("deposits", len(deposits)).
		Msg("Saved ledger snapshot")
	return nil
}

// LoadDepositsByOwner reads all persisted deposits for one owner, in id order.
func LoadDepositsByOwner(owner string) ([]types.Deposit, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT deposit_id, pool_id, owner, amount, compounded, start_date, end_date, ended
        FROM deposits
        WHERE owner = $1
        ORDER BY deposit_id ASC;`

	rows, err := DB.Query(query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits for owner '%s': %w", owner, err)
	}
	defer rows.Close()

	var deposits []types.Deposit
	for rows.Next() {
		var d types.Deposit
		var depositID, poolID int64
		var amountStr, compoundedStr string

		if err := rows.Scan(&depositID, &poolID, &d.Owner, &amountStr, &compoundedStr, &d.StartDate, &d.EndDate, &d.Ended); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		d.ID = types.DepositID(depositID)
		d.PoolID = types.PoolID(poolID)

		amount, ok := sdkmath.NewIntFromString(amountStr)
		if !ok {
			return nil, fmt.Errorf("failed to parse deposit amount '%s'", amountStr)
		}
		compounded, ok := sdkmath.NewIntFromString(compoundedStr)
		if !ok {
			return nil, fmt.Errorf("failed to parse deposit compounded '%s'", compoundedStr)
		}
		d.Amount = amount
		d.Compounded = compounded

		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}
	return deposits, nil
}
