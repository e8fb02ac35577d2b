/*

This file persists the staking event journal. EventStore satisfies the
engine's Journal interface; every emitted event lands in the staking_events
table in emission order.

*/

package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/lockfi/stakevault/internal/types"
)

// EventStore is the database-backed event journal.
type EventStore struct{}

// NewEventStore returns a journal writing to the global DB connection.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// RecordEvent appends one event to the journal.
func (s *EventStore) RecordEvent(ev types.Event) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
        INSERT INTO staking_events (
            event_id, kind, actor, pool_id, deposit_id, amount, event_timestamp, note
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	amount := ev.Amount
	if amount.IsNil() {
		amount = sdkmath.ZeroInt()
	}

	_, err := DB.Exec(stmt,
		ev.ID, string(ev.Kind), ev.Actor,
		int64(ev.PoolID), int64(ev.DepositID),
		amount.String(), ev.Timestamp, ev.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert staking event: %w", err)
	}

	log.Debug().Str("eventId", ev.ID).Str("kind", string(ev.Kind)).Msg("Recorded staking event")
	return nil
}

// GetRecentEvents returns the most recent events, newest first.
func GetRecentEvents(limit int) ([]types.Event, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT event_id, kind, actor, pool_id, deposit_id, amount, event_timestamp, note
        FROM staking_events
        ORDER BY seq DESC
        LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query staking events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var ev types.Event
		var kind string
		var poolID, depositID int64
		var amountStr string

		if err := rows.Scan(&ev.ID, &kind, &ev.Actor, &poolID, &depositID, &amountStr, &ev.Timestamp, &ev.Note); err != nil {
			return nil, fmt.Errorf("failed to scan staking event: %w", err)
		}

		ev.Kind = types.EventKind(kind)
		ev.PoolID = types.PoolID(poolID)
		ev.DepositID = types.DepositID(depositID)
		amount, ok := sdkmath.NewIntFromString(amountStr)
		if !ok {
			return nil, fmt.Errorf("failed to parse event amount '%s'", amountStr)
		}
		ev.Amount = amount

		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staking events: %w", err)
	}
	return events, nil
}
