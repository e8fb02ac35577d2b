/*

This file contains the structured event record emitted on every state
transition of the staking engine. Events are logged through zerolog and,
when a journal is attached, persisted to the staking_events table.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// EventKind identifies the state transition an Event records.
type EventKind string

const (
	EventStake             EventKind = "STAKE"
	EventUnstake           EventKind = "UNSTAKE"
	EventEmergencyWithdraw EventKind = "EMERGENCY_WITHDRAW"
	EventCompound          EventKind = "COMPOUND"
	EventPoolCreated       EventKind = "POOL_CREATED"
	EventPoolEnabled       EventKind = "POOL_ENABLED"
	EventPoolDisabled      EventKind = "POOL_DISABLED"
	EventPoolAPRChanged    EventKind = "POOL_APR_CHANGED"
	EventAPRFactorChanged  EventKind = "APR_FACTOR_CHANGED"
	EventBonusAPRChanged   EventKind = "BONUS_APR_CHANGED"
	EventFeeChanged        EventKind = "FEE_CHANGED"
	EventCompoundPeriod    EventKind = "COMPOUND_PERIOD_CHANGED"
	EventUserBonusSet      EventKind = "USER_BONUS_SET"
	EventUserBonusCleared  EventKind = "USER_BONUS_CLEARED"
	EventPausedChanged     EventKind = "PAUSED_CHANGED"
	EventDepositsReturned  EventKind = "DEPOSITS_RETURNED"
	EventTokenSwept        EventKind = "TOKEN_SWEPT"
	EventNativeSwept       EventKind = "NATIVE_SWEPT"
)

// Event is one observable state transition. Amount carries the resulting
// token amount where the transition moved or re-rated funds; for parameter
// changes it carries the new value encoded as an integer.
type Event struct {
	ID        string      `json:"event_id"` // uuid
	Kind      EventKind   `json:"kind"`
	Actor     string      `json:"actor,omitempty"`
	PoolID    PoolID      `json:"pool_id,omitempty"`
	DepositID DepositID   `json:"deposit_id,omitempty"`
	Amount    sdkmath.Int `json:"amount"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}
