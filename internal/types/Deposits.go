/*

This is the type for individual deposits. The ledger owns every Deposit record;
per-user access goes through the owner index kept by the engine.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

type DepositID uint64

// Deposit is one user's stake instance inside a pool. A deposit is created by
// a successful stake, grows through compounding, and is terminated exactly
// once by a normal unstake, an emergency withdrawal, or an administrative
// return. History is retained indefinitely; nothing is ever deleted.
type Deposit struct {
	ID         DepositID   `json:"deposit_id"`
	PoolID     PoolID      `json:"pool_id"`
	Owner      string      `json:"owner"`
	Amount     sdkmath.Int `json:"amount"`     // staked principal, zeroed on exit
	Compounded sdkmath.Int `json:"compounded"` // rewards already folded into Amount
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"` // StartDate + pool period
	Ended      bool        `json:"ended"`    // terminal; once set the deposit is inert
}

// Active reports whether the deposit still holds staked principal.
func (d *Deposit) Active() bool {
	return !d.Ended
}

// Matured reports whether the lock window has elapsed at the given instant.
func (d *Deposit) Matured(now time.Time) bool {
	return !now.Before(d.EndDate)
}
