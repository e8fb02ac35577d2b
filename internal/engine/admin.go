/*

This file contains the administration surface: owner-gated parameter
mutators, pool gates, the return-all-deposits escape hatch and the sweeps.
Every write is checked against the access controller and emits an event.

Administrative operations stay available while the engine is paused; the
pause flag only blocks the user-facing transitions.

*/

package engine

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/lockfi/stakevault/internal/token"
	"github.com/lockfi/stakevault/internal/types"
)

func (e *Engine) requireOwner(caller string) error {
	if !e.access.IsOwner(caller) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return nil
}

// CreatePool registers a new staking pool and returns its id. Pools are
// created enabled.
func (e *Engine) CreatePool(caller string, apr, periodInDays int64, now time.Time) (types.PoolID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return 0, err
	}
	if apr < 0 {
		return 0, fmt.Errorf("pool apr cannot be negative: %d", apr)
	}
	if periodInDays <= 0 {
		return 0, fmt.Errorf("pool period must be positive: %d", periodInDays)
	}

	id := types.PoolID(len(e.pools))
	e.pools = append(e.pools, &types.Pool{
		ID:           id,
		APR:          apr,
		PeriodInDays: periodInDays,
		Enabled:      true,
	})

	e.emit(types.Event{
		Kind:      types.EventPoolCreated,
		Actor:     caller,
		PoolID:    id,
		Amount:    sdkmath.NewInt(apr),
		Timestamp: now,
		Note:      fmt.Sprintf("period %d days", periodInDays),
	})
	return id, nil
}

// SetPoolAPR overrides a pool's APR directly, bypassing the join/exit drift.
func (e *Engine) SetPoolAPR(caller string, poolID types.PoolID, apr int64, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	pool, err := e.poolLocked(poolID)
	if err != nil {
		return err
	}
	if apr < 0 {
		return fmt.Errorf("pool apr cannot be negative: %d", apr)
	}

	pool.APR = apr
	e.emit(types.Event{
		Kind:      types.EventPoolAPRChanged,
		Actor:     caller,
		PoolID:    poolID,
		Amount:    sdkmath.NewInt(apr),
		Timestamp: now,
	})
	return nil
}

// SetPoolEnabled flips a pool's gate. Disabling blocks new stakes, normal
// unstakes and compounding on the pool; emergency withdrawal stays open.
func (e *Engine) SetPoolEnabled(caller string, poolID types.PoolID, enabled bool, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.setPoolEnabledLocked(caller, poolID, enabled, now)
}

func (e *Engine) setPoolEnabledLocked(caller string, poolID types.PoolID, enabled bool, now time.Time) error {
	pool, err := e.poolLocked(poolID)
	if err != nil {
		return err
	}
	pool.Enabled = enabled

	kind := types.EventPoolDisabled
	if enabled {
		kind = types.EventPoolEnabled
	}
	e.emit(types.Event{
		Kind:      kind,
		Actor:     caller,
		PoolID:    poolID,
		Timestamp: now,
	})
	return nil
}

// SetPoolsEnabledBatch flips the gate on several pools at once. Validation
// runs up front so a bad id aborts the batch before any pool changes.
func (e *Engine) SetPoolsEnabledBatch(caller string, poolIDs []types.PoolID, enabled bool, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	for _, id := range poolIDs {
		if _, err := e.poolLocked(id); err != nil {
			return err
		}
	}
	for _, id := range poolIDs {
		if err := e.setPoolEnabledLocked(caller, id, enabled, now); err != nil {
			return err
		}
	}
	return nil
}

// SetAPRFactor sets the per-join/exit APR drift.
func (e *Engine) SetAPRFactor(caller string, factor int64, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if factor < 0 {
		return fmt.Errorf("apr factor cannot be negative: %d", factor)
	}

	e.params.APRFactor = factor
	e.emit(types.Event{
		Kind:      types.EventAPRFactorChanged,
		Actor:     caller,
		Amount:    sdkmath.NewInt(factor),
		Timestamp: now,
	})
	return nil
}

// SetBonusAPR sets the extra APR granted to bonus-flagged accounts.
func (e *Engine) SetBonusAPR(caller string, bonus int64, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bonus < 0 {
		return fmt.Errorf("bonus apr cannot be negative: %d", bonus)
	}

	e.params.BonusAPR = bonus
	e.emit(types.Event{
		Kind:      types.EventBonusAPRChanged,
		Actor:     caller,
		Amount:    sdkmath.NewInt(bonus),
		Timestamp: now,
	})
	return nil
}

// SetEmergencyFee sets the early-exit penalty percentage.
func (e *Engine) SetEmergencyFee(caller string, fee int64, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if fee < 0 || fee > 100 {
		return fmt.Errorf("emergency fee must be between 0 and 100: %d", fee)
	}

	e.params.EmergencyFee = fee
	e.emit(types.Event{
		Kind:      types.EventFeeChanged,
		Actor:     caller,
		Amount:    sdkmath.NewInt(fee),
		Timestamp: now,
	})
	return nil
}

// SetCompoundPeriod sets the per-owner compound cooldown.
func (e *Engine) SetCompoundPeriod(caller string, period time.Duration, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if period < 0 {
		return fmt.Errorf("compound period cannot be negative: %s", period)
	}

	e.params.CompoundPeriod = period
	e.emit(types.Event{
		Kind:      types.EventCompoundPeriod,
		Actor:     caller,
		Amount:    sdkmath.NewInt(int64(period / time.Second)),
		Timestamp: now,
		Note:      "compound period in seconds",
	})
	return nil
}

// SetUserBonus flags or clears the APR bonus for one account.
func (e *Engine) SetUserBonus(caller, account string, hasBonus bool, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.setUserBonusLocked(caller, account, hasBonus, now)
}

func (e *Engine) setUserBonusLocked(caller, account string, hasBonus bool, now time.Time) error {
	if account == "" {
		return fmt.Errorf("account cannot be empty")
	}

	if hasBonus {
		e.bonus[account] = true
	} else {
		delete(e.bonus, account)
	}

	kind := types.EventUserBonusCleared
	if hasBonus {
		kind = types.EventUserBonusSet
	}
	e.emit(types.Event{
		Kind:      kind,
		Actor:     caller,
		Timestamp: now,
		Note:      account,
	})
	return nil
}

// SetUserBonusBatch flags or clears the APR bonus for several accounts.
func (e *Engine) SetUserBonusBatch(caller string, accounts []string, hasBonus bool, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	for _, account := range accounts {
		if account == "" {
			return fmt.Errorf("account cannot be empty")
		}
	}
	for _, account := range accounts {
		if err := e.setUserBonusLocked(caller, account, hasBonus, now); err != nil {
			return err
		}
	}
	return nil
}

// SetPaused flips the global pause flag. While paused, stake, unstake,
// emergency withdrawal and compound are rejected; reads and administration
// remain available.
func (e *Engine) SetPaused(caller string, paused bool, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}

	e.paused = paused
	note := "resumed"
	if paused {
		note = "paused"
	}
	e.emit(types.Event{
		Kind:      types.EventPausedChanged,
		Actor:     caller,
		Timestamp: now,
		Note:      note,
	})
	return nil
}

// ReturnAllDeposits force-closes every active deposit and transfers the bare
// principal back to its owner, bypassing lock windows, rewards and fees. The
// sweep is not atomic across deposits: a refused transfer stops it, already
// returned deposits stay returned, and re-running resumes where it stopped.
func (e *Engine) ReturnAllDeposits(caller string, now time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return 0, err
	}

	returned := 0
	for _, d := range e.deposits {
		if d.Ended {
			continue
		}
		amount := d.Amount
		if amount.IsPositive() {
			if !e.ledger.Transfer(d.Owner, amount) {
				return returned, fmt.Errorf("%w: returning %s to %s (deposit %d)",
					ErrTokenTransferFailed, amount, d.Owner, d.ID)
			}
		}
		d.Amount = sdkmath.ZeroInt()
		d.Ended = true
		if pool, err := e.poolLocked(d.PoolID); err == nil {
			pool.TotalStakers--
		}
		returned++

		e.emit(types.Event{
			Kind:      types.EventDepositsReturned,
			Actor:     caller,
			PoolID:    d.PoolID,
			DepositID: d.ID,
			Amount:    amount,
			Timestamp: now,
			Note:      "returned to " + d.Owner,
		})
	}
	return returned, nil
}

// SweepToken transfers tokens held by the given ledger's holder account to
// an arbitrary destination. Used to recover tokens sent to the engine by
// mistake, including retained emergency fees.
func (e *Engine) SweepToken(caller string, ledger token.Ledger, to string, amount sdkmath.Int, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if ledger == nil {
		return fmt.Errorf("sweep ledger cannot be nil")
	}
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("sweep amount must be positive")
	}

	if !ledger.Transfer(to, amount) {
		return fmt.Errorf("%w: sweeping %s to %s", ErrTokenTransferFailed, amount, to)
	}

	e.emit(types.Event{
		Kind:      types.EventTokenSwept,
		Actor:     caller,
		Amount:    amount,
		Timestamp: now,
		Note:      "swept to " + to,
	})
	return nil
}

// SweepNative transfers native currency held by the engine's bank account.
func (e *Engine) SweepNative(caller, to string, amount sdkmath.Int, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.bank == nil {
		return fmt.Errorf("%w: no native bank configured", ErrNativeTransferFailed)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("sweep amount must be positive")
	}

	if !e.bank.Transfer(to, amount) {
		return fmt.Errorf("%w: sweeping %s to %s", ErrNativeTransferFailed, amount, to)
	}

	e.emit(types.Event{
		Kind:      types.EventNativeSwept,
		Actor:     caller,
		Amount:    amount,
		Timestamp: now,
		Note:      "swept to " + to,
	})
	return nil
}
