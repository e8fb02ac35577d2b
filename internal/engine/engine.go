/*

This file contains the staking engine: the pool registry, the deposit ledger
and the user-facing state transitions (stake, unstake, compound, emergency
withdrawal).

Every operation runs as one critical section under a single mutex covering
the registry and the ledger together, including the external token-transfer
call, so no caller ever observes a partially applied transition. External
transfers are attempted only after all validation and before any mutation;
a refused transfer aborts the operation with zero state change.

*/

package engine

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lockfi/stakevault/internal/logger"
	"github.com/lockfi/stakevault/internal/rewards"
	"github.com/lockfi/stakevault/internal/token"
	"github.com/lockfi/stakevault/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_PARAMS_CONFIG_NAME    = "default_staking_params"
	DEFAULT_PARAMS_CONFIG_VERSION = 1
)

// Journal receives every emitted event for durable storage. A journal error
// is logged but never fails the operation that produced the event.
type Journal interface {
	RecordEvent(ev types.Event) error
}

// Config holds the collaborators and initial parameters for a new Engine.
type Config struct {
	Ledger  token.Ledger
	Bank    token.NativeBank
	Access  token.AccessController
	Account string // the engine's own account on the token ledger
	Params  types.EngineParameters
	Journal Journal // optional
}

// Engine is the staking ledger. All exported methods are safe for concurrent
// use; state-mutating calls serialize on a single mutex.
type Engine struct {
	mu     sync.Mutex
	logger zerolog.Logger

	ledger  token.Ledger
	bank    token.NativeBank
	access  token.AccessController
	account string
	journal Journal

	params types.EngineParameters
	paused bool

	pools        []*types.Pool
	deposits     []*types.Deposit
	byOwner      map[string][]types.DepositID
	lastCompound map[string]time.Time
	bonus        map[string]bool
}

// New creates an Engine with the given collaborators.
func New(cfg Config) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("token ledger cannot be nil")
	}
	if cfg.Access == nil {
		return nil, fmt.Errorf("access controller cannot be nil")
	}
	if cfg.Account == "" {
		return nil, fmt.Errorf("engine account cannot be empty")
	}

	return &Engine{
		logger:       logger.GetForComponent("staking_engine"),
		ledger:       cfg.Ledger,
		bank:         cfg.Bank,
		access:       cfg.Access,
		account:      cfg.Account,
		journal:      cfg.Journal,
		params:       cfg.Params,
		byOwner:      make(map[string][]types.DepositID),
		lastCompound: make(map[string]time.Time),
		bonus:        make(map[string]bool),
	}, nil
}

// emit logs an event and hands it to the journal when one is attached.
// Callers hold the engine mutex.
func (e *Engine) emit(ev types.Event) {
	ev.ID = uuid.NewString()
	if ev.Amount.IsNil() {
		ev.Amount = sdkmath.ZeroInt()
	}

	e.logger.Info().
		Str("kind", string(ev.Kind)).
		Str("actor", ev.Actor).
		Uint64("poolId", uint64(ev.PoolID)).
		Uint64("depositId", uint64(ev.DepositID)).
		Str("amount", ev.Amount.String()).
		Str("note", ev.Note).
		Msg("Staking event")

	if e.journal != nil {
		if err := e.journal.RecordEvent(ev); err != nil {
			e.logger.Error().Err(err).Str("eventId", ev.ID).Msg("Failed to journal event")
		}
	}
}

func (e *Engine) poolLocked(id types.PoolID) (*types.Pool, error) {
	if uint64(id) >= uint64(len(e.pools)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolID, id)
	}
	return e.pools[id], nil
}

func (e *Engine) depositLocked(id types.DepositID) (*types.Deposit, error) {
	if uint64(id) >= uint64(len(e.deposits)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepositID, id)
	}
	return e.deposits[id], nil
}

// adjustAPROnJoin throttles the pool rate as the pool fills. The rate clamps
// at zero; clamped decrements are not reconstructed on exit.
func (e *Engine) adjustAPROnJoin(p *types.Pool) {
	if p.APR <= e.params.APRFactor {
		p.APR = 0
		return
	}
	p.APR -= e.params.APRFactor
}

// adjustAPROnExit restores rate headroom when a deposit leaves the pool.
func (e *Engine) adjustAPROnExit(p *types.Pool) {
	p.APR += e.params.APRFactor
}

func (e *Engine) pendingLocked(d *types.Deposit, p *types.Pool, now time.Time) sdkmath.Int {
	return rewards.PendingReward(rewards.Input{
		PoolAPR:      p.APR,
		BonusAPR:     e.params.BonusAPR,
		HasBonus:     e.bonus[d.Owner],
		PeriodInDays: p.PeriodInDays,
		Principal:    d.Amount,
		Compounded:   d.Compounded,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Now:          now,
	})
}

// Stake locks amount from the owner's balance into the pool and opens a new
// deposit. The transfer into the engine account happens before any ledger
// mutation; a refused transfer leaves the engine untouched.
func (e *Engine) Stake(owner string, poolID types.PoolID, amount sdkmath.Int, now time.Time) (types.DepositID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return 0, ErrContractPaused
	}
	pool, err := e.poolLocked(poolID)
	if err != nil {
		return 0, err
	}
	if !pool.Enabled {
		return 0, fmt.Errorf("%w: pool %d", ErrPoolDisabled, poolID)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive", ErrCantStakeThatMuch)
	}
	if e.ledger.BalanceOf(owner).LT(amount) {
		return 0, fmt.Errorf("%w: requested %s", ErrCantStakeThatMuch, amount)
	}

	if !e.ledger.TransferFrom(owner, e.account, amount) {
		return 0, fmt.Errorf("%w: stake transfer of %s from %s", ErrTokenTransferFailed, amount, owner)
	}

	id := types.DepositID(len(e.deposits))
	deposit := &types.Deposit{
		ID:         id,
		PoolID:     poolID,
		Owner:      owner,
		Amount:     amount,
		Compounded: sdkmath.ZeroInt(),
		StartDate:  now,
		EndDate:    now.Add(time.Duration(pool.PeriodInDays) * 24 * time.Hour),
		Ended:      false,
	}
	e.deposits = append(e.deposits, deposit)
	e.byOwner[owner] = append(e.byOwner[owner], id)
	pool.TotalStakers++
	e.adjustAPROnJoin(pool)

	e.emit(types.Event{
		Kind:      types.EventStake,
		Actor:     owner,
		PoolID:    poolID,
		DepositID: id,
		Amount:    amount,
		Timestamp: now,
	})
	return id, nil
}

// Unstake closes a matured deposit, paying out principal plus the pending
// reward. Blocked while the pool is disabled.
func (e *Engine) Unstake(owner string, depositID types.DepositID, now time.Time) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return sdkmath.ZeroInt(), ErrContractPaused
	}
	deposit, err := e.depositLocked(depositID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if deposit.Owner != owner {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit %d", ErrInvalidOwner, depositID)
	}
	if deposit.Ended {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit %d", ErrEndedDeposit, depositID)
	}
	pool, err := e.poolLocked(deposit.PoolID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if !pool.Enabled {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: pool %d", ErrPoolDisabled, pool.ID)
	}
	if !deposit.Matured(now) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: matures at %s", ErrCantUnstakeNow, deposit.EndDate.UTC().Format(time.RFC3339))
	}

	pending := e.pendingLocked(deposit, pool, now)
	payout := deposit.Amount.Add(pending)

	if !e.ledger.Transfer(owner, payout) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: unstake payout of %s to %s", ErrTokenTransferFailed, payout, owner)
	}

	deposit.Amount = sdkmath.ZeroInt()
	deposit.Ended = true
	pool.TotalStakers--
	e.adjustAPROnExit(pool)

	e.emit(types.Event{
		Kind:      types.EventUnstake,
		Actor:     owner,
		PoolID:    pool.ID,
		DepositID: depositID,
		Amount:    payout,
		Timestamp: now,
	})
	return payout, nil
}

// EmergencyWithdraw closes a deposit at any time, forfeiting rewards and
// retaining the emergency fee in the engine account. Remains available while
// the pool is disabled so an administrative disable can never strand funds.
func (e *Engine) EmergencyWithdraw(owner string, depositID types.DepositID, now time.Time) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return sdkmath.ZeroInt(), ErrContractPaused
	}
	deposit, err := e.depositLocked(depositID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if deposit.Owner != owner {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit %d", ErrInvalidOwner, depositID)
	}
	if deposit.Ended {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit %d", ErrEndedDeposit, depositID)
	}
	pool, err := e.poolLocked(deposit.PoolID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	fee := deposit.Amount.MulRaw(e.params.EmergencyFee).QuoRaw(100)
	payout := deposit.Amount.Sub(fee)

	if !e.ledger.Transfer(owner, payout) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: emergency payout of %s to %s", ErrTokenTransferFailed, payout, owner)
	}

	deposit.Amount = sdkmath.ZeroInt()
	deposit.Ended = true
	pool.TotalStakers--
	e.adjustAPROnExit(pool)

	e.emit(types.Event{
		Kind:      types.EventEmergencyWithdraw,
		Actor:     owner,
		PoolID:    pool.ID,
		DepositID: depositID,
		Amount:    payout,
		Timestamp: now,
		Note:      "fee retained: " + fee.String(),
	})
	return payout, nil
}

// Compound folds the pending reward into the deposit principal. Permitted
// only before maturity and at most once per compound period per owner, across
// all of that owner's deposits. No tokens move; the reward stays virtual
// until a later unstake pays it out.
func (e *Engine) Compound(owner string, depositID types.DepositID, now time.Time) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return sdkmath.ZeroInt(), ErrContractPaused
	}
	deposit, err := e.depositLocked(depositID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if deposit.Owner != owner {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit %d", ErrInvalidOwner, depositID)
	}
	if deposit.Ended {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit %d", ErrEndedDeposit, depositID)
	}
	pool, err := e.poolLocked(deposit.PoolID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if !pool.Enabled {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: pool %d", ErrPoolDisabled, pool.ID)
	}
	if now.After(deposit.EndDate) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit matured", ErrCantCompound)
	}
	if last, ok := e.lastCompound[owner]; ok && now.Sub(last) < e.params.CompoundPeriod {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: cooldown active until %s", ErrCantCompound,
			last.Add(e.params.CompoundPeriod).UTC().Format(time.RFC3339))
	}

	pending := e.pendingLocked(deposit, pool, now)
	deposit.Amount = deposit.Amount.Add(pending)
	deposit.Compounded = deposit.Compounded.Add(pending)
	e.lastCompound[owner] = now

	e.emit(types.Event{
		Kind:      types.EventCompound,
		Actor:     owner,
		PoolID:    pool.ID,
		DepositID: depositID,
		Amount:    pending,
		Timestamp: now,
	})
	return pending, nil
}

// PendingReward returns the accrued, not-yet-compounded reward for a deposit.
// Ended deposits always report zero.
func (e *Engine) PendingReward(depositID types.DepositID, now time.Time) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	deposit, err := e.depositLocked(depositID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if deposit.Ended {
		return sdkmath.ZeroInt(), nil
	}
	pool, err := e.poolLocked(deposit.PoolID)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return e.pendingLocked(deposit, pool, now), nil
}

// TotalStakedByUser sums the principal of the owner's active deposits.
func (e *Engine) TotalStakedByUser(owner string) sdkmath.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := sdkmath.ZeroInt()
	for _, id := range e.byOwner[owner] {
		d := e.deposits[id]
		if d.Active() {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// DepositsByUser returns copies of all deposits ever opened by the owner, in
// insertion order. Ended deposits are included; consumers filter.
func (e *Engine) DepositsByUser(owner string) []types.Deposit {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.byOwner[owner]
	out := make([]types.Deposit, 0, len(ids))
	for _, id := range ids {
		out = append(out, *e.deposits[id])
	}
	return out
}

// DepositByID returns a copy of one deposit.
func (e *Engine) DepositByID(id types.DepositID) (types.Deposit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.depositLocked(id)
	if err != nil {
		return types.Deposit{}, err
	}
	return *d, nil
}

// PoolByID returns a copy of one pool.
func (e *Engine) PoolByID(id types.PoolID) (types.Pool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.poolLocked(id)
	if err != nil {
		return types.Pool{}, err
	}
	return *p, nil
}

// Pools returns copies of every pool in creation order.
func (e *Engine) Pools() []types.Pool {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.Pool, 0, len(e.pools))
	for _, p := range e.pools {
		out = append(out, *p)
	}
	return out
}

// Deposits returns copies of the whole deposit ledger in creation order.
func (e *Engine) Deposits() []types.Deposit {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.Deposit, 0, len(e.deposits))
	for _, d := range e.deposits {
		out = append(out, *d)
	}
	return out
}

// Params returns the current engine parameters.
func (e *Engine) Params() types.EngineParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Paused reports the global pause flag.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// HasBonus reports whether the account carries the user APR bonus.
func (e *Engine) HasBonus(account string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bonus[account]
}
