/*

This file contains the default engine parameters and the genesis pool set.

The defaults are used when no active parameters are found in the database
during initialization; from then on the administration surface is the only
writer and the parameter store keeps every version.

*/

package config

import (
	"time"

	"github.com/lockfi/stakevault/internal/types"
)

// DefaultEngineParameters provides the baseline knobs for the staking engine.
var DefaultEngineParameters = types.EngineParameters{
	// APRFactor drifts the pool APR by 0.1% on every join/exit. Large enough
	// to throttle a filling pool, small enough that a single exit cannot
	// swing the rate.
	APRFactor: 10,

	// BonusAPR grants flagged accounts an extra 1.5% on top of the pool APR.
	BonusAPR: 150,

	// EmergencyFee retains 10% of the principal on an early exit.
	EmergencyFee: 10,

	// CompoundPeriod rate-limits compounding to once per day per owner,
	// across all of the owner's deposits.
	CompoundPeriod: 24 * time.Hour,
}

// PoolSeed describes one pool created at engine initialization.
type PoolSeed struct {
	APR          int64 // scaled x100
	PeriodInDays int64
}

// GenesisPools is the fixed pool set created at startup: 30 days at 10%,
// 180 days at 20%, 365 days at 30%.
var GenesisPools = []PoolSeed{
	{APR: 1000, PeriodInDays: 30},
	{APR: 2000, PeriodInDays: 180},
	{APR: 3000, PeriodInDays: 365},
}
