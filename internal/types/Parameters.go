package types

import "time"

// EngineParameters are the tunable knobs of the staking engine. All of them
// are owner-mutable at runtime and versioned in the parameter store.
type EngineParameters struct {
	// APRFactor is subtracted from a pool's APR on every join and added back
	// on every exit, same x100 scale as Pool.APR. Joins clamp at zero.
	APRFactor int64 `json:"apr_factor"`

	// BonusAPR is added to the pool APR for accounts flagged with the user
	// bonus, same x100 scale.
	BonusAPR int64 `json:"bonus_apr"`

	// EmergencyFee is the percentage (0-100) retained from the principal on
	// an emergency withdrawal.
	EmergencyFee int64 `json:"emergency_fee"`

	// CompoundPeriod is the per-owner cooldown between compound calls. The
	// cooldown spans all of an owner's deposits, not each deposit separately.
	CompoundPeriod time.Duration `json:"compound_period"`
}
