/*

This file contains the pure reward computation for a single deposit.

The arithmetic order is load-bearing: the APR is stored pre-scaled x100, the
yearly reward is divided down to a per-second rate through four successive
truncating divisions (days, hours, minutes, seconds), and the final result is
de-scaled by 100 once more at the end. Reordering or algebraically
"simplifying" any of these steps changes the truncation points and therefore
the payout; keep the sequence as written.

*/

package rewards

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

const (
	daysPerYear    = 365
	hoursPerDay    = 24
	minutesPerHour = 60
	secondsPerMin  = 60
)

// Input carries everything PendingReward needs. Principal and Compounded are
// read by value from the deposit; StartDate/EndDate define the lock window;
// Now is the injected clock reading.
type Input struct {
	PoolAPR      int64 // scaled x100
	BonusAPR     int64 // scaled x100, applied only when HasBonus
	HasBonus     bool
	PeriodInDays int64
	Principal    sdkmath.Int
	Compounded   sdkmath.Int
	StartDate    time.Time
	EndDate      time.Time
	Now          time.Time
}

// PendingReward computes the reward accrued by a deposit and not yet
// compounded.
//
// Before maturity the reward is elapsed-seconds times the truncated
// per-second rate, minus what compounding already credited. Over-credit from
// compounding can push that difference negative; the result is clamped to
// zero so the computation never underflows.
//
// At or past maturity the reward is a flat lump tied to the nominal period:
// 30 and 180 day pools pay the per-day rate times the period, 365 day pools
// pay the full yearly reward. Periods outside {30, 180, 365} pay nothing
// after maturity; the set is closed on purpose.
func PendingReward(in Input) sdkmath.Int {
	if in.Principal.IsNil() || !in.Principal.IsPositive() {
		return sdkmath.ZeroInt()
	}

	effectiveAPR := in.PoolAPR
	if in.HasBonus {
		effectiveAPR += in.BonusAPR
	}
	if effectiveAPR <= 0 {
		return sdkmath.ZeroInt()
	}

	yearly := in.Principal.MulRaw(effectiveAPR).QuoRaw(100)
	perDay := yearly.QuoRaw(daysPerYear)
	perHour := perDay.QuoRaw(hoursPerDay)
	perMinute := perHour.QuoRaw(minutesPerHour)
	perSecond := perMinute.QuoRaw(secondsPerMin)

	var pending sdkmath.Int
	if in.Now.Before(in.EndDate) {
		elapsed := in.Now.Unix() - in.StartDate.Unix()
		if elapsed < 0 {
			return sdkmath.ZeroInt()
		}
		compounded := in.Compounded
		if compounded.IsNil() {
			compounded = sdkmath.ZeroInt()
		}
		pending = perSecond.MulRaw(elapsed).Sub(compounded)
		if pending.IsNegative() {
			return sdkmath.ZeroInt()
		}
	} else {
		switch in.PeriodInDays {
		case 30:
			pending = perDay.MulRaw(30)
		case 180:
			pending = perDay.MulRaw(180)
		case 365:
			pending = yearly
		default:
			return sdkmath.ZeroInt()
		}
	}

	// Second de-scaling pass; APR is carried x100 through the rate chain.
	return pending.QuoRaw(100)
}
