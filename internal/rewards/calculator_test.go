package rewards

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func input(apr int64, periodDays int64, principal int64) Input {
	return Input{
		PoolAPR:      apr,
		BonusAPR:     150,
		HasBonus:     false,
		PeriodInDays: periodDays,
		Principal:    sdkmath.NewInt(principal),
		Compounded:   sdkmath.ZeroInt(),
		StartDate:    baseTime,
		EndDate:      baseTime.Add(time.Duration(periodDays) * 24 * time.Hour),
	}
}

func TestPendingRewardTruncationChain(t *testing.T) {
	// principal 1e12 at 10.00% APR:
	// yearly  = 1e12 * 1000 / 100      = 10_000_000_000_000
	// perDay  = yearly / 365           = 27_397_260_273
	// perHour = perDay / 24            =  1_141_552_511
	// perMin  = perHour / 60           =     19_025_875
	// perSec  = perMin / 60            =        317_097
	// 1000s elapsed: 317_097_000 / 100 =      3_170_970
	in := input(1000, 365, 1_000_000_000_000)
	in.Now = baseTime.Add(1000 * time.Second)

	pending := PendingReward(in)
	require.Equal(t, sdkmath.NewInt(3_170_970), pending)
}

func TestPendingRewardMatureLumps(t *testing.T) {
	tests := []struct {
		name       string
		periodDays int64
		expected   int64
	}{
		// perDay for 1e12 at 10.00% is 27_397_260_273 (see chain above)
		{"30 day pool pays perDay*30", 30, 27_397_260_273 * 30 / 100},
		{"180 day pool pays perDay*180", 180, 27_397_260_273 * 180 / 100},
		{"365 day pool pays the yearly reward", 365, 10_000_000_000_000 / 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input(1000, tt.periodDays, 1_000_000_000_000)
			in.Now = in.EndDate
			require.Equal(t, sdkmath.NewInt(tt.expected), PendingReward(in))

			// Any instant past maturity pays the same flat lump.
			in.Now = in.EndDate.Add(400 * 24 * time.Hour)
			require.Equal(t, sdkmath.NewInt(tt.expected), PendingReward(in))
		})
	}
}

func TestPendingRewardClosedPeriodSet(t *testing.T) {
	for _, period := range []int64{1, 7, 29, 31, 90, 366} {
		in := input(1000, period, 1_000_000_000_000)
		in.Now = in.EndDate.Add(time.Hour)
		assert.True(t, PendingReward(in).IsZero(), "period %d must pay nothing after maturity", period)
	}
}

func TestPendingRewardBonusAPR(t *testing.T) {
	// effective APR 1150 (10.00% + 1.50% bonus):
	// yearly  = 1e12 * 1150 / 100 = 11_500_000_000_000
	// perDay  = 31_506_849_315, perHour = 1_312_785_388
	// perMin  = 21_879_756, perSec = 364_662
	in := input(1000, 365, 1_000_000_000_000)
	in.HasBonus = true
	in.Now = baseTime.Add(1000 * time.Second)

	require.Equal(t, sdkmath.NewInt(3_646_620), PendingReward(in))
}

func TestPendingRewardSubtractsCompounded(t *testing.T) {
	in := input(1000, 365, 1_000_000_000_000)
	in.Now = baseTime.Add(1000 * time.Second)
	in.Compounded = sdkmath.NewInt(1)

	// (317_097_000 - 1) / 100, truncated.
	require.Equal(t, sdkmath.NewInt(3_170_969), PendingReward(in))
}

func TestPendingRewardClampsNegativeToZero(t *testing.T) {
	in := input(1000, 365, 1_000_000_000_000)
	in.Now = baseTime.Add(1000 * time.Second)
	in.Compounded = sdkmath.NewInt(1_000_000_000) // over-credited past accrual

	require.True(t, PendingReward(in).IsZero())
}

func TestPendingRewardMonotonicBeforeMaturity(t *testing.T) {
	in := input(2000, 180, 50_000_000_000)

	prev := sdkmath.ZeroInt()
	for _, elapsed := range []time.Duration{
		time.Minute, time.Hour, 24 * time.Hour, 7 * 24 * time.Hour,
		30 * 24 * time.Hour, 90 * 24 * time.Hour, 179 * 24 * time.Hour,
	} {
		in.Now = baseTime.Add(elapsed)
		pending := PendingReward(in)
		assert.True(t, pending.GTE(prev), "pending must not decrease (elapsed %s)", elapsed)
		prev = pending
	}
}

func TestPendingRewardSmallPrincipalTruncatesToZero(t *testing.T) {
	// 25 tokens at 9.90% truncate to a zero per-day rate; the mature lump is
	// zero and so is every intermediate read.
	in := input(990, 30, 25)
	in.Now = baseTime.Add(15 * 24 * time.Hour)
	require.True(t, PendingReward(in).IsZero())

	in.Now = in.EndDate
	require.True(t, PendingReward(in).IsZero())
}

func TestPendingRewardDegenerateInputs(t *testing.T) {
	in := input(1000, 365, 0)
	in.Now = baseTime.Add(time.Hour)
	assert.True(t, PendingReward(in).IsZero(), "zero principal")

	in = input(0, 365, 1_000_000_000_000)
	in.Now = baseTime.Add(time.Hour)
	assert.True(t, PendingReward(in).IsZero(), "zero APR without bonus")

	in = input(1000, 365, 1_000_000_000_000)
	in.Now = baseTime.Add(-time.Hour)
	assert.True(t, PendingReward(in).IsZero(), "clock before start date")
}
