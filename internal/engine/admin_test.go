package engine

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockfi/stakevault/internal/token"
	"github.com/lockfi/stakevault/internal/types"
)

func TestAdminOperationsRequireOwner(t *testing.T) {
	eng, _ := newTestEngine(t)

	assert.ErrorIs(t, eng.SetAPRFactor("mallory", 5, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SetBonusAPR("mallory", 5, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SetEmergencyFee("mallory", 5, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SetCompoundPeriod("mallory", time.Hour, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SetPoolAPR("mallory", 0, 500, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SetPoolEnabled("mallory", 0, false, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SetUserBonus("mallory", "alice", true, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SetPaused("mallory", true, baseTime), ErrUnauthorized)
	assert.ErrorIs(t, eng.SweepNative("mallory", "out", sdkmath.NewInt(1), baseTime), ErrUnauthorized)

	_, err := eng.CreatePool("mallory", 1000, 90, baseTime)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = eng.ReturnAllDeposits("mallory", baseTime)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestParameterSetters(t *testing.T) {
	eng, _ := newTestEngine(t)

	require.NoError(t, eng.SetAPRFactor(testOwner, 25, baseTime))
	require.NoError(t, eng.SetBonusAPR(testOwner, 300, baseTime))
	require.NoError(t, eng.SetEmergencyFee(testOwner, 15, baseTime))
	require.NoError(t, eng.SetCompoundPeriod(testOwner, 12*time.Hour, baseTime))

	params := eng.Params()
	assert.Equal(t, int64(25), params.APRFactor)
	assert.Equal(t, int64(300), params.BonusAPR)
	assert.Equal(t, int64(15), params.EmergencyFee)
	assert.Equal(t, 12*time.Hour, params.CompoundPeriod)

	assert.Error(t, eng.SetEmergencyFee(testOwner, 101, baseTime))
	assert.Error(t, eng.SetEmergencyFee(testOwner, -1, baseTime))
	assert.Error(t, eng.SetAPRFactor(testOwner, -1, baseTime))
}

func TestUserBonusAffectsRewards(t *testing.T) {
	eng, ledger := newTestEngine(t)
	ledger.Mint("alice", sdkmath.NewInt(1_000_000_000_000))

	id, err := eng.Stake("alice", 2, sdkmath.NewInt(1_000_000_000_000), baseTime)
	require.NoError(t, err)

	now := baseTime.Add(1000 * time.Second)
	plain, err := eng.PendingReward(id, now)
	require.NoError(t, err)

	require.NoError(t, eng.SetUserBonus(testOwner, "alice", true, baseTime))
	assert.True(t, eng.HasBonus("alice"))

	boosted, err := eng.PendingReward(id, now)
	require.NoError(t, err)
	assert.True(t, boosted.GT(plain), "bonus flag must raise the pending reward")

	require.NoError(t, eng.SetUserBonus(testOwner, "alice", false, baseTime))
	assert.False(t, eng.HasBonus("alice"))

	cleared, err := eng.PendingReward(id, now)
	require.NoError(t, err)
	assert.Equal(t, plain, cleared)
}

func TestUserBonusBatch(t *testing.T) {
	eng, _ := newTestEngine(t)

	accounts := []string{"alice", "bob", "carol"}
	require.NoError(t, eng.SetUserBonusBatch(testOwner, accounts, true, baseTime))
	for _, account := range accounts {
		assert.True(t, eng.HasBonus(account))
	}

	require.NoError(t, eng.SetUserBonusBatch(testOwner, accounts[:2], false, baseTime))
	assert.False(t, eng.HasBonus("alice"))
	assert.False(t, eng.HasBonus("bob"))
	assert.True(t, eng.HasBonus("carol"))

	err := eng.SetUserBonusBatch(testOwner, []string{"dave", ""}, true, baseTime)
	assert.Error(t, err)
	assert.False(t, eng.HasBonus("dave"), "a bad entry aborts the batch up front")
}

func TestSetPoolsEnabledBatch(t *testing.T) {
	eng, _ := newTestEngine(t)

	require.NoError(t, eng.SetPoolsEnabledBatch(testOwner, []types.PoolID{0, 1}, false, baseTime))
	for _, id := range []types.PoolID{0, 1} {
		pool, err := eng.PoolByID(id)
		require.NoError(t, err)
		assert.False(t, pool.Enabled)
	}
	pool, err := eng.PoolByID(2)
	require.NoError(t, err)
	assert.True(t, pool.Enabled)

	err = eng.SetPoolsEnabledBatch(testOwner, []types.PoolID{2, 42}, false, baseTime)
	assert.ErrorIs(t, err, ErrInvalidPoolID)
	pool, err = eng.PoolByID(2)
	require.NoError(t, err)
	assert.True(t, pool.Enabled, "a bad id aborts the batch before any change")
}

func TestSetPoolAPRBypassesDrift(t *testing.T) {
	eng, _ := newTestEngine(t)

	require.NoError(t, eng.SetPoolAPR(testOwner, 0, 4242, baseTime))
	pool, err := eng.PoolByID(0)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), pool.APR)

	assert.ErrorIs(t, eng.SetPoolAPR(testOwner, 77, 100, baseTime), ErrInvalidPoolID)
	assert.Error(t, eng.SetPoolAPR(testOwner, 0, -1, baseTime))
}

func TestReturnAllDeposits(t *testing.T) {
	eng, ledger := newTestEngine(t)
	ledger.Mint("alice", sdkmath.NewInt(100))
	ledger.Mint("bob", sdkmath.NewInt(200))

	_, err := eng.Stake("alice", 0, sdkmath.NewInt(100), baseTime)
	require.NoError(t, err)
	_, err = eng.Stake("bob", 1, sdkmath.NewInt(200), baseTime)
	require.NoError(t, err)

	returned, err := eng.ReturnAllDeposits(testOwner, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, returned)

	// Bare principal comes back: no lock check, no reward, no fee.
	assert.Equal(t, sdkmath.NewInt(100), ledger.BalanceOf("alice"))
	assert.Equal(t, sdkmath.NewInt(200), ledger.BalanceOf("bob"))

	for _, d := range eng.Deposits() {
		assert.True(t, d.Ended)
		assert.True(t, d.Amount.IsZero())
	}
	for _, p := range eng.Pools() {
		assert.Equal(t, uint64(0), p.TotalStakers)
	}

	// Re-running is a no-op.
	returned, err = eng.ReturnAllDeposits(testOwner, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, returned)
}

func TestSweepToken(t *testing.T) {
	eng, ledger := newTestEngine(t)
	ledger.Mint("alice", sdkmath.NewInt(40))

	id, err := eng.Stake("alice", 0, sdkmath.NewInt(40), baseTime)
	require.NoError(t, err)
	_, err = eng.EmergencyWithdraw("alice", id, baseTime.Add(time.Minute))
	require.NoError(t, err)

	// The 10% fee (4 tokens) stayed in the engine account.
	require.NoError(t, eng.SweepToken(testOwner, ledger, "treasury", sdkmath.NewInt(4), baseTime))
	assert.Equal(t, sdkmath.NewInt(4), ledger.BalanceOf("treasury"))

	assert.Error(t, eng.SweepToken(testOwner, ledger, "treasury", sdkmath.ZeroInt(), baseTime))
	assert.Error(t, eng.SweepToken(testOwner, nil, "treasury", sdkmath.NewInt(1), baseTime))
}

func TestSweepNative(t *testing.T) {
	bank := token.NewMemoryBank(sdkmath.NewInt(1000))
	ledger := token.NewMemoryLedger(testAccount)
	eng, err := New(Config{
		Ledger:  ledger,
		Bank:    bank,
		Access:  token.StaticOwner{Owner: testOwner},
		Account: testAccount,
		Params:  types.EngineParameters{EmergencyFee: 10, CompoundPeriod: time.Hour},
	})
	require.NoError(t, err)

	require.NoError(t, eng.SweepNative(testOwner, "ops", sdkmath.NewInt(400), baseTime))
	assert.Equal(t, sdkmath.NewInt(400), bank.Sent["ops"])

	err = eng.SweepNative(testOwner, "ops", sdkmath.NewInt(5000), baseTime)
	assert.ErrorIs(t, err, ErrNativeTransferFailed)
}

func TestCreatePoolValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	id, err := eng.CreatePool(testOwner, 500, 90, baseTime)
	require.NoError(t, err)
	assert.Equal(t, types.PoolID(3), id, "pool ids are sequential")

	_, err = eng.CreatePool(testOwner, -1, 90, baseTime)
	assert.Error(t, err)
	_, err = eng.CreatePool(testOwner, 500, 0, baseTime)
	assert.Error(t, err)
}
