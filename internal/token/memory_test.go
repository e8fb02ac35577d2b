package token

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerTransfers(t *testing.T) {
	ledger := NewMemoryLedger("vault")
	ledger.Mint("alice", sdkmath.NewInt(50))

	assert.Equal(t, sdkmath.NewInt(50), ledger.BalanceOf("alice"))
	assert.True(t, ledger.BalanceOf("bob").IsZero())

	require.True(t, ledger.TransferFrom("alice", "bob", sdkmath.NewInt(20)))
	assert.Equal(t, sdkmath.NewInt(30), ledger.BalanceOf("alice"))
	assert.Equal(t, sdkmath.NewInt(20), ledger.BalanceOf("bob"))

	assert.False(t, ledger.TransferFrom("alice", "bob", sdkmath.NewInt(31)), "insufficient balance")
	assert.False(t, ledger.TransferFrom("alice", "bob", sdkmath.ZeroInt()), "non-positive amount")
	assert.False(t, ledger.TransferFrom("alice", "bob", sdkmath.NewInt(-1)))

	// Refused transfers change nothing.
	assert.Equal(t, sdkmath.NewInt(30), ledger.BalanceOf("alice"))
	assert.Equal(t, sdkmath.NewInt(20), ledger.BalanceOf("bob"))
}

func TestMemoryLedgerHolderTransfer(t *testing.T) {
	ledger := NewMemoryLedger("vault")
	ledger.Mint("vault", sdkmath.NewInt(100))

	require.True(t, ledger.Transfer("carol", sdkmath.NewInt(60)))
	assert.Equal(t, sdkmath.NewInt(40), ledger.BalanceOf("vault"))
	assert.Equal(t, sdkmath.NewInt(60), ledger.BalanceOf("carol"))

	assert.False(t, ledger.Transfer("carol", sdkmath.NewInt(41)))
}

func TestMemoryBank(t *testing.T) {
	bank := NewMemoryBank(sdkmath.NewInt(100))

	require.True(t, bank.Transfer("ops", sdkmath.NewInt(70)))
	assert.Equal(t, sdkmath.NewInt(70), bank.Sent["ops"])

	assert.False(t, bank.Transfer("ops", sdkmath.NewInt(31)), "over-draw refused")
	require.True(t, bank.Transfer("ops", sdkmath.NewInt(30)))
	assert.Equal(t, sdkmath.NewInt(100), bank.Sent["ops"])
}

func TestStaticOwner(t *testing.T) {
	access := StaticOwner{Owner: "admin"}
	assert.True(t, access.IsOwner("admin"))
	assert.False(t, access.IsOwner("alice"))
	assert.False(t, access.IsOwner(""))

	assert.False(t, StaticOwner{}.IsOwner(""), "empty owner never matches")
}
