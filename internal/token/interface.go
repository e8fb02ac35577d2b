package token

import (
	sdkmath "cosmossdk.io/math"
)

// Ledger is the narrow capability the staking engine consumes from the
// fungible-token ledger. The engine never inspects ledger internals; transfer
// results are reported as booleans and a false return must abort the calling
// operation before any engine state is committed.
type Ledger interface {
	// BalanceOf returns the spendable balance of an account.
	BalanceOf(account string) sdkmath.Int

	// TransferFrom moves amount from one account to another. Returns false
	// when the source balance is insufficient or the transfer is refused.
	TransferFrom(from, to string, amount sdkmath.Int) bool

	// Transfer moves amount out of the ledger holder's own account.
	Transfer(to string, amount sdkmath.Int) bool
}

// NativeBank is the capability used for native-currency sweeps.
type NativeBank interface {
	Transfer(to string, amount sdkmath.Int) bool
}

// AccessController gates the administration surface.
type AccessController interface {
	IsOwner(account string) bool
}

// StaticOwner is an AccessController with a single fixed owner account.
type StaticOwner struct {
	Owner string
}

func (s StaticOwner) IsOwner(account string) bool {
	return account != "" && account == s.Owner
}
