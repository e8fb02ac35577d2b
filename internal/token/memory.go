/*

In-memory implementations of the token capabilities. These back the local
service mode and the test suites; a production deployment substitutes real
ledger adapters behind the same interfaces.

*/

package token

import (
	"sync"

	sdkmath "cosmossdk.io/math"
)

// MemoryLedger is a thread-safe in-memory fungible-token ledger. The holder
// account is the account Transfer debits, mirroring a contract moving its own
// funds.
type MemoryLedger struct {
	mu       sync.Mutex
	holder   string
	balances map[string]sdkmath.Int
}

// NewMemoryLedger creates an empty ledger whose Transfer capability is bound
// to the given holder account.
func NewMemoryLedger(holder string) *MemoryLedger {
	return &MemoryLedger{
		holder:   holder,
		balances: make(map[string]sdkmath.Int),
	}
}

// Mint credits an account, growing total supply. Test and genesis helper.
func (l *MemoryLedger) Mint(account string, amount sdkmath.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = l.balanceLocked(account).Add(amount)
}

func (l *MemoryLedger) balanceLocked(account string) sdkmath.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

// BalanceOf returns the spendable balance of an account.
func (l *MemoryLedger) BalanceOf(account string) sdkmath.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(account)
}

// TransferFrom moves amount between two accounts. Returns false when amount
// is not positive or the source balance is insufficient.
func (l *MemoryLedger) TransferFrom(from, to string, amount sdkmath.Int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount.IsNil() || !amount.IsPositive() {
		return false
	}
	src := l.balanceLocked(from)
	if src.LT(amount) {
		return false
	}
	l.balances[from] = src.Sub(amount)
	l.balances[to] = l.balanceLocked(to).Add(amount)
	return true
}

// Transfer moves amount out of the holder account.
func (l *MemoryLedger) Transfer(to string, amount sdkmath.Int) bool {
	return l.TransferFrom(l.holder, to, amount)
}

// MemoryBank is an in-memory native-currency bank with a single funded
// account, used for the native sweep in local mode and tests.
type MemoryBank struct {
	mu      sync.Mutex
	balance sdkmath.Int
	Sent    map[string]sdkmath.Int
}

// NewMemoryBank creates a bank holding the given native balance.
func NewMemoryBank(balance sdkmath.Int) *MemoryBank {
	return &MemoryBank{
		balance: balance,
		Sent:    make(map[string]sdkmath.Int),
	}
}

// Transfer pays amount out of the bank's balance. Returns false when amount
// is not positive or exceeds the remaining balance.
func (b *MemoryBank) Transfer(to string, amount sdkmath.Int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if amount.IsNil() || !amount.IsPositive() || b.balance.LT(amount) {
		return false
	}
	b.balance = b.balance.Sub(amount)
	prev, ok := b.Sent[to]
	if !ok {
		prev = sdkmath.ZeroInt()
	}
	b.Sent[to] = prev.Add(amount)
	return true
}
