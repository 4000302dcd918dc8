// Package funds models the payment leg of a purchase. Payment arrives escrowed
// with the call (the caller's transfer mechanism holds it); the registry only
// directs where escrow goes: cost to the seller, remainder back to the buyer.
// A failed purchase credits nothing, so escrow never enters the registry.
package funds

import (
	"context"
	"sync"

	dErrors "veilcredit/pkg/domain-errors"
)

// Ledger is the funds-transfer port used inside purchase settlement. Credits
// must be applied exactly once per successful purchase; implementations are
// expected to be fast and local (the external money movement already happened
// when the escrow was funded).
type Ledger interface {
	Credit(ctx context.Context, account string, amount uint64) error
}

// MemoryLedger is the in-process implementation: per-account balances guarded
// by a single mutex. Balance arithmetic is append-only credits, so there is no
// per-account lock ordering to get wrong.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]uint64)}
}

func (l *MemoryLedger) Credit(_ context.Context, account string, amount uint64) error {
	if account == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "ledger account cannot be empty")
	}
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
	return nil
}

// Balance reports an account's accumulated credits.
func (l *MemoryLedger) Balance(account string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}
