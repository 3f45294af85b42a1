package memory

import (
	"context"
	"sync"

	"rewards-ledger/internal/core/domain"
)

type accountKey struct {
	address domain.Address
	token   string
}

// TokenLedger is an in-memory fungible balance ledger. It implements
// port.TokenLedger and additionally exposes the package-private move used by
// the record stores, so escrow funds can only be released through a validated
// ledger transition.
type TokenLedger struct {
	mu       sync.Mutex
	balances map[accountKey]uint64
	inited   map[accountKey]bool
}

// NewTokenLedger returns an empty ledger.
func NewTokenLedger() *TokenLedger {
	return &TokenLedger{
		balances: make(map[accountKey]uint64),
		inited:   make(map[accountKey]bool),
	}
}

// InitAccount creates a zero-balance account. A second initialization of the
// same (address, token) pair fails with domain.ErrAlreadyExists.
func (l *TokenLedger) InitAccount(_ context.Context, address domain.Address, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := accountKey{address: address, token: token}
	if l.inited[key] {
		return domain.ErrAlreadyExists
	}
	l.inited[key] = true
	if _, ok := l.balances[key]; !ok {
		l.balances[key] = 0
	}
	return nil
}

// Mint credits freshly issued funds, creating the account if needed.
func (l *TokenLedger) Mint(_ context.Context, address domain.Address, token string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[accountKey{address: address, token: token}] += amount
	return nil
}

// Transfer moves amount between accounts atomically.
func (l *TokenLedger) Transfer(_ context.Context, from, to domain.Address, token string, amount uint64) error {
	return l.move(from, to, token, amount)
}

// Balance returns the current balance, zero for unknown accounts.
func (l *TokenLedger) Balance(_ context.Context, address domain.Address, token string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountKey{address: address, token: token}], nil
}

// move is the internal transfer used by the record stores while they hold the
// record lock. Debit and credit happen under one ledger lock, so a transfer
// either applies fully or not at all.
func (l *TokenLedger) move(from, to domain.Address, token string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fromKey := accountKey{address: from, token: token}
	if l.balances[fromKey] < amount {
		return domain.ErrInsufficientBalance
	}
	l.balances[fromKey] -= amount
	l.balances[accountKey{address: to, token: token}] += amount
	return nil
}
