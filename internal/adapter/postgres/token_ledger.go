package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rewards-ledger/internal/core/domain"
)

// TokenLedger implements port.TokenLedger on PostgreSQL. Balances live in the
// accounts table keyed by (address, token); every movement writes an audit
// row into transfers. The tx-scoped helpers below are unexported on purpose:
// escrow balances can only be touched from inside a ledger repository
// transaction in this package.
type TokenLedger struct {
	pool *pgxpool.Pool
}

// NewTokenLedger returns a ledger backed by the given pool.
func NewTokenLedger(pool *pgxpool.Pool) *TokenLedger {
	return &TokenLedger{pool: pool}
}

// InitAccount creates a zero-balance account. A second initialization of the
// same (address, token) pair fails with domain.ErrAlreadyExists.
func (l *TokenLedger) InitAccount(ctx context.Context, address domain.Address, token string) error {
	tag, err := l.pool.Exec(ctx,
		`INSERT INTO accounts (address, token, balance) VALUES ($1, $2, 0) ON CONFLICT DO NOTHING`,
		address.String(), token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Mint credits freshly issued funds to an account, creating it if needed.
func (l *TokenLedger) Mint(ctx context.Context, address domain.Address, token string, amount uint64) (err error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	if err = credit(ctx, tx, address, token, amount); err != nil {
		return err
	}
	return recordTransfer(ctx, tx, domain.Address{}, address, token, amount, "mint")
}

// Transfer moves amount between accounts in one serializable transaction.
func (l *TokenLedger) Transfer(ctx context.Context, from, to domain.Address, token string, amount uint64) (err error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	if err = move(ctx, tx, from, to, token, amount, "transfer"); err != nil {
		return err
	}
	return nil
}

// Balance returns the current balance, zero for unknown accounts.
func (l *TokenLedger) Balance(ctx context.Context, address domain.Address, token string) (uint64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE address = $1 AND token = $2`,
		address.String(), token).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(balance), nil
}

// debit locks the source account row and subtracts amount, failing with
// domain.ErrInsufficientBalance when the account cannot cover it.
func debit(ctx context.Context, tx pgx.Tx, address domain.Address, token string, amount uint64) error {
	var balance int64
	err := tx.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE address = $1 AND token = $2 FOR UPDATE`,
		address.String(), token).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	if uint64(balance) < amount {
		return domain.ErrInsufficientBalance
	}
	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = balance - $3 WHERE address = $1 AND token = $2`,
		address.String(), token, int64(amount))
	return err
}

// credit adds amount to an account, creating the row if needed.
func credit(ctx context.Context, tx pgx.Tx, address domain.Address, token string, amount uint64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO accounts (address, token, balance) VALUES ($1, $2, $3)
		 ON CONFLICT (address, token) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`,
		address.String(), token, int64(amount))
	return err
}

// move debits, credits and records the audit row inside the caller's
// transaction.
func move(ctx context.Context, tx pgx.Tx, from, to domain.Address, token string, amount uint64, memo string) error {
	if err := debit(ctx, tx, from, token, amount); err != nil {
		return err
	}
	if err := credit(ctx, tx, to, token, amount); err != nil {
		return err
	}
	return recordTransfer(ctx, tx, from, to, token, amount, memo)
}

// recordTransfer appends one audit row for a completed movement.
func recordTransfer(ctx context.Context, tx pgx.Tx, from, to domain.Address, token string, amount uint64, memo string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO transfers (id, from_address, to_address, token, amount, memo) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), from.String(), to.String(), token, int64(amount), memo)
	return err
}
