package usecase

import (
	"context"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

// AccountUseCase exposes balance reads and the demo faucet over the token
// ledger port.
type AccountUseCase struct {
	tokens port.TokenLedger
}

// NewAccountUseCase creates a usecase over the given token ledger.
func NewAccountUseCase(tokens port.TokenLedger) *AccountUseCase {
	return &AccountUseCase{tokens: tokens}
}

// Mint credits freshly issued funds to an account.
func (u *AccountUseCase) Mint(ctx context.Context, address domain.Address, token string, amount uint64) error {
	if amount == 0 || token == "" {
		return domain.ErrInvalidAmount
	}
	return u.tokens.Mint(ctx, address, token, amount)
}

// Balance returns the account's balance, zero for unknown accounts.
func (u *AccountUseCase) Balance(ctx context.Context, address domain.Address, token string) (uint64, error) {
	return u.tokens.Balance(ctx, address, token)
}
