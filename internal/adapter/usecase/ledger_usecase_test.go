package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rewards-ledger/internal/adapter/memory"
	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

var operator = domain.Address{0x01}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	tokens     *memory.TokenLedger
	campaigns  *CampaignUseCase
	activities *ActivityUseCase
	accounts   *AccountUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens := memory.NewTokenLedger()
	return &fixture{
		tokens:     tokens,
		campaigns:  NewCampaignUseCase(memory.NewCampaignStore(tokens, operator, fixedNow)),
		activities: NewActivityUseCase(memory.NewActivityStore(tokens, operator, fixedNow)),
		accounts:   NewAccountUseCase(tokens),
	}
}

func (f *fixture) fund(t *testing.T, last byte, amount uint64) domain.Address {
	t.Helper()
	addr := domain.Address{31: last}
	require.NoError(t, f.tokens.Mint(context.Background(), addr, "RWD", amount))
	return addr
}

func (f *fixture) newCampaign(t *testing.T, owner domain.Address, id string, claimant domain.Address, amount uint64) [][]byte {
	t.Helper()
	leaf := domain.HashLeaf(claimant[:])
	_, err := f.campaigns.CreateCampaign(context.Background(), port.CreateCampaignParams{
		Owner:       owner,
		CampaignID:  id,
		Token:       "RWD",
		TotalAmount: amount,
		MerkleRoot:  leaf[:],
		LeafCount:   1,
	})
	require.NoError(t, err)
	return [][]byte{leaf[:]}
}

func TestCampaignWithdrawAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.fund(t, 0x0a, 100)
	stranger := domain.Address{31: 0x66}
	f.newCampaign(t, owner, "c1", domain.Address{31: 0x10}, 100)

	_, err := f.campaigns.WithdrawResidual(ctx, stranger, owner, "c1", 50)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	summary, err := f.campaigns.WithdrawResidual(ctx, owner, owner, "c1", 50)
	require.NoError(t, err)
	require.Equal(t, uint64(50), summary.WithdrawnAmount)
	require.Equal(t, uint64(50), summary.Residual)
}

func TestCampaignSlotStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.fund(t, 0x0a, 100)
	claimant := domain.Address{31: 0x10}
	leaves := f.newCampaign(t, owner, "c1", claimant, 100)

	status, err := f.campaigns.SlotStatus(ctx, owner, "c1", 0)
	require.NoError(t, err)
	require.False(t, status.Claimed)

	_, err = f.campaigns.SlotStatus(ctx, owner, "c1", 1)
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	_, err = f.campaigns.ClaimReward(ctx, port.ClaimRewardParams{
		Claimant:   claimant,
		Owner:      owner,
		CampaignID: "c1",
		SlotIndex:  0,
		Amount:     100,
		LeafHash:   leaves[0],
	})
	require.NoError(t, err)

	status, err = f.campaigns.SlotStatus(ctx, owner, "c1", 0)
	require.NoError(t, err)
	require.True(t, status.Claimed)

	_, err = f.campaigns.SlotStatus(ctx, owner, "missing", 0)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCampaignSummaryFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.fund(t, 0x0a, 100)
	claimant := domain.Address{31: 0x10}
	f.newCampaign(t, owner, "c1", claimant, 100)

	summary, err := f.campaigns.GetCampaign(ctx, owner, "c1")
	require.NoError(t, err)
	require.Equal(t, owner.String(), summary.Owner)
	require.Equal(t, "c1", summary.CampaignID)
	require.Equal(t, uint64(100), summary.TotalAmount)
	require.Equal(t, uint64(100), summary.Residual)
	require.Len(t, summary.MerkleRoot, 2*domain.HashSize)
	require.Equal(t, fixedNow(), summary.CreatedAt)
}

func newActivity(t *testing.T, f *fixture, creator domain.Address, id string) {
	t.Helper()
	_, err := f.activities.CreateActivity(context.Background(), port.CreateActivityParams{
		Creator:       creator,
		ActivityID:    id,
		Token:         "RWD",
		TotalAmount:   100,
		RewardPerUser: 10,
		MaxUsers:      10,
	})
	require.NoError(t, err)
}

func TestActivityCreatorOnlyOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.fund(t, 0x0b, 100)
	stranger := domain.Address{31: 0x66}
	newActivity(t, f, creator, "a1")

	_, err := f.activities.CompleteActivity(ctx, stranger, creator, "a1")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.activities.DeactivateActivity(ctx, stranger, creator, "a1")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.activities.WithdrawResidual(ctx, stranger, creator, "a1", 10)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	summary, err := f.activities.CompleteActivity(ctx, creator, creator, "a1")
	require.NoError(t, err)
	require.True(t, summary.Completed)
}

func TestActivityClaimRejectsZeroParticipant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.fund(t, 0x0b, 100)
	newActivity(t, f, creator, "a1")
	_, err := f.activities.CompleteActivity(ctx, creator, creator, "a1")
	require.NoError(t, err)

	_, err = f.activities.ClaimActivity(ctx, creator, "a1", domain.Address{})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestActivityParticipantStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.fund(t, 0x0b, 100)
	participant := domain.Address{31: 0x20}
	newActivity(t, f, creator, "a1")
	_, err := f.activities.CompleteActivity(ctx, creator, creator, "a1")
	require.NoError(t, err)

	status, err := f.activities.ParticipantStatus(ctx, creator, "a1", participant)
	require.NoError(t, err)
	require.False(t, status.Claimed)
	require.Nil(t, status.ClaimedAt)

	summary, err := f.activities.ClaimActivity(ctx, creator, "a1", participant)
	require.NoError(t, err)
	require.Equal(t, uint32(1), summary.CurrentUsers)
	require.Equal(t, uint64(10), summary.ClaimedAmount)
	require.Equal(t, uint64(90), summary.Residual)

	status, err = f.activities.ParticipantStatus(ctx, creator, "a1", participant)
	require.NoError(t, err)
	require.True(t, status.Claimed)
	require.NotNil(t, status.ClaimedAt)
	require.Equal(t, fixedNow(), *status.ClaimedAt)

	_, err = f.activities.ParticipantStatus(ctx, creator, "missing", participant)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountMintValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addr := domain.Address{31: 0x30}

	require.ErrorIs(t, f.accounts.Mint(ctx, addr, "RWD", 0), domain.ErrInvalidAmount)
	require.ErrorIs(t, f.accounts.Mint(ctx, addr, "", 5), domain.ErrInvalidAmount)
	require.NoError(t, f.accounts.Mint(ctx, addr, "RWD", 5))

	balance, err := f.accounts.Balance(ctx, addr, "RWD")
	require.NoError(t, err)
	require.Equal(t, uint64(5), balance)

	balance, err = f.accounts.Balance(ctx, domain.Address{31: 0x31}, "RWD")
	require.NoError(t, err)
	require.Equal(t, uint64(0), balance)
}
