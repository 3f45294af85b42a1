package port

import (
	"context"
	"time"

	"rewards-ledger/internal/core/domain"
)

// TokenLedger is the fungible balance primitive the reward ledgers are built
// on. It is an outbound port; implementations must apply each call atomically.
// Escrow accounts are ordinary accounts here — what makes them escrow is that
// nothing outside the ledger repositories ever moves funds out of them.
type TokenLedger interface {
	// InitAccount creates an account with a zero balance. Initializing the
	// same (address, token) pair twice fails with domain.ErrAlreadyExists.
	InitAccount(ctx context.Context, address domain.Address, token string) error
	// Mint credits freshly issued funds to an account, creating it if
	// needed.
	Mint(ctx context.Context, address domain.Address, token string, amount uint64) error
	// Transfer moves amount between accounts. It fails with
	// domain.ErrInsufficientBalance when the source cannot cover it.
	Transfer(ctx context.Context, from, to domain.Address, token string, amount uint64) error
	// Balance returns the current balance, zero for unknown accounts.
	Balance(ctx context.Context, address domain.Address, token string) (uint64, error)
}

// CreateCampaignParams carries everything needed to fund a campaign.
type CreateCampaignParams struct {
	Owner       domain.Address
	CampaignID  string
	Token       string
	TotalAmount uint64
	MerkleRoot  []byte
	LeafCount   uint32
}

// ClaimRewardParams identifies one precommitted claim slot together with the
// membership proof for it. LeafHash and Amount are trusted to match what was
// committed into the tree; the ledger verifies the hash against the root but
// does not rebuild the leaf.
type ClaimRewardParams struct {
	Claimant   domain.Address
	Owner      domain.Address
	CampaignID string
	SlotIndex  uint32
	Amount     uint64
	Proof      [][]byte
	LeafHash   []byte
}

// CampaignRepository persists campaign records and executes their state
// transitions. Every mutating call is a single atomic transition spanning the
// eligibility checks, the record update and the escrow fund movement; on any
// failure no state changes.
type CampaignRepository interface {
	// CreateCampaign stores a new campaign and moves TotalAmount from the
	// owner into campaign escrow. A duplicate (owner, id) fails with
	// domain.ErrAlreadyExists without moving funds.
	CreateCampaign(ctx context.Context, p CreateCampaignParams) (*domain.Campaign, error)
	// ClaimReward validates and pays one claim slot out of escrow.
	ClaimReward(ctx context.Context, p ClaimRewardParams) (*domain.Campaign, error)
	// WithdrawResidual returns unclaimed funds from escrow to the owner.
	WithdrawResidual(ctx context.Context, owner domain.Address, campaignID string, amount uint64) (*domain.Campaign, error)
	// GetCampaign returns the stored record, domain.ErrNotFound if absent.
	GetCampaign(ctx context.Context, owner domain.Address, campaignID string) (*domain.Campaign, error)
}

// CreateActivityParams carries everything needed to fund an activity.
type CreateActivityParams struct {
	Creator       domain.Address
	ActivityID    string
	Token         string
	TotalAmount   uint64
	RewardPerUser uint64
	MaxUsers      uint32
}

// ActivityRepository persists activity records and executes their state
// transitions under the same atomicity contract as CampaignRepository.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, p CreateActivityParams) (*domain.Activity, error)
	// CompleteActivity opens the activity for claims. Idempotent.
	CompleteActivity(ctx context.Context, creator domain.Address, activityID string) (*domain.Activity, error)
	// ClaimActivity pays RewardPerUser from escrow to the participant.
	ClaimActivity(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (*domain.Activity, error)
	// DeactivateActivity blocks further claims.
	DeactivateActivity(ctx context.Context, creator domain.Address, activityID string) (*domain.Activity, error)
	// WithdrawActivityResidual returns residual funds to the creator.
	WithdrawActivityResidual(ctx context.Context, creator domain.Address, activityID string, amount uint64) (*domain.Activity, error)
	// GetActivity returns the stored record, domain.ErrNotFound if absent.
	GetActivity(ctx context.Context, creator domain.Address, activityID string) (*domain.Activity, error)
	// ParticipantClaim returns the claim record for one participant; ok is
	// false when the participant has never claimed.
	ParticipantClaim(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (domain.ActivityClaim, bool, error)
}

// NowFunc supplies timestamps to adapters. Production wiring passes time.Now;
// tests substitute a fixed clock.
type NowFunc func() time.Time
