package port

import (
	"context"
	"time"

	"rewards-ledger/internal/core/domain"
)

// CampaignSummary is the read-model view of a campaign returned to callers.
type CampaignSummary struct {
	Owner           string    `json:"owner"`
	CampaignID      string    `json:"campaign_id"`
	Token           string    `json:"token"`
	TotalAmount     uint64    `json:"total_amount"`
	ClaimedAmount   uint64    `json:"claimed_amount"`
	WithdrawnAmount uint64    `json:"withdrawn_amount"`
	Residual        uint64    `json:"residual"`
	MerkleRoot      string    `json:"merkle_root"`
	LeafCount       uint32    `json:"leaf_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// SlotStatus reports whether one claim slot has been paid.
type SlotStatus struct {
	SlotIndex uint32 `json:"slot_index"`
	Claimed   bool   `json:"claimed"`
}

// ActivitySummary is the read-model view of an activity.
type ActivitySummary struct {
	Creator         string    `json:"creator"`
	ActivityID      string    `json:"activity_id"`
	Token           string    `json:"token"`
	TotalAmount     uint64    `json:"total_amount"`
	RewardPerUser   uint64    `json:"reward_per_user"`
	MaxUsers        uint32    `json:"max_users"`
	CurrentUsers    uint32    `json:"current_users"`
	ClaimedAmount   uint64    `json:"claimed_amount"`
	WithdrawnAmount uint64    `json:"withdrawn_amount"`
	Residual        uint64    `json:"residual"`
	Active          bool      `json:"active"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
}

// ParticipantStatus reports one participant's claim state for an activity.
type ParticipantStatus struct {
	Participant string     `json:"participant"`
	Claimed     bool       `json:"claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

// CampaignUseCase is the inbound port for the Merkle-gated campaign ledger.
// Owner-only operations take the authenticated caller separately from the
// record owner so that a mismatch surfaces as domain.ErrUnauthorized instead
// of leaking through as not-found.
type CampaignUseCase interface {
	CreateCampaign(ctx context.Context, p CreateCampaignParams) (*CampaignSummary, error)
	ClaimReward(ctx context.Context, p ClaimRewardParams) (*CampaignSummary, error)
	WithdrawResidual(ctx context.Context, caller domain.Address, owner domain.Address, campaignID string, amount uint64) (*CampaignSummary, error)
	GetCampaign(ctx context.Context, owner domain.Address, campaignID string) (*CampaignSummary, error)
	SlotStatus(ctx context.Context, owner domain.Address, campaignID string, slot uint32) (*SlotStatus, error)
}

// ActivityUseCase is the inbound port for the fixed-reward activity ledger.
type ActivityUseCase interface {
	CreateActivity(ctx context.Context, p CreateActivityParams) (*ActivitySummary, error)
	CompleteActivity(ctx context.Context, caller domain.Address, creator domain.Address, activityID string) (*ActivitySummary, error)
	ClaimActivity(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (*ActivitySummary, error)
	DeactivateActivity(ctx context.Context, caller domain.Address, creator domain.Address, activityID string) (*ActivitySummary, error)
	WithdrawResidual(ctx context.Context, caller domain.Address, creator domain.Address, activityID string, amount uint64) (*ActivitySummary, error)
	GetActivity(ctx context.Context, creator domain.Address, activityID string) (*ActivitySummary, error)
	ParticipantStatus(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (*ParticipantStatus, error)
}

// AccountUseCase exposes balance reads and the demo faucet.
type AccountUseCase interface {
	Mint(ctx context.Context, address domain.Address, token string, amount uint64) error
	Balance(ctx context.Context, address domain.Address, token string) (uint64, error)
}
