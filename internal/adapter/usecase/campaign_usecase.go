package usecase

import (
	"context"
	"encoding/hex"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

// CampaignUseCase provides the business operations of the Merkle-gated
// campaign ledger. Eligibility, double-claim and fund-release checks are
// executed atomically by the repository; this layer handles caller
// authorization and shapes the read models.
type CampaignUseCase struct {
	repo port.CampaignRepository
}

// NewCampaignUseCase creates a usecase with the provided repository.
func NewCampaignUseCase(repo port.CampaignRepository) *CampaignUseCase {
	return &CampaignUseCase{repo: repo}
}

// CreateCampaign funds a new campaign into escrow.
func (u *CampaignUseCase) CreateCampaign(ctx context.Context, p port.CreateCampaignParams) (*port.CampaignSummary, error) {
	campaign, err := u.repo.CreateCampaign(ctx, p)
	if err != nil {
		return nil, err
	}
	return campaignSummary(campaign), nil
}

// ClaimReward pays one precommitted claim slot to the claimant.
func (u *CampaignUseCase) ClaimReward(ctx context.Context, p port.ClaimRewardParams) (*port.CampaignSummary, error) {
	campaign, err := u.repo.ClaimReward(ctx, p)
	if err != nil {
		return nil, err
	}
	return campaignSummary(campaign), nil
}

// WithdrawResidual returns unclaimed funds to the owner. Only the owner may
// call it; any other caller fails with domain.ErrUnauthorized.
func (u *CampaignUseCase) WithdrawResidual(ctx context.Context, caller, owner domain.Address, campaignID string, amount uint64) (*port.CampaignSummary, error) {
	if caller != owner {
		return nil, domain.ErrUnauthorized
	}
	campaign, err := u.repo.WithdrawResidual(ctx, owner, campaignID, amount)
	if err != nil {
		return nil, err
	}
	return campaignSummary(campaign), nil
}

// GetCampaign returns the campaign summary.
func (u *CampaignUseCase) GetCampaign(ctx context.Context, owner domain.Address, campaignID string) (*port.CampaignSummary, error) {
	campaign, err := u.repo.GetCampaign(ctx, owner, campaignID)
	if err != nil {
		return nil, err
	}
	return campaignSummary(campaign), nil
}

// SlotStatus reports whether one claim slot has been paid.
func (u *CampaignUseCase) SlotStatus(ctx context.Context, owner domain.Address, campaignID string, slot uint32) (*port.SlotStatus, error) {
	campaign, err := u.repo.GetCampaign(ctx, owner, campaignID)
	if err != nil {
		return nil, err
	}
	if slot >= campaign.LeafCount {
		return nil, domain.ErrCapacityExceeded
	}
	return &port.SlotStatus{SlotIndex: slot, Claimed: campaign.Claimed.Get(slot)}, nil
}

func campaignSummary(c *domain.Campaign) *port.CampaignSummary {
	return &port.CampaignSummary{
		Owner:           c.Owner.String(),
		CampaignID:      c.ID,
		Token:           c.Token,
		TotalAmount:     c.TotalAmount,
		ClaimedAmount:   c.ClaimedAmount,
		WithdrawnAmount: c.WithdrawnAmount,
		Residual:        c.Residual(),
		MerkleRoot:      hex.EncodeToString(c.MerkleRoot),
		LeafCount:       c.LeafCount,
		CreatedAt:       c.CreatedAt,
	}
}
