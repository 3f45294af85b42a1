package usecase

import (
	"context"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

// ActivityUseCase provides the business operations of the fixed-reward
// activity ledger.
type ActivityUseCase struct {
	repo port.ActivityRepository
}

// NewActivityUseCase creates a usecase with the provided repository.
func NewActivityUseCase(repo port.ActivityRepository) *ActivityUseCase {
	return &ActivityUseCase{repo: repo}
}

// CreateActivity funds a new activity into escrow. The funding must equal
// reward_per_user * max_users exactly.
func (u *ActivityUseCase) CreateActivity(ctx context.Context, p port.CreateActivityParams) (*port.ActivitySummary, error) {
	activity, err := u.repo.CreateActivity(ctx, p)
	if err != nil {
		return nil, err
	}
	return activitySummary(activity), nil
}

// CompleteActivity marks the activity completed, opening it for claims.
// Creator-only; idempotent.
func (u *ActivityUseCase) CompleteActivity(ctx context.Context, caller, creator domain.Address, activityID string) (*port.ActivitySummary, error) {
	if caller != creator {
		return nil, domain.ErrUnauthorized
	}
	activity, err := u.repo.CompleteActivity(ctx, creator, activityID)
	if err != nil {
		return nil, err
	}
	return activitySummary(activity), nil
}

// ClaimActivity pays the fixed reward to the participant. Participants
// authenticate as themselves; no proof is required.
func (u *ActivityUseCase) ClaimActivity(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (*port.ActivitySummary, error) {
	if participant.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	activity, err := u.repo.ClaimActivity(ctx, creator, activityID, participant)
	if err != nil {
		return nil, err
	}
	return activitySummary(activity), nil
}

// DeactivateActivity blocks further claims. Creator-only.
func (u *ActivityUseCase) DeactivateActivity(ctx context.Context, caller, creator domain.Address, activityID string) (*port.ActivitySummary, error) {
	if caller != creator {
		return nil, domain.ErrUnauthorized
	}
	activity, err := u.repo.DeactivateActivity(ctx, creator, activityID)
	if err != nil {
		return nil, err
	}
	return activitySummary(activity), nil
}

// WithdrawResidual returns residual funds to the creator. Creator-only;
// permitted only once the activity is deactivated or completed.
func (u *ActivityUseCase) WithdrawResidual(ctx context.Context, caller, creator domain.Address, activityID string, amount uint64) (*port.ActivitySummary, error) {
	if caller != creator {
		return nil, domain.ErrUnauthorized
	}
	activity, err := u.repo.WithdrawActivityResidual(ctx, creator, activityID, amount)
	if err != nil {
		return nil, err
	}
	return activitySummary(activity), nil
}

// GetActivity returns the activity summary.
func (u *ActivityUseCase) GetActivity(ctx context.Context, creator domain.Address, activityID string) (*port.ActivitySummary, error) {
	activity, err := u.repo.GetActivity(ctx, creator, activityID)
	if err != nil {
		return nil, err
	}
	return activitySummary(activity), nil
}

// ParticipantStatus reports one participant's claim state.
func (u *ActivityUseCase) ParticipantStatus(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (*port.ParticipantStatus, error) {
	claim, ok, err := u.repo.ParticipantClaim(ctx, creator, activityID, participant)
	if err != nil {
		return nil, err
	}
	status := &port.ParticipantStatus{Participant: participant.String(), Claimed: ok && claim.Claimed}
	if status.Claimed {
		claimedAt := claim.ClaimedAt
		status.ClaimedAt = &claimedAt
	}
	return status, nil
}

func activitySummary(a *domain.Activity) *port.ActivitySummary {
	return &port.ActivitySummary{
		Creator:         a.Creator.String(),
		ActivityID:      a.ID,
		Token:           a.Token,
		TotalAmount:     a.TotalAmount,
		RewardPerUser:   a.RewardPerUser,
		MaxUsers:        a.MaxUsers,
		CurrentUsers:    a.CurrentUsers,
		ClaimedAmount:   a.ClaimedAmount,
		WithdrawnAmount: a.WithdrawnAmount,
		Residual:        a.Residual(),
		Active:          a.Active,
		Completed:       a.Completed,
		CreatedAt:       a.CreatedAt,
	}
}
