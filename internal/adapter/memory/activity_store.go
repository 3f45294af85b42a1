package memory

import (
	"context"
	"sync"
	"time"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

type activityEntry struct {
	mu       sync.Mutex
	activity *domain.Activity
}

// ActivityStore is an in-memory implementation of port.ActivityRepository
// with the same per-record locking discipline as CampaignStore.
type ActivityStore struct {
	tokens *TokenLedger
	escrow domain.Address
	now    port.NowFunc

	mu      sync.Mutex
	records map[string]*activityEntry
}

// NewActivityStore returns a store whose escrow account is derived from the
// operator address and the activity escrow seed. The seed differs from the
// campaign seed, so the two escrow pools never intermix.
func NewActivityStore(tokens *TokenLedger, operator domain.Address, now port.NowFunc) *ActivityStore {
	if now == nil {
		now = time.Now
	}
	return &ActivityStore{
		tokens:  tokens,
		escrow:  domain.DeriveEscrowAddress(operator, domain.SeedActivityEscrow),
		now:     now,
		records: make(map[string]*activityEntry),
	}
}

// EscrowAddress returns the derived activity escrow account address.
func (s *ActivityStore) EscrowAddress() domain.Address {
	return s.escrow
}

func activityKey(creator domain.Address, id string) string {
	return creator.String() + "/" + id
}

// CreateActivity funds a new activity under the store lock.
func (s *ActivityStore) CreateActivity(ctx context.Context, p port.CreateActivityParams) (*domain.Activity, error) {
	activity, err := domain.NewActivity(p.Creator, p.ActivityID, p.Token, p.TotalAmount, p.RewardPerUser, p.MaxUsers, s.now())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := activityKey(p.Creator, p.ActivityID)
	if _, ok := s.records[key]; ok {
		return nil, domain.ErrAlreadyExists
	}
	if err := s.tokens.move(p.Creator, s.escrow, p.Token, p.TotalAmount); err != nil {
		return nil, err
	}
	s.records[key] = &activityEntry{activity: activity}
	return activity.Clone(), nil
}

func (s *ActivityStore) lookup(creator domain.Address, id string) (*activityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[activityKey(creator, id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// CompleteActivity opens the activity for claims. Idempotent.
func (s *ActivityStore) CompleteActivity(ctx context.Context, creator domain.Address, activityID string) (*domain.Activity, error) {
	entry, err := s.lookup(creator, activityID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.activity.Complete()
	return entry.activity.Clone(), nil
}

// ClaimActivity pays the fixed reward to the participant. The transition is
// trialled on a clone and committed only after the escrow release succeeds.
func (s *ActivityStore) ClaimActivity(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (*domain.Activity, error) {
	entry, err := s.lookup(creator, activityID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	clone := entry.activity.Clone()
	if err := clone.Claim(participant, s.now()); err != nil {
		return nil, err
	}
	if err := s.tokens.move(s.escrow, participant, clone.Token, clone.RewardPerUser); err != nil {
		return nil, err
	}
	entry.activity = clone
	return clone.Clone(), nil
}

// DeactivateActivity blocks further claims.
func (s *ActivityStore) DeactivateActivity(ctx context.Context, creator domain.Address, activityID string) (*domain.Activity, error) {
	entry, err := s.lookup(creator, activityID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.activity.Deactivate()
	return entry.activity.Clone(), nil
}

// WithdrawActivityResidual returns residual funds to the creator.
func (s *ActivityStore) WithdrawActivityResidual(ctx context.Context, creator domain.Address, activityID string, amount uint64) (*domain.Activity, error) {
	entry, err := s.lookup(creator, activityID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	clone := entry.activity.Clone()
	if err := clone.Withdraw(amount); err != nil {
		return nil, err
	}
	if err := s.tokens.move(s.escrow, creator, clone.Token, amount); err != nil {
		return nil, err
	}
	entry.activity = clone
	return clone.Clone(), nil
}

// GetActivity returns a copy of the stored record.
func (s *ActivityStore) GetActivity(ctx context.Context, creator domain.Address, activityID string) (*domain.Activity, error) {
	entry, err := s.lookup(creator, activityID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.activity.Clone(), nil
}

// ParticipantClaim returns the claim record for one participant.
func (s *ActivityStore) ParticipantClaim(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (domain.ActivityClaim, bool, error) {
	entry, err := s.lookup(creator, activityID)
	if err != nil {
		return domain.ActivityClaim{}, false, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	claim, ok := entry.activity.Claims[participant]
	return claim, ok, nil
}
