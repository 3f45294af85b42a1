package memory

import (
	"context"
	"sync"
	"time"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

type campaignEntry struct {
	mu       sync.Mutex
	campaign *domain.Campaign
}

// CampaignStore is an in-memory implementation of port.CampaignRepository.
// Each record carries its own lock spanning the whole check-claim-release
// sequence, giving the same serialization per (owner, campaign_id) key that
// the postgres adapter gets from row locks.
type CampaignStore struct {
	tokens *TokenLedger
	escrow domain.Address
	now    port.NowFunc

	mu      sync.Mutex
	records map[string]*campaignEntry
}

// NewCampaignStore returns a store whose escrow account is derived from the
// operator address and the campaign escrow seed.
func NewCampaignStore(tokens *TokenLedger, operator domain.Address, now port.NowFunc) *CampaignStore {
	if now == nil {
		now = time.Now
	}
	return &CampaignStore{
		tokens:  tokens,
		escrow:  domain.DeriveEscrowAddress(operator, domain.SeedCampaignEscrow),
		now:     now,
		records: make(map[string]*campaignEntry),
	}
}

// EscrowAddress returns the derived campaign escrow account address.
func (s *CampaignStore) EscrowAddress() domain.Address {
	return s.escrow
}

func campaignKey(owner domain.Address, id string) string {
	return owner.String() + "/" + id
}

// CreateCampaign funds a new campaign. The duplicate check and the transfer
// into escrow happen under the store lock, so a duplicate id can never be
// double-funded.
func (s *CampaignStore) CreateCampaign(ctx context.Context, p port.CreateCampaignParams) (*domain.Campaign, error) {
	campaign, err := domain.NewCampaign(p.Owner, p.CampaignID, p.Token, p.TotalAmount, p.MerkleRoot, p.LeafCount, s.now())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := campaignKey(p.Owner, p.CampaignID)
	if _, ok := s.records[key]; ok {
		return nil, domain.ErrAlreadyExists
	}
	if err := s.tokens.move(p.Owner, s.escrow, p.Token, p.TotalAmount); err != nil {
		return nil, err
	}
	s.records[key] = &campaignEntry{campaign: campaign}
	return campaign.Clone(), nil
}

func (s *CampaignStore) lookup(owner domain.Address, id string) (*campaignEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[campaignKey(owner, id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// ClaimReward validates and pays one claim slot. The transition is trialled
// on a clone and only committed after the escrow release succeeds, so a
// failed transfer leaves no partial state.
func (s *CampaignStore) ClaimReward(ctx context.Context, p port.ClaimRewardParams) (*domain.Campaign, error) {
	entry, err := s.lookup(p.Owner, p.CampaignID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	clone := entry.campaign.Clone()
	if err := clone.Claim(p.SlotIndex, p.Amount, p.Proof, p.LeafHash); err != nil {
		return nil, err
	}
	if err := s.tokens.move(s.escrow, p.Claimant, clone.Token, p.Amount); err != nil {
		return nil, err
	}
	entry.campaign = clone
	return clone.Clone(), nil
}

// WithdrawResidual returns unclaimed funds to the owner.
func (s *CampaignStore) WithdrawResidual(ctx context.Context, owner domain.Address, campaignID string, amount uint64) (*domain.Campaign, error) {
	entry, err := s.lookup(owner, campaignID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	clone := entry.campaign.Clone()
	if err := clone.Withdraw(amount); err != nil {
		return nil, err
	}
	if err := s.tokens.move(s.escrow, owner, clone.Token, amount); err != nil {
		return nil, err
	}
	entry.campaign = clone
	return clone.Clone(), nil
}

// GetCampaign returns a copy of the stored record.
func (s *CampaignStore) GetCampaign(ctx context.Context, owner domain.Address, campaignID string) (*domain.Campaign, error) {
	entry, err := s.lookup(owner, campaignID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.campaign.Clone(), nil
}
