package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

// Seed inserts demo data through the ledger ports: funded demo accounts, one
// Merkle-gated campaign over five participants and one fixed-reward activity.
// Going through the repositories instead of raw SQL keeps the escrow
// accounting consistent with production traffic.
func Seed(ctx context.Context, tokens port.TokenLedger, campaigns port.CampaignRepository, activities port.ActivityRepository, token string) error {
	advertiser := demoAddress(0x0a)
	creator := demoAddress(0x0b)

	if err := tokens.Mint(ctx, advertiser, token, 1_000_000); err != nil {
		return fmt.Errorf("seed: mint advertiser: %w", err)
	}
	if err := tokens.Mint(ctx, creator, token, 1_000_000); err != nil {
		return fmt.Errorf("seed: mint creator: %w", err)
	}

	// Campaign over five participants, 100 tokens each. Leaves are the
	// hashed participant addresses, matching how the committing backend
	// builds its trees.
	participants := make([]domain.Address, 5)
	leaves := make([][]byte, len(participants))
	for i := range participants {
		participants[i] = demoAddress(byte(0x10 + i))
		leaf := domain.HashLeaf(participants[i][:])
		leaves[i] = leaf[:]
	}
	tree := domain.NewTree(leaves)
	if _, err := campaigns.CreateCampaign(ctx, port.CreateCampaignParams{
		Owner:       advertiser,
		CampaignID:  "demo-campaign-" + uuid.NewString()[:8],
		Token:       token,
		TotalAmount: 500,
		MerkleRoot:  tree.Root(),
		LeafCount:   uint32(tree.LeafCount()),
	}); err != nil {
		return fmt.Errorf("seed: create campaign: %w", err)
	}

	activity, err := activities.CreateActivity(ctx, port.CreateActivityParams{
		Creator:       creator,
		ActivityID:    "demo-activity-" + uuid.NewString()[:8],
		Token:         token,
		TotalAmount:   1000,
		RewardPerUser: 100,
		MaxUsers:      10,
	})
	if err != nil {
		return fmt.Errorf("seed: create activity: %w", err)
	}
	if _, err := activities.CompleteActivity(ctx, activity.Creator, activity.ID); err != nil {
		return fmt.Errorf("seed: complete activity: %w", err)
	}
	return nil
}

// demoAddress returns a deterministic demo address ending in the given byte.
func demoAddress(last byte) domain.Address {
	var addr domain.Address
	addr[len(addr)-1] = last
	return addr
}
