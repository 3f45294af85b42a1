package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

// CampaignRepository implements port.CampaignRepository on PostgreSQL. Every
// mutating operation runs as one serializable transaction that locks the
// campaign row with FOR UPDATE, applies the domain transition and moves the
// escrow funds, so the check-claim-release sequence can never interleave for
// the same (owner, campaign_id) key.
type CampaignRepository struct {
	pool   *pgxpool.Pool
	escrow domain.Address
	now    port.NowFunc
}

// NewCampaignRepository returns a repository whose escrow account address is
// derived from the operator address and the campaign escrow seed.
func NewCampaignRepository(pool *pgxpool.Pool, operator domain.Address, now port.NowFunc) *CampaignRepository {
	if now == nil {
		now = time.Now
	}
	return &CampaignRepository{
		pool:   pool,
		escrow: domain.DeriveEscrowAddress(operator, domain.SeedCampaignEscrow),
		now:    now,
	}
}

// EscrowAddress returns the derived campaign escrow account address.
func (r *CampaignRepository) EscrowAddress() domain.Address {
	return r.escrow
}

// CreateCampaign stores the record and funds the escrow atomically. If the
// (owner, campaign_id) pair already exists the insert is a no-op and the
// whole transaction rolls back before any funds move.
func (r *CampaignRepository) CreateCampaign(ctx context.Context, p port.CreateCampaignParams) (c *domain.Campaign, err error) {
	campaign, err := domain.NewCampaign(p.Owner, p.CampaignID, p.Token, p.TotalAmount, p.MerkleRoot, p.LeafCount, r.now())
	if err != nil {
		return nil, err
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	tag, err := tx.Exec(ctx,
		`INSERT INTO campaigns (owner_address, campaign_id, token, total_amount, claimed_amount, withdrawn_amount, merkle_root, leaf_count, claimed_bitmap, created_at)
		 VALUES ($1, $2, $3, $4, 0, 0, $5, $6, $7, $8) ON CONFLICT DO NOTHING`,
		campaign.Owner.String(), campaign.ID, campaign.Token, int64(campaign.TotalAmount),
		campaign.MerkleRoot, int32(campaign.LeafCount), []byte(campaign.Claimed), campaign.CreatedAt)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrAlreadyExists
		return nil, err
	}
	if err = move(ctx, tx, campaign.Owner, r.escrow, campaign.Token, campaign.TotalAmount, "campaign:fund:"+campaign.ID); err != nil {
		return nil, err
	}
	return campaign, nil
}

// ClaimReward validates one claim slot and pays it out of escrow.
func (r *CampaignRepository) ClaimReward(ctx context.Context, p port.ClaimRewardParams) (c *domain.Campaign, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	campaign, err := lockCampaign(ctx, tx, p.Owner, p.CampaignID)
	if err != nil {
		return nil, err
	}
	if err = campaign.Claim(p.SlotIndex, p.Amount, p.Proof, p.LeafHash); err != nil {
		return nil, err
	}
	if err = storeCampaign(ctx, tx, campaign); err != nil {
		return nil, err
	}
	if err = move(ctx, tx, r.escrow, p.Claimant, campaign.Token, p.Amount, "campaign:claim:"+campaign.ID); err != nil {
		return nil, err
	}
	return campaign, nil
}

// WithdrawResidual returns unclaimed funds from escrow to the owner.
func (r *CampaignRepository) WithdrawResidual(ctx context.Context, owner domain.Address, campaignID string, amount uint64) (c *domain.Campaign, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	campaign, err := lockCampaign(ctx, tx, owner, campaignID)
	if err != nil {
		return nil, err
	}
	if err = campaign.Withdraw(amount); err != nil {
		return nil, err
	}
	if err = storeCampaign(ctx, tx, campaign); err != nil {
		return nil, err
	}
	if err = move(ctx, tx, r.escrow, owner, campaign.Token, amount, "campaign:withdraw:"+campaign.ID); err != nil {
		return nil, err
	}
	return campaign, nil
}

// GetCampaign returns the stored record without locking.
func (r *CampaignRepository) GetCampaign(ctx context.Context, owner domain.Address, campaignID string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, campaignSelect+` WHERE owner_address = $1 AND campaign_id = $2`,
		owner.String(), campaignID)
	return scanCampaign(row)
}

const campaignSelect = `SELECT owner_address, campaign_id, token, total_amount, claimed_amount, withdrawn_amount, merkle_root, leaf_count, claimed_bitmap, created_at FROM campaigns`

func lockCampaign(ctx context.Context, tx pgx.Tx, owner domain.Address, campaignID string) (*domain.Campaign, error) {
	row := tx.QueryRow(ctx, campaignSelect+` WHERE owner_address = $1 AND campaign_id = $2 FOR UPDATE`,
		owner.String(), campaignID)
	return scanCampaign(row)
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c                         domain.Campaign
		ownerHex                  string
		total, claimed, withdrawn int64
		leafCount                 int32
		bitmap                    []byte
	)
	err := row.Scan(&ownerHex, &c.ID, &c.Token, &total, &claimed, &withdrawn, &c.MerkleRoot, &leafCount, &bitmap, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Owner, err = domain.ParseAddress(ownerHex); err != nil {
		return nil, err
	}
	c.TotalAmount = uint64(total)
	c.ClaimedAmount = uint64(claimed)
	c.WithdrawnAmount = uint64(withdrawn)
	c.LeafCount = uint32(leafCount)
	c.Claimed = domain.Bitmap(bitmap)
	return &c, nil
}

func storeCampaign(ctx context.Context, tx pgx.Tx, c *domain.Campaign) error {
	_, err := tx.Exec(ctx,
		`UPDATE campaigns SET claimed_amount = $3, withdrawn_amount = $4, claimed_bitmap = $5 WHERE owner_address = $1 AND campaign_id = $2`,
		c.Owner.String(), c.ID, int64(c.ClaimedAmount), int64(c.WithdrawnAmount), []byte(c.Claimed))
	return err
}
