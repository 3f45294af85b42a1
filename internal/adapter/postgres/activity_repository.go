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

// ActivityRepository implements port.ActivityRepository on PostgreSQL under
// the same row-lock transaction discipline as CampaignRepository.
type ActivityRepository struct {
	pool   *pgxpool.Pool
	escrow domain.Address
	now    port.NowFunc
}

// NewActivityRepository returns a repository whose escrow account address is
// derived from the operator address and the activity escrow seed.
func NewActivityRepository(pool *pgxpool.Pool, operator domain.Address, now port.NowFunc) *ActivityRepository {
	if now == nil {
		now = time.Now
	}
	return &ActivityRepository{
		pool:   pool,
		escrow: domain.DeriveEscrowAddress(operator, domain.SeedActivityEscrow),
		now:    now,
	}
}

// EscrowAddress returns the derived activity escrow account address.
func (r *ActivityRepository) EscrowAddress() domain.Address {
	return r.escrow
}

// CreateActivity stores the record and funds the escrow atomically.
func (r *ActivityRepository) CreateActivity(ctx context.Context, p port.CreateActivityParams) (a *domain.Activity, err error) {
	activity, err := domain.NewActivity(p.Creator, p.ActivityID, p.Token, p.TotalAmount, p.RewardPerUser, p.MaxUsers, r.now())
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
		`INSERT INTO activities (creator_address, activity_id, token, total_amount, reward_per_user, max_users, current_users, claimed_amount, withdrawn_amount, is_active, completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, TRUE, FALSE, $7) ON CONFLICT DO NOTHING`,
		activity.Creator.String(), activity.ID, activity.Token, int64(activity.TotalAmount),
		int64(activity.RewardPerUser), int32(activity.MaxUsers), activity.CreatedAt)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrAlreadyExists
		return nil, err
	}
	if err = move(ctx, tx, activity.Creator, r.escrow, activity.Token, activity.TotalAmount, "activity:fund:"+activity.ID); err != nil {
		return nil, err
	}
	return activity, nil
}

// CompleteActivity opens the activity for claims. Completing twice leaves the
// record unchanged.
func (r *ActivityRepository) CompleteActivity(ctx context.Context, creator domain.Address, activityID string) (a *domain.Activity, err error) {
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
	activity, err := lockActivity(ctx, tx, creator, activityID)
	if err != nil {
		return nil, err
	}
	activity.Complete()
	if err = storeActivity(ctx, tx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// ClaimActivity validates the participant's eligibility and pays the fixed
// reward out of escrow.
func (r *ActivityRepository) ClaimActivity(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (a *domain.Activity, err error) {
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
	activity, err := lockActivity(ctx, tx, creator, activityID)
	if err != nil {
		return nil, err
	}
	claim, ok, err := participantClaim(ctx, tx, creator, activityID, participant)
	if err != nil {
		return nil, err
	}
	if ok {
		activity.Claims[participant] = claim
	}
	if err = activity.Claim(participant, r.now()); err != nil {
		return nil, err
	}
	if err = storeActivity(ctx, tx, activity); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO activity_claims (creator_address, activity_id, participant, claimed_at) VALUES ($1, $2, $3, $4)`,
		creator.String(), activityID, participant.String(), activity.Claims[participant].ClaimedAt)
	if err != nil {
		return nil, err
	}
	if err = move(ctx, tx, r.escrow, participant, activity.Token, activity.RewardPerUser, "activity:claim:"+activity.ID); err != nil {
		return nil, err
	}
	return activity, nil
}

// DeactivateActivity blocks further claims.
func (r *ActivityRepository) DeactivateActivity(ctx context.Context, creator domain.Address, activityID string) (a *domain.Activity, err error) {
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
	activity, err := lockActivity(ctx, tx, creator, activityID)
	if err != nil {
		return nil, err
	}
	activity.Deactivate()
	if err = storeActivity(ctx, tx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// WithdrawActivityResidual returns residual funds from escrow to the creator.
func (r *ActivityRepository) WithdrawActivityResidual(ctx context.Context, creator domain.Address, activityID string, amount uint64) (a *domain.Activity, err error) {
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
	activity, err := lockActivity(ctx, tx, creator, activityID)
	if err != nil {
		return nil, err
	}
	if err = activity.Withdraw(amount); err != nil {
		return nil, err
	}
	if err = storeActivity(ctx, tx, activity); err != nil {
		return nil, err
	}
	if err = move(ctx, tx, r.escrow, creator, activity.Token, amount, "activity:withdraw:"+activity.ID); err != nil {
		return nil, err
	}
	return activity, nil
}

// GetActivity returns the stored record without its claims map populated.
func (r *ActivityRepository) GetActivity(ctx context.Context, creator domain.Address, activityID string) (*domain.Activity, error) {
	row := r.pool.QueryRow(ctx, activitySelect+` WHERE creator_address = $1 AND activity_id = $2`,
		creator.String(), activityID)
	return scanActivity(row)
}

// ParticipantClaim returns the claim record for one participant.
func (r *ActivityRepository) ParticipantClaim(ctx context.Context, creator domain.Address, activityID string, participant domain.Address) (domain.ActivityClaim, bool, error) {
	if _, err := r.GetActivity(ctx, creator, activityID); err != nil {
		return domain.ActivityClaim{}, false, err
	}
	var claimedAt time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT claimed_at FROM activity_claims WHERE creator_address = $1 AND activity_id = $2 AND participant = $3`,
		creator.String(), activityID, participant.String()).Scan(&claimedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ActivityClaim{}, false, nil
	}
	if err != nil {
		return domain.ActivityClaim{}, false, err
	}
	return domain.ActivityClaim{Claimed: true, ClaimedAt: claimedAt}, true, nil
}

const activitySelect = `SELECT creator_address, activity_id, token, total_amount, reward_per_user, max_users, current_users, claimed_amount, withdrawn_amount, is_active, completed, created_at FROM activities`

func lockActivity(ctx context.Context, tx pgx.Tx, creator domain.Address, activityID string) (*domain.Activity, error) {
	row := tx.QueryRow(ctx, activitySelect+` WHERE creator_address = $1 AND activity_id = $2 FOR UPDATE`,
		creator.String(), activityID)
	return scanActivity(row)
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		a                                  domain.Activity
		creatorHex                         string
		total, perUser, claimed, withdrawn int64
		maxUsers, currentUsers             int32
	)
	err := row.Scan(&creatorHex, &a.ID, &a.Token, &total, &perUser, &maxUsers, &currentUsers, &claimed, &withdrawn, &a.Active, &a.Completed, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.Creator, err = domain.ParseAddress(creatorHex); err != nil {
		return nil, err
	}
	a.TotalAmount = uint64(total)
	a.RewardPerUser = uint64(perUser)
	a.MaxUsers = uint32(maxUsers)
	a.CurrentUsers = uint32(currentUsers)
	a.ClaimedAmount = uint64(claimed)
	a.WithdrawnAmount = uint64(withdrawn)
	a.Claims = make(map[domain.Address]domain.ActivityClaim)
	return &a, nil
}

func participantClaim(ctx context.Context, tx pgx.Tx, creator domain.Address, activityID string, participant domain.Address) (domain.ActivityClaim, bool, error) {
	var claimedAt time.Time
	err := tx.QueryRow(ctx,
		`SELECT claimed_at FROM activity_claims WHERE creator_address = $1 AND activity_id = $2 AND participant = $3`,
		creator.String(), activityID, participant.String()).Scan(&claimedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ActivityClaim{}, false, nil
	}
	if err != nil {
		return domain.ActivityClaim{}, false, err
	}
	return domain.ActivityClaim{Claimed: true, ClaimedAt: claimedAt}, true, nil
}

func storeActivity(ctx context.Context, tx pgx.Tx, a *domain.Activity) error {
	_, err := tx.Exec(ctx,
		`UPDATE activities SET current_users = $3, claimed_amount = $4, withdrawn_amount = $5, is_active = $6, completed = $7 WHERE creator_address = $1 AND activity_id = $2`,
		a.Creator.String(), a.ID, int32(a.CurrentUsers), int64(a.ClaimedAmount), int64(a.WithdrawnAmount), a.Active, a.Completed)
	return err
}
