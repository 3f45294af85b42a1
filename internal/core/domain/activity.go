package domain

import "time"

// ActivityClaim records one participant's payout from an activity.
type ActivityClaim struct {
	Claimed   bool
	ClaimedAt time.Time
}

// Activity is a creator-funded reward pool paying a fixed amount per
// participant, capped at MaxUsers participants. Claims open once the creator
// marks the activity completed and close when it is deactivated.
//
// Lifecycle: Created (active, not completed) -> Completed (active, completed,
// claims allowed) -> Deactivated (inactive, claims blocked, withdrawal
// allowed). Deactivate is reachable from any state; the flags are independent
// and completed+active is the only claimable combination.
type Activity struct {
	Creator         Address
	ID              string
	Token           string
	TotalAmount     uint64
	RewardPerUser   uint64
	MaxUsers        uint32
	CurrentUsers    uint32
	ClaimedAmount   uint64
	WithdrawnAmount uint64
	Active          bool
	Completed       bool
	Claims          map[Address]ActivityClaim
	CreatedAt       time.Time
}

// NewActivity validates creation parameters and returns the initial activity
// record. The funding must satisfy totalAmount == rewardPerUser * maxUsers
// exactly; anything else fails with ErrInvalidAmount.
func NewActivity(creator Address, id, token string, totalAmount, rewardPerUser uint64, maxUsers uint32, now time.Time) (*Activity, error) {
	if id == "" || token == "" || creator.IsZero() {
		return nil, ErrInvalidAmount
	}
	if rewardPerUser == 0 || maxUsers == 0 {
		return nil, ErrInvalidAmount
	}
	// Checked multiply: reject on overflow rather than wrapping.
	expected := rewardPerUser * uint64(maxUsers)
	if expected/rewardPerUser != uint64(maxUsers) || totalAmount != expected {
		return nil, ErrInvalidAmount
	}
	return &Activity{
		Creator:       creator,
		ID:            id,
		Token:         token,
		TotalAmount:   totalAmount,
		RewardPerUser: rewardPerUser,
		MaxUsers:      maxUsers,
		Active:        true,
		Claims:        make(map[Address]ActivityClaim),
		CreatedAt:     now.UTC(),
	}, nil
}

// Clone returns a deep copy of the activity.
func (a *Activity) Clone() *Activity {
	clone := *a
	clone.Claims = make(map[Address]ActivityClaim, len(a.Claims))
	for addr, claim := range a.Claims {
		clone.Claims[addr] = claim
	}
	return &clone
}

// Complete marks the activity as completed, opening it for claims. Calling it
// again is a no-op.
func (a *Activity) Complete() {
	a.Completed = true
}

// Deactivate blocks further claims. Already-issued claims are unaffected.
func (a *Activity) Deactivate() {
	a.Active = false
}

// Claim applies a participant's claim. On success the participant's claim
// record is written and the user and amount counters advance; the caller must
// release RewardPerUser from escrow to the participant in the same atomic
// step.
func (a *Activity) Claim(participant Address, now time.Time) error {
	if !a.Completed {
		return ErrNotCompleted
	}
	if !a.Active {
		return ErrInactive
	}
	if claim, ok := a.Claims[participant]; ok && claim.Claimed {
		return ErrAlreadyClaimed
	}
	if a.CurrentUsers >= a.MaxUsers {
		return ErrCapacityExceeded
	}
	// The creator may withdraw residual once completed, so the escrow can
	// run out before the user cap does.
	if a.RewardPerUser > a.Residual() {
		return ErrInsufficientBalance
	}
	a.Claims[participant] = ActivityClaim{Claimed: true, ClaimedAt: now.UTC()}
	a.CurrentUsers++
	a.ClaimedAmount += a.RewardPerUser
	return nil
}

// Residual returns the funds still held in escrow for this activity.
func (a *Activity) Residual() uint64 {
	return a.TotalAmount - a.ClaimedAmount - a.WithdrawnAmount
}

// Withdraw records recovery of residual funds by the creator. It is permitted
// only once the activity can no longer pay new claims: deactivated, or
// completed. The caller must release the same amount from escrow to the
// creator in the same atomic step.
func (a *Activity) Withdraw(amount uint64) error {
	if a.Active && !a.Completed {
		return ErrNotCompleted
	}
	if amount == 0 || amount > a.Residual() {
		return ErrInvalidAmount
	}
	a.WithdrawnAmount += amount
	return nil
}
