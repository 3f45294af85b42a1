package domain

import "errors"

// Ledger error taxonomy. Every failure of a ledger operation maps onto exactly
// one of these sentinels; callers match with errors.Is. Operations are
// all-or-nothing, so any of these means no state was changed.
var (
	// ErrNotFound reports an unknown campaign or activity id for the owner.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists reports a duplicate id on create, or a second
	// initialization of an escrow account.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrUnauthorized reports a caller other than the owner invoking an
	// owner-only operation.
	ErrUnauthorized = errors.New("caller is not the owner")
	// ErrInvalidProof reports a Merkle proof that does not connect the
	// supplied leaf to the campaign root.
	ErrInvalidProof = errors.New("invalid merkle proof")
	// ErrAlreadyClaimed reports a second claim against a slot or by a
	// participant that has already been paid.
	ErrAlreadyClaimed = errors.New("reward already claimed")
	// ErrCapacityExceeded reports a claim beyond the record's capacity:
	// max_users reached, or a slot index outside the committed leaf range.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidAmount reports funding that does not satisfy the creation
	// arithmetic, a zero amount, or a withdrawal above the residual.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance reports a transfer the source account cannot
	// cover.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNotCompleted reports an activity claim before the creator marked
	// the activity completed, or a withdrawal while the activity is still
	// live.
	ErrNotCompleted = errors.New("activity not completed")
	// ErrInactive reports a claim against a deactivated activity.
	ErrInactive = errors.New("activity deactivated")
)
