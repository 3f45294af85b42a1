package domain

import (
	"math"
	"time"
)

// Campaign is an advertiser-funded reward campaign. The funding amount is
// held in the campaign escrow account and committed to a Merkle root over the
// eligible claims; each leaf occupies one claim slot in the bitmap.
// Amounts are unsigned integers in the token's smallest unit.
type Campaign struct {
	Owner           Address
	ID              string
	Token           string
	TotalAmount     uint64 // immutable after creation
	ClaimedAmount   uint64 // sum of released per-claim amounts, non-decreasing
	WithdrawnAmount uint64 // residual recovered by the owner, non-decreasing
	MerkleRoot      []byte
	LeafCount       uint32
	Claimed         Bitmap
	CreatedAt       time.Time
}

// NewCampaign validates creation parameters and returns the initial campaign
// record with an all-unset claim bitmap. Funding the escrow is the caller's
// responsibility and must happen atomically with persisting the record.
//
// The funding amount is not reconciled against the sum of the amounts inside
// the tree's leaves: the ledger only ever sees leaf hashes, so that sum is not
// computable here. An over-committed campaign pays claims until the escrow is
// drained and then fails with ErrInsufficientBalance.
func NewCampaign(owner Address, id, token string, totalAmount uint64, root []byte, leafCount uint32, now time.Time) (*Campaign, error) {
	if id == "" || token == "" || owner.IsZero() {
		return nil, ErrInvalidAmount
	}
	if totalAmount == 0 || leafCount == 0 {
		return nil, ErrInvalidAmount
	}
	if len(root) != HashSize {
		return nil, ErrInvalidProof
	}
	return &Campaign{
		Owner:       owner,
		ID:          id,
		Token:       token,
		TotalAmount: totalAmount,
		MerkleRoot:  append([]byte(nil), root...),
		LeafCount:   leafCount,
		Claimed:     NewBitmap(leafCount),
		CreatedAt:   now.UTC(),
	}, nil
}

// Clone returns a deep copy of the campaign so adapters can trial a state
// transition without mutating the stored record.
func (c *Campaign) Clone() *Campaign {
	clone := *c
	clone.MerkleRoot = append([]byte(nil), c.MerkleRoot...)
	clone.Claimed = c.Claimed.Clone()
	return &clone
}

// Claim applies a claim against slot with the supplied amount and membership
// proof. The check order is: slot range, double-claim, proof, residual. On
// success the slot bit is set and ClaimedAmount grows by amount; the caller
// must release the same amount from escrow in the same atomic step.
//
// The leaf hash is taken as supplied: the ledger verifies it against the root
// but never recomputes it from (claimant, amount, slot). Leaf construction is
// the committing backend's responsibility.
func (c *Campaign) Claim(slot uint32, amount uint64, proof [][]byte, leafHash []byte) error {
	if slot >= c.LeafCount {
		return ErrCapacityExceeded
	}
	if c.Claimed.Get(slot) {
		return ErrAlreadyClaimed
	}
	if !VerifyProof(leafHash, proof, c.MerkleRoot) {
		return ErrInvalidProof
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if amount > math.MaxUint64-c.ClaimedAmount {
		return ErrInvalidAmount
	}
	if amount > c.Residual() {
		return ErrInsufficientBalance
	}
	c.Claimed.Set(slot)
	c.ClaimedAmount += amount
	return nil
}

// Residual returns the funds still held in escrow for this campaign:
// TotalAmount minus everything released to claimants or the owner.
func (c *Campaign) Residual() uint64 {
	return c.TotalAmount - c.ClaimedAmount - c.WithdrawnAmount
}

// Withdraw records recovery of residual funds by the owner. The caller must
// release the same amount from escrow to the owner in the same atomic step.
func (c *Campaign) Withdraw(amount uint64) error {
	if amount == 0 || amount > c.Residual() {
		return ErrInvalidAmount
	}
	c.WithdrawnAmount += amount
	return nil
}
