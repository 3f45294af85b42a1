package domain

import (
	"errors"
	"testing"
	"time"
)

func testCampaign(t *testing.T, leafData ...string) (*Campaign, *Tree) {
	t.Helper()
	leaves := make([][]byte, len(leafData))
	for i, d := range leafData {
		leaf := HashLeaf([]byte(d))
		leaves[i] = leaf[:]
	}
	tree := NewTree(leaves)
	c, err := NewCampaign(Address{0x0a}, "camp-1", "RWD", uint64(100*len(leafData)), tree.Root(), uint32(len(leafData)), time.Now())
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	return c, tree
}

func TestCampaignClaimHappyPath(t *testing.T) {
	c, tree := testCampaign(t, "u1", "u2", "u3", "u4")
	leaf := HashLeaf([]byte("u2"))
	if err := c.Claim(1, 100, tree.Proof(1), leaf[:]); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !c.Claimed.Get(1) || c.ClaimedAmount != 100 {
		t.Fatalf("claim state not recorded: claimed=%v amount=%d", c.Claimed.Get(1), c.ClaimedAmount)
	}
}

func TestCampaignDoubleClaim(t *testing.T) {
	c, tree := testCampaign(t, "u1", "u2")
	leaf := HashLeaf([]byte("u1"))
	if err := c.Claim(0, 100, tree.Proof(0), leaf[:]); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	err := c.Claim(0, 100, tree.Proof(0), leaf[:])
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("want ErrAlreadyClaimed, got %v", err)
	}
	if c.ClaimedAmount != 100 {
		t.Fatalf("claimed amount moved on failed claim: %d", c.ClaimedAmount)
	}
}

func TestCampaignClaimInvalidProof(t *testing.T) {
	c, tree := testCampaign(t, "u1", "u2")
	wrong := HashLeaf([]byte("intruder"))
	err := c.Claim(0, 100, tree.Proof(0), wrong[:])
	if !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("want ErrInvalidProof, got %v", err)
	}
}

func TestCampaignClaimSlotOutOfRange(t *testing.T) {
	c, tree := testCampaign(t, "u1", "u2")
	leaf := HashLeaf([]byte("u1"))
	err := c.Claim(2, 100, tree.Proof(0), leaf[:])
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("want ErrCapacityExceeded, got %v", err)
	}
}

// A single-leaf campaign: empty proof, leaf is the root.
func TestCampaignSingleLeaf(t *testing.T) {
	leaf := HashLeaf([]byte("only"))
	c, err := NewCampaign(Address{0x0a}, "camp-single", "RWD", 100, leaf[:], 1, time.Now())
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	if err := c.Claim(0, 100, nil, leaf[:]); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if c.Residual() != 0 {
		t.Fatalf("residual after full claim: %d", c.Residual())
	}
}

// Claims beyond the funded amount fail with ErrInsufficientBalance: funding
// is never reconciled against the leaf amounts, so an over-committed tree
// drains the escrow and then rejects.
func TestCampaignOverCommitted(t *testing.T) {
	c, tree := testCampaign(t, "u1", "u2") // funded 200
	leaf1 := HashLeaf([]byte("u1"))
	if err := c.Claim(0, 200, tree.Proof(0), leaf1[:]); err != nil {
		t.Fatalf("claim: %v", err)
	}
	leaf2 := HashLeaf([]byte("u2"))
	err := c.Claim(1, 200, tree.Proof(1), leaf2[:])
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestCampaignWithdrawBoundaries(t *testing.T) {
	c, tree := testCampaign(t, "u1", "u2")
	leaf := HashLeaf([]byte("u1"))
	if err := c.Claim(0, 100, tree.Proof(0), leaf[:]); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := c.Withdraw(c.Residual() + 1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount for over-withdrawal, got %v", err)
	}
	if err := c.Withdraw(c.Residual()); err != nil {
		t.Fatalf("withdraw residual: %v", err)
	}
	if c.Residual() != 0 {
		t.Fatalf("residual after drain: %d", c.Residual())
	}
	if c.ClaimedAmount != 100 || c.WithdrawnAmount != 100 {
		t.Fatalf("claimed/withdrawn accounting wrong: %d/%d", c.ClaimedAmount, c.WithdrawnAmount)
	}
}

func TestNewCampaignValidation(t *testing.T) {
	root := HashLeaf([]byte("r"))
	cases := []struct {
		name string
		fn   func() (*Campaign, error)
		want error
	}{
		{"zero amount", func() (*Campaign, error) {
			return NewCampaign(Address{1}, "c", "RWD", 0, root[:], 1, time.Now())
		}, ErrInvalidAmount},
		{"zero leaves", func() (*Campaign, error) {
			return NewCampaign(Address{1}, "c", "RWD", 100, root[:], 0, time.Now())
		}, ErrInvalidAmount},
		{"empty id", func() (*Campaign, error) {
			return NewCampaign(Address{1}, "", "RWD", 100, root[:], 1, time.Now())
		}, ErrInvalidAmount},
		{"short root", func() (*Campaign, error) {
			return NewCampaign(Address{1}, "c", "RWD", 100, []byte{1, 2, 3}, 1, time.Now())
		}, ErrInvalidProof},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.fn(); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}
