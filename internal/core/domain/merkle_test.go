package domain

import (
	"bytes"
	"math/rand"
	"testing"
)

// TestCombineHashesOrderIndependent checks that sibling order never changes
// the parent hash.
func TestCombineHashesOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a := make([]byte, 32)
		b := make([]byte, 32)
		r.Read(a)
		r.Read(b)
		ab := CombineHashes(a, b)
		ba := CombineHashes(b, a)
		if ab != ba {
			t.Fatalf("combine not order-independent: %x vs %x", ab, ba)
		}
	}
}

func TestCombineHashesDistinctInputs(t *testing.T) {
	a := bytes.Repeat([]byte{1}, 32)
	b := bytes.Repeat([]byte{2}, 32)
	c := bytes.Repeat([]byte{3}, 32)
	if CombineHashes(a, b) == CombineHashes(a, c) {
		t.Fatal("distinct sibling pairs produced the same parent")
	}
}

// TestVerifyProofRoundtrip builds trees of many sizes and checks that every
// leaf's generated proof verifies against the root.
func TestVerifyProofRoundtrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 16, 33} {
		leaves := make([][]byte, n)
		for i := range leaves {
			payload := make([]byte, 40)
			r.Read(payload)
			leaf := HashLeaf(payload)
			leaves[i] = leaf[:]
		}
		tree := NewTree(leaves)
		root := tree.Root()
		for i := 0; i < n; i++ {
			proof := tree.Proof(i)
			if !VerifyProof(leaves[i], proof, root) {
				t.Fatalf("n=%d leaf=%d: valid proof rejected", n, i)
			}
		}
	}
}

// TestVerifyProofRejectsTamper flips single bytes in the leaf and in each
// proof element and expects verification to fail.
func TestVerifyProofRejectsTamper(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	leaves := make([][]byte, 8)
	for i := range leaves {
		payload := make([]byte, 40)
		r.Read(payload)
		leaf := HashLeaf(payload)
		leaves[i] = leaf[:]
	}
	tree := NewTree(leaves)
	root := tree.Root()
	proof := tree.Proof(3)

	tampered := append([]byte(nil), leaves[3]...)
	tampered[0] ^= 0x01
	if VerifyProof(tampered, proof, root) {
		t.Fatal("tampered leaf accepted")
	}
	for i := range proof {
		bad := make([][]byte, len(proof))
		for j := range proof {
			bad[j] = append([]byte(nil), proof[j]...)
		}
		bad[i][5] ^= 0x80
		if VerifyProof(leaves[3], bad, root) {
			t.Fatalf("tampered proof element %d accepted", i)
		}
	}
}

// Single-leaf trees have empty proofs: the leaf must equal the root.
func TestVerifyProofEmptyProof(t *testing.T) {
	leaf := HashLeaf([]byte("only"))
	if !VerifyProof(leaf[:], nil, leaf[:]) {
		t.Fatal("empty proof rejected for leaf == root")
	}
	other := HashLeaf([]byte("other"))
	if VerifyProof(leaf[:], nil, other[:]) {
		t.Fatal("empty proof accepted for leaf != root")
	}
}

func TestProofOutOfRange(t *testing.T) {
	leaf := HashLeaf([]byte("x"))
	tree := NewTree([][]byte{leaf[:]})
	if tree.Proof(-1) != nil || tree.Proof(1) != nil {
		t.Fatal("out-of-range proof index did not return nil")
	}
	if NewTree(nil) != nil {
		t.Fatal("empty tree should be nil")
	}
}

func TestDeriveEscrowAddressDeterministic(t *testing.T) {
	operator := Address{0x01}
	a := DeriveEscrowAddress(operator, SeedCampaignEscrow)
	b := DeriveEscrowAddress(operator, SeedCampaignEscrow)
	if a != b {
		t.Fatal("derivation not deterministic")
	}
	c := DeriveEscrowAddress(operator, SeedActivityEscrow)
	if a == c {
		t.Fatal("distinct seeds must derive distinct addresses")
	}
	other := DeriveEscrowAddress(Address{0x02}, SeedCampaignEscrow)
	if a == other {
		t.Fatal("distinct operators must derive distinct addresses")
	}
}
