package domain

import (
	"bytes"

	"golang.org/x/crypto/sha3"
)

// HashSize is the size in bytes of every node hash in a reward tree.
const HashSize = 32

// CombineHashes derives the parent hash of two sibling nodes. The pair is
// sorted byte-lexicographically before concatenation, so the result does not
// depend on which side of the tree each sibling came from. Proofs therefore
// carry no left/right flags.
func CombineHashes(a, b []byte) [32]byte {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	h := sha3.New256()
	h.Write(a)
	h.Write(b)
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// HashLeaf hashes a raw leaf payload into its tree leaf node.
func HashLeaf(payload []byte) [32]byte {
	return sha3.Sum256(payload)
}

// VerifyProof reports whether leaf is a member of the tree committed to by
// root, given the ordered sibling hashes along the path to the root. An empty
// proof is valid only for a single-leaf tree where the leaf is the root.
// Malformed input never produces an error, only a false result.
func VerifyProof(leaf []byte, proof [][]byte, root []byte) bool {
	current := append([]byte(nil), leaf...)
	for _, sibling := range proof {
		combined := CombineHashes(current, sibling)
		current = combined[:]
	}
	return bytes.Equal(current, root)
}

// Tree is a Merkle tree over a fixed set of leaf hashes, built with the same
// sorted-pair rule VerifyProof expects. An odd node at the end of a layer is
// promoted unchanged to the next layer.
type Tree struct {
	layers [][][]byte
}

// NewTree builds a tree over the given leaf hashes. It returns nil when no
// leaves are provided.
func NewTree(leaves [][]byte) *Tree {
	if len(leaves) == 0 {
		return nil
	}
	layer := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		layer[i] = append([]byte(nil), leaf...)
	}
	t := &Tree{layers: [][][]byte{layer}}
	for len(layer) > 1 {
		next := make([][]byte, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 < len(layer) {
				parent := CombineHashes(layer[i], layer[i+1])
				next = append(next, parent[:])
			} else {
				next = append(next, layer[i])
			}
		}
		t.layers = append(t.layers, next)
		layer = next
	}
	return t
}

// Root returns the tree's root hash.
func (t *Tree) Root() []byte {
	top := t.layers[len(t.layers)-1]
	return append([]byte(nil), top[0]...)
}

// Proof returns the sibling hashes proving membership of the leaf at index i,
// ordered leaf-to-root. It returns nil when i is out of range. A promoted odd
// node contributes no proof element for that layer.
func (t *Tree) Proof(i int) [][]byte {
	if i < 0 || i >= len(t.layers[0]) {
		return nil
	}
	proof := make([][]byte, 0, len(t.layers)-1)
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := i ^ 1
		if sibling < len(layer) {
			proof = append(proof, append([]byte(nil), layer[sibling]...))
		}
		i /= 2
	}
	return proof
}

// LeafCount returns the number of leaves the tree was built over.
func (t *Tree) LeafCount() int {
	return len(t.layers[0])
}
