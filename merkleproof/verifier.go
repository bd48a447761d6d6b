// Package merkleproof adapts the hash-tree membership primitive consumed by
// the claim engines. Proof arrays are caller-supplied and untrusted; the
// engines treat Verify as a black-box predicate.
package merkleproof

import (
	"errors"

	"github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/sha3"
)

var ErrEmptyTree = errors.New("merkleproof: no leaves")

// Proof is a sibling path proving a leaf's inclusion under a root.
type Proof struct {
	Hashes [][]byte
	Index  uint64
}

// Verifier tests leaf membership under a published commitment root.
type Verifier interface {
	Verify(root [32]byte, leaf []byte, proof Proof) bool
}

// SHA3Verifier verifies proofs produced by sorted sha3-256 trees, the format
// the distribution tooling publishes.
type SHA3Verifier struct{}

// Verify implements the Verifier interface. Malformed proofs simply fail
// verification; no error surface is exposed.
func (SHA3Verifier) Verify(root [32]byte, leaf []byte, proof Proof) bool {
	if len(leaf) == 0 {
		return false
	}
	p := &merkletree.Proof{Hashes: proof.Hashes, Index: proof.Index}
	ok, err := merkletree.VerifyProofUsing(leaf, false, p, [][]byte{root[:]}, sha3.New256())
	if err != nil {
		return false
	}
	return ok
}

// Tree wraps a sorted sha3-256 merkle tree over raw leaf encodings. It backs
// the distribution CLI and the test fixtures.
type Tree struct {
	tree *merkletree.MerkleTree
}

// NewTree builds a tree over the provided leaf encodings.
func NewTree(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	t, err := merkletree.NewTree(
		merkletree.WithData(leaves),
		merkletree.WithHashType(sha3.New256()),
		merkletree.WithSorted(true),
	)
	if err != nil {
		return nil, err
	}
	return &Tree{tree: t}, nil
}

// Root returns the tree's commitment root.
func (t *Tree) Root() [32]byte {
	var root [32]byte
	copy(root[:], t.tree.Root())
	return root
}

// Prove generates the membership proof for a leaf encoding.
func (t *Tree) Prove(leaf []byte) (Proof, error) {
	p, err := t.tree.GenerateProof(leaf, 0)
	if err != nil {
		return Proof{}, err
	}
	return Proof{Hashes: p.Hashes, Index: p.Index}, nil
}
