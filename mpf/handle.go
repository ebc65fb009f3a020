package mpf

import (
	"bytes"

	"github.com/canopy-network/canopy-forestry/lib"
)

// Handle is the verifier-side trie reference: it holds nothing but a 32-byte root and
// recomputes roots from proofs, never touching a Store or materializing a node. Every method
// here is synchronous and allocation-light; the verifier performs no I/O.
type Handle struct {
	root []byte
}

// EmptyHandle is the verifier-side reference to the empty trie: root = NullHash.
var EmptyHandle = &Handle{root: NullHash}

// FromRoot constructs a Handle from a claimed 32-byte root hash.
func FromRoot(root []byte) (*Handle, lib.ErrorI) {
	if len(root) != HashSize {
		return nil, ErrInvalidRootLength(len(root))
	}
	return &Handle{root: append([]byte{}, root...)}, nil
}

// Root returns the handle's 32-byte root hash.
func (h *Handle) Root() []byte { return append([]byte{}, h.root...) }

// IsEmpty reports whether the handle's root is NullHash.
func (h *Handle) IsEmpty() bool { return bytes.Equal(h.root, NullHash) }

// Equal reports whether two handles carry the same root.
func (h *Handle) Equal(o *Handle) bool { return bytes.Equal(h.root, o.root) }

// Has reports whether (key, value) is a member of the trie at h's root, per the claimed proof.
func (h *Handle) Has(key, value []byte, proof Proof) bool {
	got, err := Verify(NewPath(key), value, proof, Including)
	if err != nil {
		return false
	}
	return bytes.Equal(got, h.root)
}

// Miss reports whether key is absent from the trie at h's root, per the claimed proof.
func (h *Handle) Miss(key []byte, proof Proof) bool {
	got, err := Verify(NewPath(key), nil, proof, Excluding)
	if err != nil {
		return false
	}
	return bytes.Equal(got, h.root)
}

// Insert returns the handle that results from inserting (key, value), requiring
// miss(h, key) ∧ has(result, key, value).
func (h *Handle) Insert(key, value []byte, proof Proof) (*Handle, lib.ErrorI) {
	if !h.Miss(key, proof) {
		return nil, ErrInvalidProof("insert requires an exclusion proof of key against the current root")
	}
	newRoot, err := Verify(NewPath(key), value, proof, Including)
	if err != nil {
		return nil, err
	}
	next := &Handle{root: newRoot}
	if !next.Has(key, value, proof) {
		return nil, ErrInvalidProof("insert produced a root that does not verify the new key")
	}
	return next, nil
}

// Delete returns the handle that results from deleting key, requiring
// has(h, key, value) ∧ miss(result, key).
func (h *Handle) Delete(key, value []byte, proof Proof) (*Handle, lib.ErrorI) {
	if !h.Has(key, value, proof) {
		return nil, ErrInvalidProof("delete requires an inclusion proof of key against the current root")
	}
	newRoot, err := Verify(NewPath(key), nil, proof, Excluding)
	if err != nil {
		return nil, err
	}
	next := &Handle{root: newRoot}
	if !next.Miss(key, proof) {
		return nil, ErrInvalidProof("delete produced a root that still verifies the old key")
	}
	return next, nil
}

// Update returns the handle that results from replacing key's value, requiring has(h, key, old)
// and then has(result, key, new) against the *same* proof, reusing one walk of the trie's shape
// for both checks.
func (h *Handle) Update(key []byte, proof Proof, oldValue, newValue []byte) (*Handle, lib.ErrorI) {
	if !h.Has(key, oldValue, proof) {
		return nil, ErrInvalidProof("update requires an inclusion proof of key against the current root")
	}
	newRoot, err := Verify(NewPath(key), newValue, proof, Including)
	if err != nil {
		return nil, err
	}
	next := &Handle{root: newRoot}
	if !next.Has(key, newValue, proof) {
		return nil, ErrInvalidProof("update produced a root that does not verify the new value")
	}
	return next, nil
}
