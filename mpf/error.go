package mpf

import (
	"fmt"

	"github.com/canopy-network/canopy-forestry/lib"
)

// ErrAlreadyPresent() signals Insert() at a key that already has a value in the trie
func ErrAlreadyPresent(key []byte) lib.ErrorI {
	return lib.NewError(lib.CodeAlreadyPresent, lib.MPFModule, fmt.Sprintf("key %x is already present in the trie", key))
}

// ErrNotPresent() signals Delete()/Prove() at a key the trie does not hold
func ErrNotPresent(key []byte) lib.ErrorI {
	return lib.NewError(lib.CodeNotPresent, lib.MPFModule, fmt.Sprintf("key %x is not present in the trie", key))
}

// ErrEmptyTrie() signals Prove() called on the empty trie
func ErrEmptyTrie() lib.ErrorI {
	return lib.NewError(lib.CodeEmptyTrie, lib.MPFModule, "cannot prove against an empty trie")
}

// ErrInvalidProof() signals a verified root that does not match the claimed root, or a failed
// structural assertion inside Verify()
func ErrInvalidProof(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidProof, lib.MPFModule, fmt.Sprintf("invalid proof: %s", reason))
}

// ErrMalformedInput() signals a non-32-byte root, a path mismatch at a Leaf step, or a neighbor
// nibble colliding with the target nibble at a Fork step
func ErrMalformedInput(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeMalformedInput, lib.MPFModule, fmt.Sprintf("malformed input: %s", reason))
}

// ErrInvalidRootLength() signals FromRoot() called with something other than 32 bytes
func ErrInvalidRootLength(n int) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidRootLength, lib.MPFModule, fmt.Sprintf("root must be %d bytes, got %d", HashSize, n))
}

// ErrNibbleCollision() signals a Fork or Leaf step whose recorded neighbor nibble equals the
// nibble the verifier is walking toward
func ErrNibbleCollision(nibble byte) lib.ErrorI {
	return lib.NewError(lib.CodeNibbleCollision, lib.MPFModule, fmt.Sprintf("neighbor nibble %d collides with target nibble", nibble))
}

// ErrPathMismatch() signals a Leaf step whose recorded neighbor path diverges from the verifier's
// path before the claimed cursor
func ErrPathMismatch() lib.ErrorI {
	return lib.NewError(lib.CodePathMismatch, lib.MPFModule, "neighbor leaf path does not match the verified path up to cursor")
}

// ErrUnknownStepType() signals a decoded proof step whose discriminant does not match Branch/Fork/Leaf
func ErrUnknownStepType(t string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownStepType, lib.MPFModule, fmt.Sprintf("unknown proof step type: %s", t))
}
