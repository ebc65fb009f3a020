package mpf

import "github.com/canopy-network/canopy-forestry/lib"

// Mode selects which terminal case Verify uses.
type Mode uint8

const (
	Including Mode = iota
	Excluding
)

// Verify recomputes the 32-byte root implied by (path, value, proof, mode). Verification is
// total: it always returns a hash (or a structural error for a clearly malformed proof); the
// caller compares the result against a known root. No silent recovery is possible: tampering
// with a step's hashes, nibbles, or Skip either changes the recomputed hash or is rejected as
// malformed (a terminal Leaf step's Skip is checked rather than hashed).
func Verify(path []byte, value []byte, proof Proof, mode Mode) ([]byte, lib.ErrorI) {
	return verifyAt(path, value, proof, 0, mode)
}

// verifyAt processes proof[0], recursing on proof[1:] for the non-terminal case, or handling the
// terminal case directly when proof is empty (or, in Excluding mode, when one step is left).
func verifyAt(path []byte, value []byte, proof Proof, cursor int, mode Mode) ([]byte, lib.ErrorI) {
	if len(proof) == 0 {
		return terminal(path, value, cursor, mode, nil)
	}
	step := proof[0]
	switch step.Kind {
	case StepBranch, StepFork, StepLeaf:
	default:
		return nil, ErrUnknownStepType("unrecognized")
	}
	// In Excluding mode the last step is consumed by a terminal formula of its own: the target's
	// slot is empty, so there is no deeper subtree to recurse into. In Including mode every step
	// is non-terminal - the recursion bottoms out past the last step at the target Leaf itself
	// (a single-element trie proves with zero steps; a two-element trie's target proves with one
	// real step that still must fold the sibling into the branch hash).
	if mode == Excluding && len(proof) == 1 {
		return terminal(path, value, cursor, mode, &step)
	}

	nextCursor := cursor + 1 + step.Skip
	if step.Skip < 0 || nextCursor-1 < cursor || nextCursor-1 >= len(path)*2 {
		return nil, ErrMalformedInput("step skip exceeds path length")
	}
	me, err := verifyAt(path, value, proof[1:], nextCursor, mode)
	if err != nil {
		return nil, err
	}
	thisNibble := int(Nibble(path, nextCursor-1))

	switch step.Kind {
	case StepBranch:
		merkleRoot := reconstructMerkle16(thisNibble, me, step.Neighbors)
		prefix := Nibbles(path, cursor, nextCursor-1)
		return BranchHash(prefix, merkleRoot), nil

	case StepFork:
		if step.ForkNibble == thisNibble {
			return nil, ErrNibbleCollision(byte(thisNibble))
		}
		neighborSubtreeHash := forkNeighborHash(step.ForkPrefix, step.ForkRoot)
		merkleRoot := sparseMerkle16(thisNibble, me, step.ForkNibble, neighborSubtreeHash)
		prefix := Nibbles(path, cursor, nextCursor-1)
		return BranchHash(prefix, merkleRoot), nil

	case StepLeaf:
		if len(step.LeafKey) != len(path) || CommonPrefixLen(step.LeafKey, path, 0, 0) < cursor {
			return nil, ErrPathMismatch()
		}
		neighborNibble := int(Nibble(step.LeafKey, nextCursor-1))
		if neighborNibble == thisNibble {
			return nil, ErrNibbleCollision(byte(thisNibble))
		}
		neighborLeafHash := LeafHash(step.LeafKey, nextCursor, step.LeafValue)
		merkleRoot := sparseMerkle16(thisNibble, me, neighborNibble, neighborLeafHash)
		prefix := Nibbles(path, cursor, nextCursor-1)
		return BranchHash(prefix, merkleRoot), nil
	}
	return nil, ErrUnknownStepType("unrecognized")
}

// forkNeighborHash combines a Fork step's recorded subtree prefix and root the same way a Branch
// binds its own prefix into its hash, so the neighbor slots into sparseMerkle16 as a single
// opaque child hash.
func forkNeighborHash(prefix, root []byte) []byte {
	return Combine(prefix, root)
}

// terminal handles the end of the steps list.
func terminal(path []byte, value []byte, cursor int, mode Mode, lastStep *Step) ([]byte, lib.ErrorI) {
	switch mode {
	case Including:
		if value == nil {
			return nil, ErrMalformedInput("including mode requires a value")
		}
		// Only reached with zero remaining steps: the cursor now sits exactly where the target
		// Leaf hangs, so its hash is a function of its own suffix and value alone.
		return LeafHash(path, cursor, Hash(value)), nil

	case Excluding:
		if lastStep == nil {
			return NullHash, nil
		}
		switch lastStep.Kind {
		case StepBranch:
			// The enclosing Branch genuinely exists with >=2 *other* populated children, but the
			// target's own slot is truly empty - "me" at that slot is NullHash, exactly the
			// non-terminal StepBranch computation with that one substitution.
			if lastStep.Skip < 0 || cursor+lastStep.Skip >= len(path)*2 {
				return nil, ErrMalformedInput("terminal branch skip exceeds path length")
			}
			thisNibble := int(Nibble(path, cursor+lastStep.Skip))
			merkleRoot := reconstructMerkle16(thisNibble, NullHash, lastStep.Neighbors)
			prefix := Nibbles(path, cursor, cursor+lastStep.Skip)
			return BranchHash(prefix, merkleRoot), nil
		case StepFork:
			if lastStep.Skip < 0 || cursor+lastStep.Skip > len(path)*2 {
				return nil, ErrMalformedInput("terminal fork skip exceeds path length")
			}
			prefix := Nibbles(path, cursor, cursor+lastStep.Skip)
			buf := append(append([]byte{}, prefix...), byte(lastStep.ForkNibble))
			buf = append(buf, lastStep.ForkPrefix...)
			buf = append(buf, lastStep.ForkRoot...)
			return Hash(buf), nil
		case StepLeaf:
			// Unlike the terminal Fork case, no skip-derived prefix is assembled here: neighbor.key
			// is a full absolute path, so its suffix from cursor already encodes everything needed
			// to re-derive this leaf's real hash. Skip therefore does not enter the hash; it must
			// instead equal the number of nibbles neighbor.key shares with path from cursor, which
			// is what Prove records, so a tampered Skip is rejected.
			if cursor < 0 || cursor > len(lastStep.LeafKey)*2 {
				return nil, ErrMalformedInput("terminal leaf cursor exceeds neighbor key length")
			}
			if CommonPrefixLen(lastStep.LeafKey, path, cursor, cursor) != lastStep.Skip {
				return nil, ErrMalformedInput("terminal leaf skip does not match where the neighbor diverges")
			}
			return LeafHash(lastStep.LeafKey, cursor, lastStep.LeafValue), nil
		default:
			return nil, ErrUnknownStepType("unrecognized")
		}
	}
	return nil, ErrMalformedInput("unknown verification mode")
}
