package mpf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/canopy-network/canopy-forestry/lib"
)

// StepKind discriminates the three proof-step shapes.
type StepKind uint8

const (
	StepBranch StepKind = iota
	StepFork
	StepLeaf
)

// Step is one level of a Proof, recording what the prover saw descending from the root toward
// the target Leaf at that depth.
type Step struct {
	Kind  StepKind
	Skip  int // nibbles of this level's Branch prefix consumed here

	// StepBranch
	Neighbors [4][]byte // sparse-Merkle neighbors surrounding the target child, wire order [lvl1..lvl4]

	// StepFork
	ForkNibble int
	ForkPrefix []byte // nibble-per-byte prefix of the neighbor subtree
	ForkRoot   []byte // root hash of the neighbor subtree

	// StepLeaf
	LeafKey   []byte // full 32-byte path of the neighbor Leaf
	LeafValue []byte // H(value) of the neighbor Leaf
}

// Proof is an ordered list of Steps, step 0 being the one closest to the root.
type Proof []Step

// Prove() builds a Proof for key. When key is absent and allowMissing is set, the returned proof
// is a partial proof: verified in Excluding mode it yields the current root, and verified in
// Including mode with a value it yields the root the trie would have after inserting key.
func (t *Trie) Prove(key []byte, allowMissing bool) (Proof, lib.ErrorI) {
	if t.IsEmpty() {
		return nil, ErrEmptyTrie()
	}
	path := NewPath(key)
	proof, found, err := proveAt(t.root, path, 0)
	if err != nil {
		return nil, err
	}
	if !found && !allowMissing {
		return nil, ErrNotPresent(key)
	}
	return proof, nil
}

// proveAt walks down to the target, then assembles Steps bottom-up on the way back out of the
// recursion.
func proveAt(n *node, path []byte, cursor int) (Proof, bool, lib.ErrorI) {
	switch n.k {
	case kindEmpty:
		// dead end before reaching a Leaf: no more steps, exclusion-only
		return Proof{}, false, nil

	case kindLeaf:
		existingPath := n.path()
		if bytes.Equal(existingPath, path) {
			return Proof{}, true, nil
		}
		// path diverges somewhere inside this leaf's own suffix: the target would split this
		// leaf into a 2-leaf branch if inserted (trie.go's insertAt, Leaf-with-differing-key
		// case). Record that hypothetical divergence as a Leaf step so the verifier can recompute
		// this leaf's real hash without the branch that would only exist after insertion.
		commonLen := CommonPrefixLen(existingPath, path, cursor, cursor)
		step := Step{
			Kind:      StepLeaf,
			Skip:      commonLen,
			LeafKey:   existingPath,
			LeafValue: Hash(n.value),
		}
		return Proof{step}, false, nil

	case kindBranch:
		m := matchPrefix(n.prefix, path, cursor)
		if m < len(n.prefix) {
			// path diverges inside this branch's own prefix, before reaching its routing nibble:
			// n genuinely exists with this real prefix and children, so the verifier needs n's
			// real hash as an opaque unit. Record it as a Fork step whose neighbor *is* n itself,
			// split at the diverging nibble: verify.go's terminal Fork formula, H(path nibbles
			// [cursor, cursor+m) ⊕ n.prefix[m] ⊕ n.prefix[m+1:] ⊕ merkle16(n's real children)),
			// reconstructs exactly n.hashOf(), while forkNeighborHash(n.prefix[m+1:], ...) gives the
			// hash n would have once split below a new branch on insertion.
			var hashes [16][]byte
			for i, c := range n.children {
				if c != nil {
					hashes[i] = c.hashOf()
				}
			}
			step := Step{
				Kind:       StepFork,
				Skip:       m,
				ForkNibble: int(n.prefix[m]),
				ForkPrefix: append([]byte{}, n.prefix[m+1:]...),
				ForkRoot:   merkle16(hashes),
			}
			return Proof{step}, false, nil
		}
		nextCursor := cursor + len(n.prefix)
		thisNibble := int(Nibble(path, nextCursor))
		target := n.children[thisNibble]

		below, found, err := proveAt(orEmpty(target), path, nextCursor+1)
		if err != nil {
			return nil, false, err
		}

		step, err := buildStep(n, thisNibble, len(n.prefix))
		if err != nil {
			return nil, false, err
		}
		// step (this level, closer to the root) must come before below (deeper levels): a Proof
		// is ordered root-first, so verification can walk it left-to-right.
		return append(Proof{step}, below...), found, nil
	}
	return nil, false, ErrMalformedInput("unknown node kind")
}

func orEmpty(n *node) *node {
	if n == nil {
		return emptyNode
	}
	return n
}

// String renders a Proof as one line per Step, root-first, for debugging and logging.
func (p Proof) String() string {
	lines := make([]string, len(p))
	for i, step := range p {
		lines[i] = fmt.Sprintf("#%d %s", i, step.String())
	}
	return strings.Join(lines, "\n")
}

// String renders one Step on a single line.
func (s Step) String() string {
	switch s.Kind {
	case StepBranch:
		return fmt.Sprintf("branch skip=%d neighbors=%x", s.Skip, s.Neighbors)
	case StepFork:
		return fmt.Sprintf("fork skip=%d nibble=%d prefix=%x root=%x", s.Skip, s.ForkNibble, s.ForkPrefix, s.ForkRoot)
	case StepLeaf:
		return fmt.Sprintf("leaf skip=%d key=%x value=%x", s.Skip, s.LeafKey, s.LeafValue)
	default:
		return "unknown step"
	}
}

// buildStep produces the Step contributed by branch n for its thisNibble child, whose shape
// depends on how many of n's *other* children are populated.
func buildStep(n *node, thisNibble int, skip int) (Step, lib.ErrorI) {
	others := make([]int, 0, 15)
	for i, c := range n.children {
		if i != thisNibble && c != nil {
			others = append(others, i)
		}
	}
	switch len(others) {
	case 0:
		return Step{}, ErrMalformedInput("branch has no non-target children")
	case 1:
		neighborNibble := others[0]
		neighbor := n.children[neighborNibble]
		if neighbor.k == kindLeaf {
			return Step{
				Kind:      StepLeaf,
				Skip:      skip,
				LeafKey:   neighbor.path(),
				LeafValue: Hash(neighbor.value),
			}, nil
		}
		// ForkRoot is neighbor's *inner* merkle16 root, not neighbor.hashOf(): the verifier
		// rebuilds neighbor's full hash as forkNeighborHash(ForkPrefix, ForkRoot) =
		// Combine(ForkPrefix, ForkRoot), which must equal Combine(neighbor.prefix,
		// merkle16(neighbor.children)) = neighbor.hashOf() exactly - using neighbor.hashOf()
		// itself here would double-apply neighbor's own prefix.
		var neighborHashes [16][]byte
		for i, c := range neighbor.children {
			if c != nil {
				neighborHashes[i] = c.hashOf()
			}
		}
		return Step{
			Kind:       StepFork,
			Skip:       skip,
			ForkNibble: neighborNibble,
			ForkPrefix: append([]byte{}, neighbor.prefix...),
			ForkRoot:   merkle16(neighborHashes),
		}, nil
	default:
		var hashes [16][]byte
		for i, c := range n.children {
			if c != nil {
				hashes[i] = c.hashOf()
			}
		}
		neighbors := merkle16Proof(hashes, thisNibble)
		return Step{Kind: StepBranch, Skip: skip, Neighbors: neighbors}, nil
	}
}
