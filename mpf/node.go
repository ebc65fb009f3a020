package mpf

// node is the closed tagged union Empty | Leaf | Branch. There is no Go interface hierarchy
// here on purpose - the variant set is finite, so a *node carries a kind discriminant and only
// the fields that kind uses. A nil *node and a kindEmpty node are both treated as "no child
// here"; emptyNode is the root of an empty Trie and the stand-in for an absent child while
// inserting, deleting, and proving.
type kind uint8

const (
	kindEmpty kind = iota
	kindLeaf
	kindBranch
)

// node is mutated in place by insert/delete; its hash cache is invalidated (set to nil) whenever
// a field that feeds the hash changes, and recomputed lazily by hashOf(). Branches keep their
// children fully materialized in memory: this module keeps the whole working set resident and
// relies on the Store purely for content-addressed persistence (see DESIGN.md).
type node struct {
	k kind

	// Leaf fields
	cursor int    // nibble-index where this leaf hangs; suffix = path(key)[cursor:]
	key    []byte // original key bytes
	value  []byte // original value bytes

	// Branch fields
	prefix   []byte    // common nibble prefix of all descendants, relative to this branch's position
	children [16]*node // one slot per nibble value, nil = unpopulated

	hash []byte // cached node hash, nil if stale
}

var emptyNode = &node{k: kindEmpty, hash: NullHash}

func newLeaf(cursor int, key, value []byte) *node {
	return &node{k: kindLeaf, cursor: cursor, key: key, value: value}
}

func newBranch(prefix []byte) *node {
	return &node{k: kindBranch, prefix: append([]byte{}, prefix...)}
}

// childCount returns how many of a branch's 16 slots are populated.
func (n *node) childCount() int {
	c := 0
	for _, ch := range n.children {
		if ch != nil {
			c++
		}
	}
	return c
}

// soleChild returns the (nibble, node) of a branch's only populated child; callers must only call
// this when childCount() == 1.
func (n *node) soleChild() (int, *node) {
	for i, ch := range n.children {
		if ch != nil {
			return i, ch
		}
	}
	return -1, nil
}

// hashOf returns n's content hash, recomputing and caching it if stale.
func (n *node) hashOf() []byte {
	if n == nil {
		return NullHash
	}
	switch n.k {
	case kindEmpty:
		return NullHash
	case kindLeaf:
		if n.hash == nil {
			path := NewPath(n.key)
			n.hash = LeafHash(path, n.cursor, Hash(n.value))
		}
		return n.hash
	case kindBranch:
		if n.hash == nil {
			var hashes [16][]byte
			for i, ch := range n.children {
				if ch != nil {
					hashes[i] = ch.hashOf()
				}
			}
			n.hash = BranchHash(n.prefix, merkle16(hashes))
		}
		return n.hash
	}
	return NullHash
}

// invalidate clears n's cached hash so the next hashOf() call recomputes it. Called on every
// mutation of a node's content-relevant fields.
func (n *node) invalidate() { n.hash = nil }

// path returns the 64-nibble path of a Leaf's key.
func (n *node) path() []byte { return NewPath(n.key) }
