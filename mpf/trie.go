package mpf

import (
	"bytes"

	"github.com/canopy-network/canopy-forestry/lib"
)

// Trie is the prover-side handle: it holds the full working set of nodes in memory and can
// insert, delete, get, and prove. Its root is content-addressed into an optional Store on Commit.
//
// A node's absolute "cursor" (see node.go) is the count of path nibbles consumed by every
// ancestor Branch's prefix plus one routing nibble per ancestor Branch. Splitting a Branch
// (insertAt) leaves that count unchanged for everything below the split, but collapsing one
// (deleteAt) removes a routing-nibble consumption: a surviving Branch child absorbs it into its
// merged prefix, a surviving Leaf child absorbs it by moving its cursor up (see mergeBranch).
type Trie struct {
	root  *node
	store lib.StoreI
	log   lib.LoggerI
}

// New() returns an empty, in-memory Trie.
func New() *Trie {
	return &Trie{root: emptyNode}
}

// FromList() builds a Trie by inserting pairs in the given order. The resulting root does not
// depend on that order.
func FromList(pairs [][2][]byte) (*Trie, lib.ErrorI) {
	t := New()
	for _, kv := range pairs {
		if err := t.Insert(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Load() opens a Trie backed by store, reading its current root and materializing the whole
// persisted subtree into memory (see persist.go; this module trades lazy paging for simplicity,
// see DESIGN.md).
func Load(store lib.StoreI, log lib.LoggerI) (*Trie, lib.ErrorI) {
	rootHash, err := readRoot(store)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(rootHash, NullHash) {
		return &Trie{root: emptyNode, store: store, log: log}, nil
	}
	root, err := loadSubtree(store, rootHash)
	if err != nil {
		return nil, err
	}
	return &Trie{root: root, store: store, log: log}, nil
}

// Root() returns the 32-byte root hash of the trie's current state.
func (t *Trie) Root() []byte { return t.root.hashOf() }

// IsEmpty() reports whether the trie currently holds no entries.
func (t *Trie) IsEmpty() bool { return t.root.k == kindEmpty }

// Get() returns the value stored at key, if any.
func (t *Trie) Get(key []byte) (value []byte, found bool) {
	return getAt(t.root, NewPath(key), 0)
}

// Insert() adds (key, value) to the trie. Fails with ErrAlreadyPresent if key is already present.
func (t *Trie) Insert(key, value []byte) lib.ErrorI {
	newRoot, err := insertAt(t.root, NewPath(key), 0, key, value)
	if err != nil {
		return err
	}
	t.root = newRoot
	if t.log != nil {
		t.log.Debugf("mpf: inserted key=%x", key)
	}
	return nil
}

// Delete() removes key from the trie. Fails with ErrNotPresent if key is absent.
func (t *Trie) Delete(key []byte) lib.ErrorI {
	newRoot, err := deleteAt(t.root, NewPath(key), 0, key)
	if err != nil {
		return err
	}
	t.root = newRoot
	if t.log != nil {
		t.log.Debugf("mpf: deleted key=%x", key)
	}
	return nil
}

// ChildAt() returns the root hash of the subtree reached by following nibblePath from the root,
// when nibblePath is a prefix (proper or whole) of some key's path currently in the trie.
func (t *Trie) ChildAt(nibblePath []byte) (hash []byte, found bool) {
	n := childAt(t.root, nibblePath, 0)
	if n == nil {
		return nil, false
	}
	return n.hashOf(), true
}

// Commit() persists every reachable node plus the new root hash into a fresh batch over the
// backing Store, then commits that batch. On any error the batch is discarded and the caller
// must Load() again to get a consistent handle.
func (t *Trie) Commit() lib.ErrorI {
	if t.store == nil {
		return nil
	}
	batch := t.store.NewBatch()
	if err := persistSubtree(batch, t.root); err != nil {
		batch.Discard()
		return err
	}
	if err := writeRoot(batch, t.Root()); err != nil {
		batch.Discard()
		return err
	}
	if err := batch.Commit(); err != nil {
		batch.Discard()
		return err
	}
	return nil
}

// insertAt is the recursive core of Insert.
func insertAt(n *node, path []byte, cursor int, key, value []byte) (*node, lib.ErrorI) {
	switch n.k {
	case kindEmpty:
		return newLeaf(cursor, key, value), nil

	case kindLeaf:
		if bytes.Equal(n.key, key) {
			return nil, ErrAlreadyPresent(key)
		}
		existingPath := n.path()
		commonLen := CommonPrefixLen(existingPath, path, cursor, cursor)
		divergeCursor := cursor + commonLen
		branch := newBranch(Nibbles(path, cursor, divergeCursor))
		existingNib := Nibble(existingPath, divergeCursor)
		newNib := Nibble(path, divergeCursor)
		if existingNib == newNib {
			return nil, ErrMalformedInput("diverging leaves share a nibble past their common prefix")
		}
		branch.children[existingNib] = newLeaf(divergeCursor+1, n.key, n.value)
		branch.children[newNib] = newLeaf(divergeCursor+1, key, value)
		return branch, nil

	case kindBranch:
		m := matchPrefix(n.prefix, path, cursor)
		if m < len(n.prefix) {
			divergeCursor := cursor + m
			oldNib := n.prefix[m]
			newNib := Nibble(path, divergeCursor)
			newTop := newBranch(n.prefix[:m])
			n.prefix = append([]byte{}, n.prefix[m+1:]...)
			n.invalidate()
			newTop.children[oldNib] = n
			newTop.children[newNib] = newLeaf(divergeCursor+1, key, value)
			return newTop, nil
		}
		nextCursor := cursor + len(n.prefix)
		nib := Nibble(path, nextCursor)
		child := n.children[nib]
		if child == nil {
			child = emptyNode
		}
		newChild, err := insertAt(child, path, nextCursor+1, key, value)
		if err != nil {
			return nil, err
		}
		n.children[nib] = newChild
		n.invalidate()
		return n, nil
	}
	return nil, ErrMalformedInput("unknown node kind")
}

// getAt is the recursive core of Get.
func getAt(n *node, path []byte, cursor int) ([]byte, bool) {
	switch n.k {
	case kindEmpty:
		return nil, false
	case kindLeaf:
		if bytes.Equal(n.path(), path) {
			return n.value, true
		}
		return nil, false
	case kindBranch:
		m := matchPrefix(n.prefix, path, cursor)
		if m < len(n.prefix) {
			return nil, false
		}
		nextCursor := cursor + len(n.prefix)
		nib := Nibble(path, nextCursor)
		child := n.children[nib]
		if child == nil {
			return nil, false
		}
		return getAt(child, path, nextCursor+1)
	}
	return nil, false
}

// deleteAt is the recursive core of Delete; collapses any Branch left with exactly one child,
// restoring canonical form.
func deleteAt(n *node, path []byte, cursor int, key []byte) (*node, lib.ErrorI) {
	switch n.k {
	case kindEmpty:
		return nil, ErrNotPresent(key)
	case kindLeaf:
		if !bytes.Equal(n.key, key) {
			return nil, ErrNotPresent(key)
		}
		return emptyNode, nil
	case kindBranch:
		m := matchPrefix(n.prefix, path, cursor)
		if m < len(n.prefix) {
			return nil, ErrNotPresent(key)
		}
		nextCursor := cursor + len(n.prefix)
		nib := Nibble(path, nextCursor)
		child := n.children[nib]
		if child == nil {
			return nil, ErrNotPresent(key)
		}
		newChild, err := deleteAt(child, path, nextCursor+1, key)
		if err != nil {
			return nil, err
		}
		if newChild.k == kindEmpty {
			n.children[nib] = nil
		} else {
			n.children[nib] = newChild
		}
		n.invalidate()
		switch n.childCount() {
		case 0:
			return emptyNode, nil
		case 1:
			soleNib, sole := n.soleChild()
			return mergeBranch(cursor, n.prefix, soleNib, sole), nil
		default:
			return n, nil
		}
	}
	return nil, ErrMalformedInput("unknown node kind")
}

// mergeBranch collapses a Branch at position cursor with exactly one remaining child into that
// child, merging `prefix ⊕ routing nibble ⊕ child.prefix` when the child is itself a Branch. A
// Leaf child instead absorbs the collapsed levels into its suffix: it now hangs where the Branch
// did, so its cursor moves up to the Branch's own position.
func mergeBranch(cursor int, prefix []byte, nib int, child *node) *node {
	switch child.k {
	case kindLeaf:
		child.cursor = cursor
		child.invalidate()
		return child
	case kindBranch:
		merged := make([]byte, 0, len(prefix)+1+len(child.prefix))
		merged = append(merged, prefix...)
		merged = append(merged, byte(nib))
		merged = append(merged, child.prefix...)
		nb := newBranch(merged)
		nb.children = child.children
		return nb
	}
	return child
}

// childAt descends nibblePath from n, returning the subtree reached, or nil if nibblePath is not
// a prefix (proper or whole) of any path currently stored under n.
func childAt(n *node, nibblePath []byte, consumed int) *node {
	if consumed == len(nibblePath) {
		return n
	}
	switch n.k {
	case kindEmpty:
		return nil
	case kindLeaf:
		path := n.path()
		for i := consumed; i < len(nibblePath); i++ {
			if Nibble(path, i) != nibblePath[i] {
				return nil
			}
		}
		return n
	case kindBranch:
		for i := 0; i < len(n.prefix) && consumed < len(nibblePath); i, consumed = i+1, consumed+1 {
			if n.prefix[i] != nibblePath[consumed] {
				return nil
			}
		}
		if consumed == len(nibblePath) {
			return n
		}
		nib := nibblePath[consumed]
		child := n.children[nib]
		if child == nil {
			return nil
		}
		return childAt(child, nibblePath, consumed+1)
	}
	return nil
}
