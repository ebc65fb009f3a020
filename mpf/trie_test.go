package mpf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopy-network/canopy-forestry/lib"
)

func TestEmptyTrieRootIsNullHash(t *testing.T) {
	trie := New()
	require.True(t, trie.IsEmpty())
	require.Equal(t, NullHash, trie.Root())
}

// TestSingleInsert: a single Leaf at the root hashes over the full
// 64-nibble suffix, and its proof has zero steps.
func TestSingleInsert(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Insert([]byte("foo"), []byte("bar")))

	path := NewPath([]byte("foo"))
	want := LeafHash(path, 0, Hash([]byte("bar")))
	require.Equal(t, want, trie.Root())

	proof, err := trie.Prove([]byte("foo"), false)
	require.NoError(t, err)
	require.Len(t, proof, 0)
}

// TestTwoLeafTrie: two keys whose paths diverge produce a Branch with two Leaf children.
func TestTwoLeafTrie(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Insert([]byte("foo"), []byte("14")))
	require.NoError(t, trie.Insert([]byte("bar"), []byte("42")))

	v, found := trie.Get([]byte("foo"))
	require.True(t, found)
	require.Equal(t, []byte("14"), v)

	v, found = trie.Get([]byte("bar"))
	require.True(t, found)
	require.Equal(t, []byte("42"), v)

	proof, err := trie.Prove([]byte("foo"), false)
	require.NoError(t, err)
	require.Len(t, proof, 1)
}

func TestGetMissingKey(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Insert([]byte("foo"), []byte("bar")))
	_, found := trie.Get([]byte("nope"))
	require.False(t, found)
}

func TestInsertAlreadyPresent(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Insert([]byte("foo"), []byte("bar")))
	err := trie.Insert([]byte("foo"), []byte("baz"))
	require.Error(t, err)
	require.Equal(t, lib.CodeAlreadyPresent, err.Code())
}

func TestDeleteNotPresent(t *testing.T) {
	trie := New()
	err := trie.Delete([]byte("nope"))
	require.Error(t, err)
}

// TestRoundTripInsertDelete: insert(k,v); delete(k) == identity (root unchanged).
func TestRoundTripInsertDelete(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	before := trie.Root()

	require.NoError(t, trie.Insert([]byte("starfruit"), []byte("⭐")))
	require.NoError(t, trie.Delete([]byte("starfruit")))

	require.Equal(t, before, trie.Root())
}

// TestCanonicality: inserting the same pairs in any order into an
// empty trie yields the same root.
func TestCanonicality(t *testing.T) {
	inOrder, err := FromList(fruitList)
	require.NoError(t, err)

	reverseOrder, err := FromList(reversed(fruitList))
	require.NoError(t, err)

	require.Equal(t, inOrder.Root(), reverseOrder.Root())
	require.True(t, len(inOrder.Root()) > 0)
}

func TestCanonicalityAcrossManyOrders(t *testing.T) {
	base, err := FromList(fruitList)
	require.NoError(t, err)
	want := base.Root()

	// a handful of rotations of the same multiset
	for shift := 1; shift < len(fruitList); shift += 7 {
		rotated := append(append([][2][]byte{}, fruitList[shift:]...), fruitList[:shift]...)
		trie, err := FromList(rotated)
		require.NoError(t, err)
		require.Equal(t, want, trie.Root(), "shift=%d", shift)
	}
}

func TestChildAtProperPrefix(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)

	path := NewPath([]byte("apple"))
	hash, found := trie.ChildAt(Nibbles(path, 0, 1))
	require.True(t, found)
	require.Len(t, hash, HashSize)

	// the full path of "apple" is a (whole, not proper) prefix of itself and must resolve to a
	// real subtree rather than report "not found"
	fullHash, found := trie.ChildAt(Nibbles(path, 0, path.Len()))
	require.True(t, found)
	require.Equal(t, hash != nil, fullHash != nil)
}

func TestChildAtAbsentPrefix(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Insert([]byte("apple"), []byte("🍎")))

	path := NewPath([]byte("apple"))
	mismatched := Nibbles(path, 0, 4)
	mismatched[3] ^= 0x1 // flip the last nibble so it is guaranteed to differ from the real path
	_, found := trie.ChildAt(mismatched)
	require.False(t, found)
}

func TestDeleteCollapsesSingleChildBranch(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Insert([]byte("a"), []byte("1")))
	require.NoError(t, trie.Insert([]byte("b"), []byte("2")))
	require.NoError(t, trie.Insert([]byte("c"), []byte("3")))

	require.NoError(t, trie.Delete([]byte("a")))
	require.NoError(t, trie.Delete([]byte("b")))

	// only "c" remains: the trie must reduce to a single Leaf whose hash matches a fresh
	// single-element trie built directly, proving the Branch collapsed rather than leaving a
	// dangling single-child Branch (a branch with one child is forbidden).
	want := New()
	require.NoError(t, want.Insert([]byte("c"), []byte("3")))
	require.Equal(t, want.Root(), trie.Root())
}

func TestDeleteAllEmptiesTrie(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	for _, kv := range fruitList {
		require.NoError(t, trie.Delete(kv[0]))
	}
	require.True(t, trie.IsEmpty())
	require.Equal(t, NullHash, trie.Root())
}

func TestInsertDivergingLeavesRoot(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Insert([]byte("x"), []byte("1")))
	root1 := trie.Root()
	require.NoError(t, trie.Insert([]byte("y"), []byte("2")))
	root2 := trie.Root()
	require.False(t, bytes.Equal(root1, root2))
}
