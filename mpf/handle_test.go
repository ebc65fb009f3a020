package mpf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyHandleIsEmpty(t *testing.T) {
	require.True(t, EmptyHandle.IsEmpty())
	require.Equal(t, NullHash, EmptyHandle.Root())
}

func TestFromRootRejectsWrongLength(t *testing.T) {
	_, err := FromRoot([]byte{0x01, 0x02})
	require.Error(t, err)
}

func TestFromRootRoundTrips(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)

	h, err := FromRoot(trie.Root())
	require.NoError(t, err)
	require.True(t, h.Equal(&Handle{root: trie.Root()}))
	require.False(t, h.IsEmpty())
}

func TestHandleHasAndMiss(t *testing.T) {
	trie, err := FromList(without(fruitList, "melon"))
	require.NoError(t, err)
	h, err := FromRoot(trie.Root())
	require.NoError(t, err)

	proof, err := trie.Prove([]byte("apple"), false)
	require.NoError(t, err)
	require.True(t, h.Has([]byte("apple"), []byte("🍎"), proof))
	require.False(t, h.Has([]byte("apple"), []byte("wrong"), proof))

	missProof, err := trie.Prove([]byte("melon"), true)
	require.NoError(t, err)
	require.True(t, h.Miss([]byte("melon"), missProof))
	require.False(t, h.Miss([]byte("apple"), proof))
}

// TestHandleInsert checks Handle.Insert matches a Trie that actually performed the insertion, using
// nothing but the exclusion proof for the new key.
func TestHandleInsert(t *testing.T) {
	before, err := FromList(without(fruitList, "melon"))
	require.NoError(t, err)
	h, err := FromRoot(before.Root())
	require.NoError(t, err)

	proof, err := before.Prove([]byte("melon"), true)
	require.NoError(t, err)

	next, err := h.Insert([]byte("melon"), []byte("🍈"), proof)
	require.NoError(t, err)

	after, err := FromList(fruitList)
	require.NoError(t, err)
	require.Equal(t, after.Root(), next.Root())
}

func TestHandleInsertRejectsProofOfPresentKey(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	h, err := FromRoot(trie.Root())
	require.NoError(t, err)

	proof, err := trie.Prove([]byte("melon"), false)
	require.NoError(t, err)

	_, err = h.Insert([]byte("melon"), []byte("🍉"), proof)
	require.Error(t, err)
}

// TestHandleDelete checks Handle.Delete matches a Trie that actually performed the deletion, using
// an inclusion proof of the removed key.
func TestHandleDelete(t *testing.T) {
	before, err := FromList(fruitList)
	require.NoError(t, err)
	h, err := FromRoot(before.Root())
	require.NoError(t, err)

	proof, err := before.Prove([]byte("melon"), false)
	require.NoError(t, err)

	next, err := h.Delete([]byte("melon"), []byte("🍈"), proof)
	require.NoError(t, err)

	after, err := FromList(without(fruitList, "melon"))
	require.NoError(t, err)
	require.Equal(t, after.Root(), next.Root())
}

func TestHandleDeleteRejectsWrongValue(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	h, err := FromRoot(trie.Root())
	require.NoError(t, err)

	proof, err := trie.Prove([]byte("melon"), false)
	require.NoError(t, err)

	_, err = h.Delete([]byte("melon"), []byte("not-the-value"), proof)
	require.Error(t, err)
}

// TestHandleUpdate checks Handle.Update replays an inclusion proof against both the old and new
// values, matching a Trie where the value was actually replaced in place.
func TestHandleUpdate(t *testing.T) {
	before, err := FromList(fruitList)
	require.NoError(t, err)
	h, err := FromRoot(before.Root())
	require.NoError(t, err)

	proof, err := before.Prove([]byte("melon"), false)
	require.NoError(t, err)

	next, err := h.Update([]byte("melon"), proof, []byte("🍈"), []byte("🍉"))
	require.NoError(t, err)

	updatedList := make([][2][]byte, len(fruitList))
	copy(updatedList, fruitList)
	for i, kv := range updatedList {
		if string(kv[0]) == "melon" {
			updatedList[i] = [2][]byte{[]byte("melon"), []byte("🍉")}
		}
	}
	after, err := FromList(updatedList)
	require.NoError(t, err)
	require.Equal(t, after.Root(), next.Root())
}

func TestHandleUpdateRejectsWrongOldValue(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	h, err := FromRoot(trie.Root())
	require.NoError(t, err)

	proof, err := trie.Prove([]byte("melon"), false)
	require.NoError(t, err)

	_, err = h.Update([]byte("melon"), proof, []byte("not-the-value"), []byte("🍉"))
	require.Error(t, err)
}
