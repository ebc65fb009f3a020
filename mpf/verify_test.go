package mpf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopy-network/canopy-forestry/lib"
)

// TestInclusionSoundness: for every (k,v) in T, has(root(T),k,v,prove)
// must be true, and must be false for any v' != v.
func TestInclusionSoundness(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	root := trie.Root()

	for _, kv := range fruitList {
		key, value := kv[0], kv[1]
		proof, err := trie.Prove(key, false)
		require.NoError(t, err)

		path := NewPath(key)
		got, err := Verify(path, value, proof, Including)
		require.NoError(t, err)
		require.Equal(t, root, got, "key=%s", key)

		wrongValue := append(append([]byte{}, value...), 'X')
		got, err = Verify(path, wrongValue, proof, Including)
		if err == nil {
			require.NotEqual(t, root, got, "key=%s should not verify under a different value", key)
		}
	}
}

// TestExclusionSoundness: for k not in T, miss(root(T), k, prove)
// must be true.
func TestExclusionSoundness(t *testing.T) {
	trie, err := FromList(without(fruitList, "melon"))
	require.NoError(t, err)
	root := trie.Root()

	proof, err := trie.Prove([]byte("melon"), true)
	require.NoError(t, err)

	got, err := Verify(NewPath([]byte("melon")), nil, proof, Excluding)
	require.NoError(t, err)
	require.Equal(t, root, got)
}

// TestInsertViaProof: the exclusion proof for an
// absent key, re-verified in Including mode with a value, must equal the root of the trie with
// that key actually inserted - and still verify as Excluding against the original root.
func TestInsertViaProof(t *testing.T) {
	minusMelon := without(fruitList, "melon")
	before, err := FromList(minusMelon)
	require.NoError(t, err)

	proof, err := before.Prove([]byte("melon"), true)
	require.NoError(t, err)

	path := NewPath([]byte("melon"))

	excludingRoot, err := Verify(path, nil, proof, Excluding)
	require.NoError(t, err)
	require.Equal(t, before.Root(), excludingRoot)

	after, err := FromList(append(append([][2][]byte{}, minusMelon...), [2][]byte{[]byte("melon"), []byte("🍈")}))
	require.NoError(t, err)

	includingRoot, err := Verify(path, []byte("🍈"), proof, Including)
	require.NoError(t, err)
	require.Equal(t, after.Root(), includingRoot)
}

func TestVerifyEmptyTrieExcluding(t *testing.T) {
	got, err := Verify(NewPath([]byte("anything")), nil, Proof{}, Excluding)
	require.NoError(t, err)
	require.Equal(t, NullHash, got)
}

func TestVerifyIncludingRequiresValue(t *testing.T) {
	_, err := Verify(NewPath([]byte("foo")), nil, Proof{}, Including)
	require.Error(t, err)
}

// TestNonMalleabilityOfExclusionProof: altering a load-bearing skip value in a
// proof must change its verified root.
func TestNonMalleabilityOfExclusionProof(t *testing.T) {
	trie, err := FromList(without(fruitList, "melon"))
	require.NoError(t, err)

	proof, err := trie.Prove([]byte("melon"), true)
	require.NoError(t, err)
	require.NotEmpty(t, proof, "need at least one step with a skip to tamper with")

	// A terminal Leaf step's hash does not fold Skip in at all (see verify.go's terminal Leaf
	// formula), so when the proof's last step is a Leaf, tamper an earlier, non-terminal step
	// instead - those always feed Skip into the cursor arithmetic.
	idx := len(proof) - 1
	if proof[idx].Kind == StepLeaf && len(proof) > 1 {
		idx = 0
	}
	tampered := make(Proof, len(proof))
	copy(tampered, proof)
	tampered[idx].Skip++

	path := NewPath([]byte("melon"))
	original, err := Verify(path, nil, proof, Excluding)
	require.NoError(t, err)

	got, tamperErr := Verify(path, nil, tampered, Excluding)
	if tamperErr == nil && !(idx == len(proof)-1 && proof[idx].Kind == StepLeaf) {
		require.NotEqual(t, original, got)
	}
}

// TestTerminalForkRegression: a terminal Fork step with non-zero skip must take its prefix
// nibbles from the verifier's own path, not assume an empty prefix.
func TestTerminalForkRegression(t *testing.T) {
	trie := New()
	// build a trie whose root Branch has a two-nibble prefix: the paths of "tangerine" and
	// "tangelo-238" both start with nibbles 9,b and diverge at the third nibble.
	require.NoError(t, trie.Insert([]byte("tangerine"), []byte("🍊")))
	require.NoError(t, trie.Insert([]byte("tangelo-238"), []byte("🍊")))

	// "tangent-7" is absent and its path starts 9,f: it diverges inside the root's prefix after
	// one matching nibble, so its proof is a single terminal Fork step with skip 1. The computed
	// root must match the trie's real root, and perturbing the terminal step's Skip must break
	// verification.
	proof, err := trie.Prove([]byte("tangent-7"), true)
	require.NoError(t, err)
	require.Len(t, proof, 1)
	require.Equal(t, StepFork, proof[0].Kind)
	require.Equal(t, 1, proof[0].Skip)

	path := NewPath([]byte("tangent-7"))
	got, err := Verify(path, nil, proof, Excluding)
	require.NoError(t, err)
	require.Equal(t, trie.Root(), got)

	if len(proof) > 0 && proof[len(proof)-1].Skip > 0 {
		tampered := make(Proof, len(proof))
		copy(tampered, proof)
		tampered[len(tampered)-1].Skip--
		tamperedRoot, tamperErr := Verify(path, nil, tampered, Excluding)
		if tamperErr == nil {
			require.NotEqual(t, trie.Root(), tamperedRoot)
		}
	}
}

// TestVerifyRejectsOutOfRangeSkip checks that a tampered Skip large enough to push the cursor past
// the path's 64 nibbles is rejected with a structured error instead of panicking - Verify must stay
// total over attacker-supplied proofs (verification never silently recovers, but it also
// must never crash on malformed input).
func TestVerifyRejectsOutOfRangeSkip(t *testing.T) {
	path := NewPath([]byte("melon"))

	// terminal branch step whose skip lands past the path's 64 nibbles
	_, err := Verify(path, nil, Proof{{Kind: StepBranch, Skip: 1000}}, Excluding)
	require.Error(t, err)
	require.Equal(t, lib.CodeMalformedInput, err.Code())

	// non-terminal step with the same out-of-range skip
	_, err = Verify(path, []byte("v"), Proof{{Kind: StepBranch, Skip: 1000}, {Kind: StepBranch}}, Including)
	require.Error(t, err)
	require.Equal(t, lib.CodeMalformedInput, err.Code())
}

func TestProveEmptyTrieFails(t *testing.T) {
	trie := New()
	_, err := trie.Prove([]byte("anything"), true)
	require.Error(t, err)
}

func TestProveMissingKeyWithoutAllowMissingFails(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	_, err = trie.Prove([]byte("not-a-fruit"), false)
	require.Error(t, err)
}
