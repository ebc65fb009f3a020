package mpf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEncodeProofCBORRoundTrips checks every step kind a real trie produces survives an
// EncodeProofCBOR/DecodeProofCBOR round trip unchanged.
func TestEncodeProofCBORRoundTrips(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)

	for _, kv := range fruitList {
		proof, err := trie.Prove(kv[0], false)
		require.NoError(t, err)

		data, encErr := EncodeProofCBOR(proof)
		require.NoError(t, encErr)

		decoded, decErr := DecodeProofCBOR(data)
		require.NoError(t, decErr)
		require.Equal(t, proof, decoded, "key=%s", kv[0])
	}

	missProof, err := trie.Prove([]byte("not-a-fruit"), true)
	require.NoError(t, err)
	data, encErr := EncodeProofCBOR(missProof)
	require.NoError(t, encErr)
	decoded, decErr := DecodeProofCBOR(data)
	require.NoError(t, decErr)
	require.Equal(t, missProof, decoded)
}

func TestEncodeProofCBORUsesIndefiniteLengthArray(t *testing.T) {
	trie, err := FromList(fruitList)
	require.NoError(t, err)
	proof, err := trie.Prove([]byte("apple"), false)
	require.NoError(t, err)
	require.NotEmpty(t, proof)

	data, err := EncodeProofCBOR(proof)
	require.NoError(t, err)
	require.Equal(t, byte(0x9f), data[0])
	require.Equal(t, byte(0xff), data[len(data)-1])
}

func TestEncodeStepCBORTagNumbers(t *testing.T) {
	var neighbors [4][]byte
	for i := range neighbors {
		neighbors[i] = Hash([]byte{byte(i)})
	}
	branch := Step{Kind: StepBranch, Skip: 1, Neighbors: neighbors}
	data, err := encodeStepCBOR(branch)
	require.NoError(t, err)
	require.Equal(t, byte(0xd8), data[0]) // one-byte tag number header (121..123 need 1 extra byte)
	require.Equal(t, byte(CBORTagBranch), data[1])

	fork := Step{Kind: StepFork, Skip: 2, ForkNibble: 3, ForkPrefix: []byte{0x1}, ForkRoot: Hash([]byte("r"))}
	data, err = encodeStepCBOR(fork)
	require.NoError(t, err)
	require.Equal(t, byte(CBORTagFork), data[1])

	leaf := Step{Kind: StepLeaf, Skip: 0, LeafKey: Hash([]byte("k")), LeafValue: Hash([]byte("v"))}
	data, err = encodeStepCBOR(leaf)
	require.NoError(t, err)
	require.Equal(t, byte(CBORTagLeaf), data[1])
}

func TestDecodeProofCBORRejectsUnknownTag(t *testing.T) {
	// tag 999 wrapping an empty array, itself wrapped in an indefinite-length proof array
	data := []byte{0x9f, 0xd9, 0x03, 0xe7, 0x80, 0xff}
	_, err := DecodeProofCBOR(data)
	require.Error(t, err)
}

func TestDecodeProofCBORRejectsMalformedData(t *testing.T) {
	_, err := DecodeProofCBOR([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}
