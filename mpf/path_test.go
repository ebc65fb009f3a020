package mpf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPathIs64Nibbles(t *testing.T) {
	path := NewPath([]byte("foo"))
	require.Len(t, path, HashSize)
	require.Equal(t, 64, path.Len())
}

func TestNibbleSplitsBytesHighLow(t *testing.T) {
	path := []byte{0xAB, 0xCD}
	require.Equal(t, byte(0xA), Nibble(path, 0))
	require.Equal(t, byte(0xB), Nibble(path, 1))
	require.Equal(t, byte(0xC), Nibble(path, 2))
	require.Equal(t, byte(0xD), Nibble(path, 3))
}

func TestNibblesRange(t *testing.T) {
	path := []byte{0xAB, 0xCD, 0xEF}
	require.Equal(t, []byte{0xA, 0xB, 0xC, 0xD, 0xE, 0xF}, Nibbles(path, 0, 6))
	require.Equal(t, []byte{0xC, 0xD}, Nibbles(path, 2, 4))
}

func TestCommonPrefixLen(t *testing.T) {
	a := []byte{0xAB, 0xCD}
	b := []byte{0xAB, 0xC0}
	// nibbles: a = A,B,C,D ; b = A,B,C,0 -> 3 common nibbles
	require.Equal(t, 3, CommonPrefixLen(a, b, 0, 0))

	identical := []byte{0xAB, 0xCD}
	require.Equal(t, 4, CommonPrefixLen(a, identical, 0, 0))
}

func TestMatchPrefix(t *testing.T) {
	path := []byte{0xAB, 0xCD}
	require.Equal(t, 3, matchPrefix([]byte{0xA, 0xB, 0xC}, path, 0))
	require.Equal(t, 2, matchPrefix([]byte{0xA, 0xB, 0xF}, path, 0))
	require.Equal(t, 0, matchPrefix([]byte{0xA, 0xB}, path, 1))
}

// TestSuffixEncodingParityTagging checks the 0xFF/0x00 parity disambiguation: the tag
// byte alone must make the two parities produce different encodings even over the same bytes.
func TestSuffixEncodingParityTagging(t *testing.T) {
	path := []byte{0xAB, 0xCD, 0xEF, 0x01}

	even := SuffixEncoding(path, 0)
	require.Equal(t, byte(0xFF), even[0])
	require.Equal(t, path, even[1:])

	odd := SuffixEncoding(path, 1)
	require.Equal(t, byte(0x00), odd[0])
	require.Equal(t, Nibble(path, 1), odd[1])
	require.Equal(t, path[1:], odd[2:])

	require.NotEqual(t, even, odd)
}

func TestSuffixEncodingAtEnd(t *testing.T) {
	path := []byte{0xAB}
	// cursor == full nibble length (even): the "remaining bytes" portion is empty
	enc := SuffixEncoding(path, 2)
	require.Equal(t, []byte{0xFF}, enc)
}
