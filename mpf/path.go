package mpf

// Path is the 64-nibble routing key derived from hashing a key. It is always
// HashSize bytes / 2*HashSize nibbles long.
type Path []byte

// NewPath() hashes key into its 64-nibble path
func NewPath(key []byte) Path {
	return Path(Hash(key))
}

// Len() returns the number of nibbles in the path
func (p Path) Len() int { return len(p) * 2 }

// Nibble() returns the nibble (0..15) at nibble-index i: the upper 4 bits of byte i/2 when i is
// even, the lower 4 bits when i is odd.
func Nibble(path []byte, i int) byte {
	b := path[i/2]
	if i%2 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

// Nibbles() returns one nibble value (0..15) per output byte, for nibble-index range [a, b).
func Nibbles(path []byte, a, b int) []byte {
	out := make([]byte, 0, b-a)
	for i := a; i < b; i++ {
		out = append(out, Nibble(path, i))
	}
	return out
}

// CommonPrefixLen() returns the number of matching leading nibbles between two packed paths,
// each read from its own cursor, stopping once either path runs out of nibbles.
func CommonPrefixLen(a, b []byte, cursorA, cursorB int) int {
	n := 0
	for cursorA+n < len(a)*2 && cursorB+n < len(b)*2 {
		if Nibble(a, cursorA+n) != Nibble(b, cursorB+n) {
			break
		}
		n++
	}
	return n
}

// matchPrefix() returns how many leading nibbles of a nibble-per-byte prefix (e.g. a Branch's
// stored prefix) match the packed path starting at cursor.
func matchPrefix(prefix []byte, path []byte, cursor int) int {
	n := 0
	for n < len(prefix) && cursor+n < len(path)*2 {
		if prefix[n] != Nibble(path, cursor+n) {
			break
		}
		n++
	}
	return n
}

// SuffixEncoding encodes the remaining nibbles of a path from a given cursor, for use inside
// Leaf hashing. The parity of cursor determines the tag byte: 0xFF for even cursors
// (byte-aligned remainder), 0x00 for odd cursors (one loose nibble then byte-aligned remainder).
// This lets on-chain code disambiguate parity without carrying a separate length field.
func SuffixEncoding(path []byte, cursor int) []byte {
	if cursor%2 == 0 {
		rest := path[cursor/2:]
		out := make([]byte, 0, 1+len(rest))
		out = append(out, 0xFF)
		out = append(out, rest...)
		return out
	}
	nib := Nibble(path, cursor)
	rest := path[(cursor+1)/2:]
	out := make([]byte, 0, 2+len(rest))
	out = append(out, 0x00, nib)
	out = append(out, rest...)
	return out
}
