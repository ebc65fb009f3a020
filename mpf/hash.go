package mpf

import (
	pool "github.com/libp2p/go-buffer-pool"

	"github.com/canopy-network/canopy-forestry/lib/crypto"
)

// HashSize is the width, in bytes, of every digest in the trie (blake2b-256).
const HashSize = crypto.HashSize

// NullHash is the 32 zero bytes: the canonical hash of the empty trie and of any empty sub-slot.
var NullHash = make([]byte, HashSize)

// NullHash2, NullHash4, NullHash8 cache combine() of all-empty subtrees at levels 1..3 of
// merkle16, so computing the root of a branch with few populated children never re-derives them.
var (
	NullHash2 = Combine(NullHash, NullHash)
	NullHash4 = Combine(NullHash2, NullHash2)
	NullHash8 = Combine(NullHash4, NullHash4)
)

// Hash() is the trie-wide digest function: blake2b-256.
func Hash(msg []byte) []byte {
	return crypto.Hash(msg)
}

// Combine() is combine(l, r) = H(l ⊕ r).
func Combine(l, r []byte) []byte {
	buf := pool.Get(len(l) + len(r))
	defer pool.Put(buf)
	n := copy(buf, l)
	copy(buf[n:], r)
	return Hash(buf)
}

// LeafHash() is H(suffix_encoding(path, cursor) ⊕ H(value)).
func LeafHash(path []byte, cursor int, valueDigest []byte) []byte {
	return Combine(SuffixEncoding(path, cursor), valueDigest)
}

// BranchHash() is H(prefix_as_nibbles ⊕ merkle16(children)).
func BranchHash(prefix []byte, childrenRoot []byte) []byte {
	return Combine(prefix, childrenRoot)
}

// merkle16() computes the full binary Merkle root of 16 leaves via combine, pairing adjacent
// hashes across four levels; an empty child contributes NullHash.
func merkle16(children [16][]byte) []byte {
	level := make([][]byte, 16)
	for i, c := range children {
		if c == nil {
			level[i] = NullHash
		} else {
			level[i] = c
		}
	}
	for len(level) > 1 {
		next := make([][]byte, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = Combine(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}

// nullAtLevel returns the cached null-subtree hash for a subtree of size 2^level (level 0 is a
// single empty leaf, level 3 is 8 empty leaves) - the values merkle16 would otherwise recompute
// by pairing NullHash with itself across `level` levels.
func nullAtLevel(level int) []byte {
	switch level {
	case 0:
		return NullHash
	case 1:
		return NullHash2
	case 2:
		return NullHash4
	case 3:
		return NullHash8
	}
	panic("mpf: nullAtLevel out of range")
}

// sparseMerkle16() computes the same root as merkle16 for a branch with exactly two populated
// slots, `me` and `neighbor`, by exploiting the all-null subtrees that surround them:
// rather than materializing all 16 leaves, it walks the two active hashes up to the root,
// combining each against either the other active hash (once they share a parent) or a
// precomputed null-subtree hash of the appropriate size.
func sparseMerkle16(me int, meHash []byte, neighbor int, neighborHash []byte) []byte {
	if me == neighbor {
		panic("mpf: sparseMerkle16 called with identical indices")
	}
	meIdx, meH := me, meHash
	neighborIdx, neighborH := neighbor, neighborHash
	for level := 0; level < 4; level++ {
		if meIdx/2 == neighborIdx/2 {
			// me and neighbor share a parent at this level: combine them directly, then keep
			// climbing alone against null subtrees for the remaining levels.
			if meIdx%2 == 0 {
				meH = Combine(meH, neighborH)
			} else {
				meH = Combine(neighborH, meH)
			}
			meIdx /= 2
			for level++; level < 4; level++ {
				meH = combineWithNull(meIdx, meH, level)
				meIdx /= 2
			}
			return meH
		}
		meH = combineWithNull(meIdx, meH, level)
		neighborH = combineWithNull(neighborIdx, neighborH, level)
		meIdx /= 2
		neighborIdx /= 2
	}
	return meH // unreachable: me != neighbor guarantees a shared parent within 4 levels
}

// combineWithNull combines h (the subtree hash at idx, a node of size 2^level) with the null
// hash of its sibling subtree, on whichever side idx's parity puts it.
func combineWithNull(idx int, h []byte, level int) []byte {
	null := nullAtLevel(level)
	if idx%2 == 0 {
		return Combine(h, null)
	}
	return Combine(null, h)
}

// merkle16Proof() returns the four sparse-Merkle neighbor hashes `[lvl1, lvl2, lvl3, lvl4]`
// (top-to-bottom) proving that child `me` has hash
// `children[me]` inside merkle16(children).
func merkle16Proof(children [16][]byte, me int) (neighbors [4][]byte) {
	level := make([][]byte, 16)
	for i, c := range children {
		if c == nil {
			level[i] = NullHash
		} else {
			level[i] = c
		}
	}
	idx := me
	// level 0 has 16 leaves (4 levels of pairing down to 1); capture neighbor at each level,
	// from the bottom (closest to the leaf, lvl4) up to the top (lvl1), then reverse into
	// top-to-bottom wire order.
	bottomUp := make([][]byte, 0, 4)
	for len(level) > 1 {
		siblingIdx := idx ^ 1
		bottomUp = append(bottomUp, level[siblingIdx])
		next := make([][]byte, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = Combine(level[2*i], level[2*i+1])
		}
		level = next
		idx /= 2
	}
	// bottomUp is [lvl4, lvl3, lvl2, lvl1]; wire order is [lvl1, lvl2, lvl3, lvl4]
	for i, h := range bottomUp {
		neighbors[3-i] = h
	}
	return
}

// reconstructMerkle16() rebuilds the merkle16 root given the nibble index `me` of the one known
// child hash and its four sparse-Merkle neighbors in wire order [lvl1, lvl2, lvl3, lvl4]. This is
// the explicit 16-case position table: the bit pattern of `me` (most-significant bit =
// top level) determines, at each of the four levels, whether `me`'s running hash is combined as
// the left or right operand against that level's neighbor.
func reconstructMerkle16(me int, meHash []byte, neighbors [4][]byte) []byte {
	h := meHash
	// neighbors is in wire order [lvl1, lvl2, lvl3, lvl4] (top-to-bottom); reconstruction walks
	// bottom-up, starting at the leaf (lvl4, bit 0 of me) and finishing at the root (lvl1, bit 3).
	for i := 3; i >= 0; i-- {
		bit := (me >> (3 - i)) & 1
		neighbor := neighbors[i]
		if bit == 0 {
			h = Combine(h, neighbor)
		} else {
			h = Combine(neighbor, h)
		}
	}
	return h
}
