package mpf

import (
	"encoding/binary"

	"github.com/canopy-network/canopy-forestry/lib"
)

// reservedRootKey mirrors store.reservedRootKey; duplicated here (rather than importing the
// store package, which already imports mpf, so the import would be a cycle) since it is a fixed
// protocol constant, not implementation detail.
const reservedRootKey = "__root__"

// Persisted node encoding. This is internal to the Store, not part of the wire proof format
// (spec §4.7 only constrains proof steps): tag byte, then kind-specific fields.
const (
	tagLeaf   byte = 1
	tagBranch byte = 2
)

// persistSubtree writes every node reachable from n into batch, keyed by each node's own hash
// rendered as 64 hex characters (content addressing).
func persistSubtree(batch lib.WStoreI, n *node) lib.ErrorI {
	if n == nil || n.k == kindEmpty {
		return nil
	}
	encoded := encodeNode(n)
	if err := batch.Set(nodeKey(n.hashOf()), encoded); err != nil {
		return err
	}
	if n.k == kindBranch {
		for _, child := range n.children {
			if child != nil {
				if err := persistSubtree(batch, child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// nodeKey renders a node hash into its 64-hex-character store key.
func nodeKey(hash []byte) []byte {
	return []byte(lib.BytesToString(hash))
}

// loadSubtree reads the node keyed by hash, plus (for branches) every descendant, back into
// memory.
func loadSubtree(store lib.RStoreI, hash []byte) (*node, lib.ErrorI) {
	raw, err := store.Get(nodeKey(hash))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrMalformedInput("missing node for hash in store")
	}
	n, decErr := decodeNode(raw)
	if decErr != nil {
		return nil, decErr
	}
	n.hash = append([]byte{}, hash...)
	if n.k == kindBranch {
		for i, childHash := range pendingChildHashes(raw) {
			if childHash == nil {
				continue
			}
			child, err := loadSubtree(store, childHash)
			if err != nil {
				return nil, err
			}
			n.children[i] = child
		}
	}
	return n, nil
}

// encodeNode serializes a node for storage: Leaf{tag, cursor(2 bytes), keyLen(4)+key, valueLen(4)+value}
// or Branch{tag, prefixLen(2)+prefix, 16×(32-byte child hash or all-zero for absent)}.
func encodeNode(n *node) []byte {
	switch n.k {
	case kindLeaf:
		buf := make([]byte, 0, 1+2+4+len(n.key)+4+len(n.value))
		buf = append(buf, tagLeaf)
		buf = appendUint16(buf, uint16(n.cursor))
		buf = appendUint32(buf, uint32(len(n.key)))
		buf = append(buf, n.key...)
		buf = appendUint32(buf, uint32(len(n.value)))
		buf = append(buf, n.value...)
		return buf
	case kindBranch:
		buf := make([]byte, 0, 1+2+len(n.prefix)+16*HashSize)
		buf = append(buf, tagBranch)
		buf = appendUint16(buf, uint16(len(n.prefix)))
		buf = append(buf, n.prefix...)
		for _, child := range n.children {
			if child == nil {
				buf = append(buf, make([]byte, HashSize)...)
				continue
			}
			buf = append(buf, child.hashOf()...)
		}
		return buf
	}
	return nil
}

// decodeNode parses everything but a Branch's children (those are resolved separately by
// loadSubtree, since only the raw bytes - not yet re-parsed here - carry their hashes).
func decodeNode(raw []byte) (*node, lib.ErrorI) {
	if len(raw) < 1 {
		return nil, ErrMalformedInput("empty encoded node")
	}
	switch raw[0] {
	case tagLeaf:
		cursor := int(binary.BigEndian.Uint16(raw[1:3]))
		off := 3
		keyLen := int(binary.BigEndian.Uint32(raw[off : off+4]))
		off += 4
		key := append([]byte{}, raw[off:off+keyLen]...)
		off += keyLen
		valLen := int(binary.BigEndian.Uint32(raw[off : off+4]))
		off += 4
		value := append([]byte{}, raw[off:off+valLen]...)
		return newLeaf(cursor, key, value), nil
	case tagBranch:
		prefixLen := int(binary.BigEndian.Uint16(raw[1:3]))
		off := 3
		prefix := append([]byte{}, raw[off:off+prefixLen]...)
		return newBranch(prefix), nil
	}
	return nil, ErrMalformedInput("unknown node tag")
}

// pendingChildHashes re-reads the 16 child hash slots out of a Branch's encoded form.
func pendingChildHashes(raw []byte) [16][]byte {
	var out [16][]byte
	if len(raw) < 1 || raw[0] != tagBranch {
		return out
	}
	prefixLen := int(binary.BigEndian.Uint16(raw[1:3]))
	off := 3 + prefixLen
	for i := 0; i < 16; i++ {
		h := raw[off : off+HashSize]
		off += HashSize
		zero := true
		for _, b := range h {
			if b != 0 {
				zero = false
				break
			}
		}
		if !zero {
			out[i] = append([]byte{}, h...)
		}
	}
	return out
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// readRoot reads the current root hash from store (persisted as 32 bytes of hex), defaulting to
// NullHash when unset.
func readRoot(store lib.RStoreI) ([]byte, lib.ErrorI) {
	raw, err := store.Get([]byte(reservedRootKey))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NullHash, nil
	}
	root, err := lib.StringToBytes(string(raw))
	if err != nil {
		return nil, ErrMalformedInput("stored root hash is not valid hex")
	}
	if len(root) != HashSize {
		return nil, ErrInvalidRootLength(len(root))
	}
	return root, nil
}

// writeRoot stages the new root hash under the reserved key, hex-encoded.
func writeRoot(batch lib.WStoreI, root []byte) lib.ErrorI {
	return batch.Set([]byte(reservedRootKey), []byte(lib.BytesToString(root)))
}
