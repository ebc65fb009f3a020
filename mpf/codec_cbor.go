package mpf

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/canopy-network/canopy-forestry/lib"
)

/*
This file implements the CBOR wire shape for a Proof: an indefinite-length list of
tagged Steps, tags 121 (Branch) / 122 (Fork) / 123 (Leaf), each wrapping a definite-length list of
that step's fields in the same order as the JSON shape (the "type" discriminant is dropped since
the tag number already carries it). A Branch step's Neighbors field is additionally transmitted as
an indefinite-length byte string split into two 64-byte chunks, preserving a historical split used
by the on-chain decoder - cbor.Marshal has no vocabulary for that, so it is the one
piece of this codec assembled by hand around calls into github.com/fxamacker/cbor/v2 rather than
produced by a single Marshal call.
*/

// CBOR tag numbers for each proof step shape.
const (
	CBORTagBranch uint64 = 121
	CBORTagFork   uint64 = 122
	CBORTagLeaf   uint64 = 123
)

// EncodeProofCBOR serializes a Proof as an indefinite-length CBOR array of tagged steps.
func EncodeProofCBOR(p Proof) ([]byte, lib.ErrorI) {
	var buf bytes.Buffer
	buf.WriteByte(0x9f) // array(*): indefinite-length array header, RFC 8949 §3.2.1
	for _, step := range p {
		encoded, err := encodeStepCBOR(step)
		if err != nil {
			return nil, lib.ErrCBORMarshal(err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte(0xff) // break
	return buf.Bytes(), nil
}

// DecodeProofCBOR parses a Proof from the wire form EncodeProofCBOR produces. Decoding an
// indefinite-length array or byte string is transparent to cbor.Unmarshal - only encoding needs
// the manual construction above - so this side leans entirely on the library.
func DecodeProofCBOR(data []byte) (Proof, lib.ErrorI) {
	var tags []cbor.Tag
	if err := cbor.Unmarshal(data, &tags); err != nil {
		return nil, lib.ErrCBORUnmarshal(err)
	}
	proof := make(Proof, 0, len(tags))
	for _, tag := range tags {
		step, err := decodeStepCBOR(tag)
		if err != nil {
			return nil, lib.ErrCBORUnmarshal(err)
		}
		proof = append(proof, step)
	}
	return proof, nil
}

func encodeStepCBOR(s Step) ([]byte, error) {
	switch s.Kind {
	case StepBranch:
		return marshalCBORTag(CBORTagBranch, s.Skip, cbor.RawMessage(encodeSplitNeighbors(s.Neighbors)))
	case StepFork:
		return marshalCBORTag(CBORTagFork, s.Skip, s.ForkNibble, s.ForkPrefix, s.ForkRoot)
	case StepLeaf:
		return marshalCBORTag(CBORTagLeaf, s.Skip, s.LeafKey, s.LeafValue)
	default:
		return nil, fmt.Errorf("mpf: cannot cbor-encode proof step of unknown kind %d", s.Kind)
	}
}

// marshalCBORTag wraps fields (encoded as a definite-length CBOR array via the library) inside a
// CBOR tag with the given number, using the library's own Tag type for the tag header.
func marshalCBORTag(tagNum uint64, fields ...interface{}) ([]byte, error) {
	arr, err := cbor.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(cbor.Tag{Number: tagNum, Content: cbor.RawMessage(arr)})
}

// encodeSplitNeighbors serializes a Branch step's four 32-byte neighbors (128 bytes total) as a
// CBOR indefinite-length byte string made of exactly two 64-byte chunks, each chunk itself encoded
// as a normal definite-length byte string by the library.
func encodeSplitNeighbors(neighbors [4][]byte) []byte {
	flat := make([]byte, 0, 4*HashSize)
	for _, n := range neighbors {
		flat = append(flat, n...)
	}
	half := len(flat) / 2
	var buf bytes.Buffer
	buf.WriteByte(0x5f) // bstr(*): indefinite-length byte string header
	for _, chunk := range [][]byte{flat[:half], flat[half:]} {
		encoded, _ := cbor.Marshal(chunk) // definite-length byte string, never fails for []byte
		buf.Write(encoded)
	}
	buf.WriteByte(0xff) // break
	return buf.Bytes()
}

// decodeStepCBOR converts one decoded cbor.Tag back into a Step, by tag number.
func decodeStepCBOR(t cbor.Tag) (Step, error) {
	fields, ok := t.Content.([]interface{})
	if !ok {
		return Step{}, fmt.Errorf("mpf: cbor step: expected field array, got %T", t.Content)
	}
	switch t.Number {
	case CBORTagBranch:
		if len(fields) != 2 {
			return Step{}, fmt.Errorf("mpf: cbor branch step: expected 2 fields, got %d", len(fields))
		}
		skip, err := cborToInt(fields[0])
		if err != nil {
			return Step{}, err
		}
		neighborBytes, ok := fields[1].([]byte)
		if !ok || len(neighborBytes) != 4*HashSize {
			return Step{}, fmt.Errorf("mpf: cbor branch step: expected %d neighbor bytes", 4*HashSize)
		}
		var neighbors [4][]byte
		for i := 0; i < 4; i++ {
			neighbors[i] = append([]byte{}, neighborBytes[i*HashSize:(i+1)*HashSize]...)
		}
		return Step{Kind: StepBranch, Skip: skip, Neighbors: neighbors}, nil

	case CBORTagFork:
		if len(fields) != 4 {
			return Step{}, fmt.Errorf("mpf: cbor fork step: expected 4 fields, got %d", len(fields))
		}
		skip, err := cborToInt(fields[0])
		if err != nil {
			return Step{}, err
		}
		nibble, err := cborToInt(fields[1])
		if err != nil {
			return Step{}, err
		}
		prefix, _ := fields[2].([]byte)
		root, _ := fields[3].([]byte)
		return Step{Kind: StepFork, Skip: skip, ForkNibble: nibble, ForkPrefix: prefix, ForkRoot: root}, nil

	case CBORTagLeaf:
		if len(fields) != 3 {
			return Step{}, fmt.Errorf("mpf: cbor leaf step: expected 3 fields, got %d", len(fields))
		}
		skip, err := cborToInt(fields[0])
		if err != nil {
			return Step{}, err
		}
		key, _ := fields[1].([]byte)
		value, _ := fields[2].([]byte)
		return Step{Kind: StepLeaf, Skip: skip, LeafKey: key, LeafValue: value}, nil

	default:
		return Step{}, fmt.Errorf("mpf: unknown cbor proof step tag %d", t.Number)
	}
}

func cborToInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case uint64:
		return int(n), nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("mpf: expected cbor integer field, got %T", v)
	}
}
