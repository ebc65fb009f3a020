package mpf

import (
	"encoding/json"
	"fmt"

	"github.com/canopy-network/canopy-forestry/lib"
)

/*
This file implements the JSON wire shape for a Proof's Steps:

  Branch: {type: "branch", skip, neighbors: hex of 128 bytes (4 × 32)}
  Fork:   {type: "fork",   skip, neighbor: {nibble, prefix: hex, root: hex}}
  Leaf:   {type: "leaf",   skip, neighbor: {key: hex-32, value: hex-32}}

The Leaf step's neighbor field historically appeared both as a bare "value" and as the
{key, value} object; only the newer, canonical {key, value} shape is produced or accepted here.
*/

// jsonForkNeighbor is the Fork step's neighbor shape.
type jsonForkNeighbor struct {
	Nibble int          `json:"nibble"`
	Prefix lib.HexBytes `json:"prefix"`
	Root   lib.HexBytes `json:"root"`
}

// jsonLeafNeighbor is the Leaf step's neighbor shape (canonical {key,value} form).
type jsonLeafNeighbor struct {
	Key   lib.HexBytes `json:"key"`
	Value lib.HexBytes `json:"value"`
}

// jsonStep is the wire envelope every Step shape is marshaled through.
type jsonStep struct {
	Type      string           `json:"type"`
	Skip      int              `json:"skip"`
	Neighbors lib.HexBytes     `json:"neighbors,omitempty"`
	Neighbor  *json.RawMessage `json:"neighbor,omitempty"`
}

// MarshalJSON implements json.Marshaler for a single proof Step.
func (s Step) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StepBranch:
		flat := make([]byte, 0, 4*HashSize)
		for _, n := range s.Neighbors {
			flat = append(flat, n...)
		}
		return json.Marshal(jsonStep{Type: "branch", Skip: s.Skip, Neighbors: flat})

	case StepFork:
		neighbor, err := json.Marshal(jsonForkNeighbor{
			Nibble: s.ForkNibble,
			Prefix: s.ForkPrefix,
			Root:   s.ForkRoot,
		})
		if err != nil {
			return nil, err
		}
		raw := json.RawMessage(neighbor)
		return json.Marshal(jsonStep{Type: "fork", Skip: s.Skip, Neighbor: &raw})

	case StepLeaf:
		neighbor, err := json.Marshal(jsonLeafNeighbor{Key: s.LeafKey, Value: s.LeafValue})
		if err != nil {
			return nil, err
		}
		raw := json.RawMessage(neighbor)
		return json.Marshal(jsonStep{Type: "leaf", Skip: s.Skip, Neighbor: &raw})

	default:
		return nil, fmt.Errorf("mpf: cannot encode proof step of unknown kind %d", s.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler for a single proof Step.
func (s *Step) UnmarshalJSON(data []byte) error {
	var js jsonStep
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	switch js.Type {
	case "branch":
		if len(js.Neighbors) != 4*HashSize {
			return fmt.Errorf("mpf: branch step: expected %d neighbor bytes, got %d", 4*HashSize, len(js.Neighbors))
		}
		var neighbors [4][]byte
		for i := 0; i < 4; i++ {
			neighbors[i] = append([]byte{}, js.Neighbors[i*HashSize:(i+1)*HashSize]...)
		}
		*s = Step{Kind: StepBranch, Skip: js.Skip, Neighbors: neighbors}
		return nil

	case "fork":
		if js.Neighbor == nil {
			return fmt.Errorf("mpf: fork step missing neighbor")
		}
		var n jsonForkNeighbor
		if err := json.Unmarshal(*js.Neighbor, &n); err != nil {
			return err
		}
		*s = Step{Kind: StepFork, Skip: js.Skip, ForkNibble: n.Nibble, ForkPrefix: []byte(n.Prefix), ForkRoot: []byte(n.Root)}
		return nil

	case "leaf":
		if js.Neighbor == nil {
			return fmt.Errorf("mpf: leaf step missing neighbor")
		}
		var n jsonLeafNeighbor
		if err := json.Unmarshal(*js.Neighbor, &n); err != nil {
			return err
		}
		*s = Step{Kind: StepLeaf, Skip: js.Skip, LeafKey: []byte(n.Key), LeafValue: []byte(n.Value)}
		return nil

	default:
		return fmt.Errorf("mpf: unknown proof step type %q", js.Type)
	}
}

// EncodeProofJSON serializes a Proof to its JSON wire form, through the module's standard
// lib.ErrorI-returning JSON helper (lib/util.go).
func EncodeProofJSON(p Proof) ([]byte, lib.ErrorI) {
	return lib.MarshalJSON(p)
}

// DecodeProofJSON parses a Proof from its JSON wire form.
func DecodeProofJSON(data []byte) (Proof, lib.ErrorI) {
	var p Proof
	if err := lib.UnmarshalJSON(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}
