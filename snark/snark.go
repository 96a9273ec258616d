// Package snark defines the proof artifact passed between pipeline layers:
// a structural protocol descriptor, the raw proof bytes and the public
// input values in the native scalar field (bn254).
package snark

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
)

// Protocol is the structural descriptor of a snark: everything a verifier
// needs to know about the circuit's shape without the proof itself. Two
// snarks produced by the same circuit and verifying key share an equal
// protocol; a mismatch indicates a stale or wrong key and is fatal.
type Protocol struct {
	// Layer is the string identifier of the pipeline layer that produced
	// the snark.
	Layer string `json:"layer"`
	// Degree is the circuit-size parameter the snark was generated with.
	Degree uint32 `json:"degree"`
	// NumInstance is the instance-column value counts.
	NumInstance []int `json:"num_instance"`
	// TranscriptDigest commits to the full preprocessed circuit structure.
	TranscriptDigest common.Hash `json:"transcript_digest"`
}

// Equal reports whether two protocols describe the same circuit structure.
func (p *Protocol) Equal(other *Protocol) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Layer != other.Layer || p.Degree != other.Degree ||
		p.TranscriptDigest != other.TranscriptDigest {
		return false
	}
	if len(p.NumInstance) != len(other.NumInstance) {
		return false
	}
	for i, n := range p.NumInstance {
		if other.NumInstance[i] != n {
			return false
		}
	}
	return true
}

// Encode serializes the protocol to its canonical JSON form.
func (p *Protocol) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodeProtocol deserializes a protocol descriptor from its canonical
// JSON form.
func DecodeProtocol(data []byte) (*Protocol, error) {
	var p Protocol
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode protocol: %w", err)
	}
	return &p, nil
}

// TotalInstances returns the total number of public input values across
// all instance columns.
func (p *Protocol) TotalInstances() int {
	total := 0
	for _, n := range p.NumInstance {
		total += n
	}
	return total
}

// Snark is the unit passed between composition stages.
type Snark struct {
	// Protocol is the structural descriptor of the producing circuit.
	Protocol *Protocol `json:"protocol"`
	// Proof holds the raw proof bytes.
	Proof []byte `json:"proof"`
	// Instances holds the public input values, one vector per instance
	// column.
	Instances [][]fr.Element `json:"instances"`
}

// ProtocolMismatchError reports that a snark's protocol disagrees with the
// expected structure for its position in the pipeline. This is a fatal
// precondition failure, not a retryable verification failure.
type ProtocolMismatchError struct {
	// Index of the offending snark among its siblings (e.g. chunk index).
	Index int
	// Expected and Found identify the two protocols by layer and digest.
	Expected string
	Found    string
}

func (e *ProtocolMismatchError) Error() string {
	return fmt.Sprintf("snark protocol mismatch: index=%d, expected=%s, found=%s",
		e.Index, e.Expected, e.Found)
}

// Describe returns a short human-readable identity for a protocol, used in
// mismatch errors.
func (p *Protocol) Describe() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%s", p.Layer, p.TranscriptDigest.Hex())
}

// CheckProtocol verifies that the snark at the given index carries the
// expected protocol.
func (s *Snark) CheckProtocol(index int, expected *Protocol) error {
	if s.Protocol.Equal(expected) {
		return nil
	}
	return &ProtocolMismatchError{
		Index:    index,
		Expected: expected.Describe(),
		Found:    s.Protocol.Describe(),
	}
}

// Equal reports structural equality of two snarks: protocol, proof bytes
// and every instance value.
func (s *Snark) Equal(other *Snark) bool {
	if !s.Protocol.Equal(other.Protocol) || !bytes.Equal(s.Proof, other.Proof) {
		return false
	}
	if len(s.Instances) != len(other.Instances) {
		return false
	}
	for i := range s.Instances {
		if len(s.Instances[i]) != len(other.Instances[i]) {
			return false
		}
		for j := range s.Instances[i] {
			if !s.Instances[i][j].Equal(&other.Instances[i][j]) {
				return false
			}
		}
	}
	return true
}
