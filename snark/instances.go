package snark

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// InstanceBytes is the canonical encoded width of one public input value.
const InstanceBytes = fr.Bytes

// EncodeInstances serializes a public-input matrix to its canonical byte
// form: each field element as 32 big-endian bytes, concatenated in column
// order. The pipeline always produces a single instance column; that
// invariant is enforced here because the encoding is column-oblivious and
// could not be reversed otherwise.
func EncodeInstances(instances [][]fr.Element) ([]byte, error) {
	if len(instances) != 1 {
		return nil, fmt.Errorf("encode instances: expected a single instance column, got %d", len(instances))
	}
	out := make([]byte, 0, len(instances[0])*InstanceBytes)
	for i := range instances[0] {
		b := instances[0][i].Bytes()
		out = append(out, b[:]...)
	}
	return out, nil
}

// DecodeInstances reverses EncodeInstances: the byte length must be a
// multiple of 32 and every 32-byte chunk must be a canonical field element.
func DecodeInstances(data []byte) ([][]fr.Element, error) {
	if len(data)%InstanceBytes != 0 {
		return nil, fmt.Errorf("decode instances: length %d not a multiple of %d", len(data), InstanceBytes)
	}
	column := make([]fr.Element, len(data)/InstanceBytes)
	for i := range column {
		chunk := data[i*InstanceBytes : (i+1)*InstanceBytes]
		if err := column[i].SetBytesCanonical(chunk); err != nil {
			return nil, fmt.Errorf("decode instances: value %d: %w", i, err)
		}
	}
	return [][]fr.Element{column}, nil
}
