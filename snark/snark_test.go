package snark

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
)

func testProtocol(layer string) *Protocol {
	return &Protocol{
		Layer:            layer,
		Degree:           21,
		NumInstance:      []int{25},
		TranscriptDigest: common.HexToHash("0xaa11"),
	}
}

func testInstances(values ...uint64) [][]fr.Element {
	column := make([]fr.Element, len(values))
	for i, v := range values {
		column[i].SetUint64(v)
	}
	return [][]fr.Element{column}
}

func TestEncodeInstancesRoundTrip(t *testing.T) {
	instances := testInstances(1, 42, 0, 1<<40)

	encoded, err := EncodeInstances(instances)
	if err != nil {
		t.Fatalf("EncodeInstances: %v", err)
	}
	if len(encoded)%32 != 0 {
		t.Errorf("encoded length %d not a multiple of 32", len(encoded))
	}
	if len(encoded) != 4*InstanceBytes {
		t.Errorf("encoded length: got %d, want %d", len(encoded), 4*InstanceBytes)
	}

	decoded, err := DecodeInstances(encoded)
	if err != nil {
		t.Fatalf("DecodeInstances: %v", err)
	}
	reencoded, err := EncodeInstances(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Error("round trip did not reproduce bytes")
	}
}

func TestEncodeInstancesBigEndian(t *testing.T) {
	encoded, err := EncodeInstances(testInstances(0x0102))
	if err != nil {
		t.Fatalf("EncodeInstances: %v", err)
	}
	// Canonical encoding is big-endian: the value lands in the last bytes.
	if encoded[30] != 0x01 || encoded[31] != 0x02 {
		t.Errorf("trailing bytes: got %x %x, want 01 02", encoded[30], encoded[31])
	}
	for _, b := range encoded[:30] {
		if b != 0 {
			t.Fatalf("leading bytes should be zero, got %x", encoded[:30])
		}
	}
}

func TestEncodeInstancesRejectsMultipleColumns(t *testing.T) {
	if _, err := EncodeInstances([][]fr.Element{{}, {}}); err == nil {
		t.Error("expected error for two instance columns")
	}
}

func TestDecodeInstancesRejectsRaggedLength(t *testing.T) {
	if _, err := DecodeInstances(make([]byte, 33)); err == nil {
		t.Error("expected error for length not a multiple of 32")
	}
}

func TestDecodeInstancesRejectsNonCanonical(t *testing.T) {
	overflow := make([]byte, 32)
	for i := range overflow {
		overflow[i] = 0xff
	}
	if _, err := DecodeInstances(overflow); err == nil {
		t.Error("expected error for a value above the field modulus")
	}
}

func TestProtocolEqual(t *testing.T) {
	a, b := testProtocol("layer2"), testProtocol("layer2")
	if !a.Equal(b) {
		t.Error("identical protocols should compare equal")
	}
	b.TranscriptDigest = common.HexToHash("0xbb22")
	if a.Equal(b) {
		t.Error("protocols with different digests should not compare equal")
	}
}

func TestCheckProtocolMismatch(t *testing.T) {
	s := &Snark{Protocol: testProtocol("layer2")}
	if err := s.CheckProtocol(0, testProtocol("layer2")); err != nil {
		t.Errorf("matching protocol: unexpected error %v", err)
	}

	err := s.CheckProtocol(3, testProtocol("layer1"))
	mismatch, ok := err.(*ProtocolMismatchError)
	if !ok {
		t.Fatalf("expected ProtocolMismatchError, got %v", err)
	}
	if mismatch.Index != 3 {
		t.Errorf("mismatch index: got %d, want 3", mismatch.Index)
	}
}

func TestProtocolJSONRoundTrip(t *testing.T) {
	p := testProtocol("layer4")
	data, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeProtocol(data)
	if err != nil {
		t.Fatalf("DecodeProtocol: %v", err)
	}
	if !p.Equal(decoded) {
		t.Error("protocol JSON round trip lost structure")
	}
}

func TestSnarkJSONRoundTrip(t *testing.T) {
	s := &Snark{
		Protocol:  testProtocol("layer3"),
		Proof:     []byte{0xde, 0xad, 0xbe, 0xef},
		Instances: testInstances(7, 9),
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal snark: %v", err)
	}
	var decoded Snark
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal snark: %v", err)
	}
	if !s.Equal(&decoded) {
		t.Error("snark JSON round trip lost structure")
	}
}
