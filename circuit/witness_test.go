package circuit

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rollprover/rollprover/batch"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/snark"
)

func TestInnerWitnessDummyShape(t *testing.T) {
	w := &InnerWitness{
		ChunkInfo: &batch.ChunkInfo{ChainID: 1, TxBytes: []byte{0x01}},
		Traces:    []byte("traces"),
	}
	dummy := w.Dummy()
	if dummy.Layer() != config.LayerInner {
		t.Errorf("dummy layer: got %s, want %s", dummy.Layer(), config.LayerInner)
	}
	if dummy.Digest() == w.Digest() {
		t.Error("dummy witness shares the real witness digest")
	}
}

func TestCompressionWitnessDummyIsSelf(t *testing.T) {
	w := &CompressionWitness{
		LayerID: config.Layer4,
		PrevSnark: &snark.Snark{
			Protocol: &snark.Protocol{Layer: config.Layer3.String(), NumInstance: []int{25}},
			Proof:    []byte{0x01},
		},
		PrevHasAccumulator: true,
	}
	if w.Dummy() != Witness(w) {
		t.Error("compression keygen witness should be the witness itself")
	}
	if w.Layer() != config.Layer4 {
		t.Errorf("layer: got %s, want %s", w.Layer(), config.Layer4)
	}
}

func TestWitnessDigestsAreInputSensitive(t *testing.T) {
	base := &InnerWitness{ChunkInfo: &batch.ChunkInfo{ChainID: 1}, Traces: []byte("a")}
	other := &InnerWitness{ChunkInfo: &batch.ChunkInfo{ChainID: 1}, Traces: []byte("b")}
	if base.Digest() == other.Digest() {
		t.Error("different traces produced equal digests")
	}

	rec := &RecursionWitness{
		PrevSnark:  &snark.Snark{Proof: []byte{0x01}},
		BatchSnark: &snark.Snark{Proof: []byte{0x02}},
		Round:      0,
	}
	recNext := &RecursionWitness{
		PrevSnark:  rec.PrevSnark,
		BatchSnark: rec.BatchSnark,
		Round:      1,
	}
	if rec.Digest() == recNext.Digest() {
		t.Error("round change did not change the recursion witness digest")
	}
}

func chunkSnark(digest common.Hash) *snark.Snark {
	var e fr.Element
	e.SetUint64(1)
	return &snark.Snark{
		Protocol: &snark.Protocol{
			Layer:            config.Layer2.String(),
			Degree:           26,
			NumInstance:      []int{1},
			TranscriptDigest: digest,
		},
		Proof:     []byte{0x01},
		Instances: [][]fr.Element{{e}},
	}
}

func TestCheckChunkProtocols(t *testing.T) {
	good := common.HexToHash("0x01")
	bad := common.HexToHash("0x02")
	w := &AggregationWitness{
		Header:      &batch.Header{},
		ChunkSnarks: []*snark.Snark{chunkSnark(good), chunkSnark(good)},
		ChunkKinds:  []batch.ChunkKind{batch.ChunkKindHalo2, batch.ChunkKindHalo2},
		ExpectedProtocols: map[batch.ChunkKind]*snark.Protocol{
			batch.ChunkKindHalo2: chunkSnark(good).Protocol,
		},
	}
	if err := w.CheckChunkProtocols(); err != nil {
		t.Fatalf("CheckChunkProtocols on matching protocols: %v", err)
	}

	w.ChunkSnarks[1] = chunkSnark(bad)
	err := w.CheckChunkProtocols()
	var mismatch *snark.ProtocolMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ProtocolMismatchError, got %v", err)
	}
	if mismatch.Index != 1 {
		t.Errorf("mismatch index: got %d, want 1", mismatch.Index)
	}
}
