package circuit

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rollprover/rollprover/batch"
	"github.com/rollprover/rollprover/blob"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/snark"
)

// InnerWitness feeds the inner super circuit: the chunk's execution traces
// and their summary.
type InnerWitness struct {
	// ChunkInfo summarizes the chunk's execution.
	ChunkInfo *batch.ChunkInfo
	// Traces holds the serialized execution traces of every block in the
	// chunk.
	Traces []byte
}

func (w *InnerWitness) Layer() config.LayerID { return config.LayerInner }

func (w *InnerWitness) Dummy() Witness {
	return &InnerWitness{ChunkInfo: &batch.ChunkInfo{}}
}

func (w *InnerWitness) Digest() common.Hash {
	return crypto.Keccak256Hash(w.ChunkInfo.Digest().Bytes(), crypto.Keccak256(w.Traces))
}

// CompressionWitness feeds a compression circuit (layers 1, 2, 4 and 6):
// the previous layer's snark and whether that snark already carries an
// accumulator.
type CompressionWitness struct {
	LayerID config.LayerID
	Shape   *config.ShapeParams
	// PrevSnark is the snark being compressed.
	PrevSnark *snark.Snark
	// PrevHasAccumulator reports whether PrevSnark carries an accumulator
	// (false only when compressing the inner snark at layer1).
	PrevHasAccumulator bool
}

func (w *CompressionWitness) Layer() config.LayerID { return w.LayerID }

// Dummy returns the witness itself: a compression circuit's shape depends
// only on its input snark's structure, which the real witness already has.
func (w *CompressionWitness) Dummy() Witness { return w }

func (w *CompressionWitness) Digest() common.Hash {
	return crypto.Keccak256Hash(
		[]byte(w.LayerID.String()),
		w.PrevSnark.Protocol.TranscriptDigest.Bytes(),
		crypto.Keccak256(w.PrevSnark.Proof),
	)
}

// AggregationWitness feeds the layer3 batch circuit: the chunk snarks being
// aggregated, the batch structure, the blob consistency witness linking the
// batch payload to its on-chain commitment, and the expected chunk
// protocols per proving route.
type AggregationWitness struct {
	Shape *config.ShapeParams
	// Header is the batch's structural metadata.
	Header *batch.Header
	// BlobWitness binds the batch payload to the blob commitment.
	BlobWitness *blob.ConsistencyWitness
	// ChunkSnarks are the layer2 snarks of the batch's chunks, in order.
	ChunkSnarks []*snark.Snark
	// ChunkKinds records each chunk's proving route, index-aligned with
	// ChunkSnarks.
	ChunkKinds []batch.ChunkKind
	// ExpectedProtocols maps each proving route to the protocol every
	// chunk snark of that route must carry.
	ExpectedProtocols map[batch.ChunkKind]*snark.Protocol
}

func (w *AggregationWitness) Layer() config.LayerID { return config.Layer3 }

func (w *AggregationWitness) Dummy() Witness { return w }

func (w *AggregationWitness) Digest() common.Hash {
	parts := [][]byte{w.Header.Hash().Bytes()}
	if w.BlobWitness != nil {
		parts = append(parts, w.BlobWitness.ID().Bytes())
	}
	for _, s := range w.ChunkSnarks {
		parts = append(parts, crypto.Keccak256(s.Proof))
	}
	return crypto.Keccak256Hash(parts...)
}

// CheckChunkProtocols verifies that every chunk snark carries the protocol
// expected for its proving route. A mismatch means a stale or wrong proof
// was fed in and is fatal.
func (w *AggregationWitness) CheckChunkProtocols() error {
	for i, s := range w.ChunkSnarks {
		expected := w.ExpectedProtocols[w.ChunkKinds[i]]
		if err := s.CheckProtocol(i, expected); err != nil {
			return err
		}
	}
	return nil
}

// RecursionWitness feeds one round of the layer5 recursion circuit: the
// previous round's snark plus the next batch snark to fold.
type RecursionWitness struct {
	Shape *config.ShapeParams
	// PrevSnark is the running recursion snark (the seed snark at round 0).
	PrevSnark *snark.Snark
	// BatchSnark is the batch snark folded in this round.
	BatchSnark *snark.Snark
	// Round is the recursion round number, starting at 0.
	Round int
}

func (w *RecursionWitness) Layer() config.LayerID { return config.Layer5 }

func (w *RecursionWitness) Dummy() Witness { return w }

func (w *RecursionWitness) Digest() common.Hash {
	var round [8]byte
	binary.BigEndian.PutUint64(round[:], uint64(w.Round))
	return crypto.Keccak256Hash(
		crypto.Keccak256(w.PrevSnark.Proof),
		crypto.Keccak256(w.BatchSnark.Proof),
		round[:],
	)
}
