package prover

import (
	"fmt"

	"github.com/rollprover/rollprover/batch"
	"github.com/rollprover/rollprover/blob"
	"github.com/rollprover/rollprover/circuit"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/proof"
	"github.com/rollprover/rollprover/snark"
)

// ChunkProvingTask is the unit of work of the chunk pipeline: one chunk's
// execution witness and the proving route that produced its traces.
type ChunkProvingTask struct {
	// InstanceID identifies the chunk in cache keys and logs.
	InstanceID string
	// Witness carries the chunk's traces and execution summary.
	Witness *circuit.InnerWitness
	// Kind records the inner proving route.
	Kind batch.ChunkKind
}

// BatchProvingTask is the unit of work of the batch pipeline: the chunk
// proofs to aggregate, the batch header, and the payload bytes committed
// in the batch's blob.
type BatchProvingTask struct {
	InstanceID  string
	ChunkProofs []*proof.ChunkProof
	Header      *batch.Header
	// BlobBytes is the batch payload before blob encoding.
	BlobBytes []byte
}

// BundleProvingTask is the unit of work of the bundle pipeline: the batch
// proofs to fold, in commitment order.
type BundleProvingTask struct {
	InstanceID  string
	BatchProofs []*proof.BatchProof
}

// ensureKey derives the layer's key pair if it does not exist yet, using
// the witness's keygen shape. Needed after full cache hits, where no stage
// ran and no key was derived, but the proof artifact still records the
// verifying key.
func (p *Prover) ensureKey(layer config.LayerID, w circuit.Witness) (*params.ProvingKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, err := p.paramsFor(layer)
	if err != nil {
		return nil, err
	}
	return p.provingKeyFor(layer, set, w)
}

// GenChunkProof runs the chunk pipeline: inner super circuit, then the
// layer1 and layer2 compressions, producing the persisted chunk proof.
// Every stage is cached under the task's instance id.
func (p *Prover) GenChunkProof(task *ChunkProvingTask, outputDir string) (*proof.ChunkProof, error) {
	id := task.InstanceID

	inner, err := p.loadOrGenSnark(StageInner, id, config.LayerInner.String(), task.Witness, outputDir)
	if err != nil {
		return nil, err
	}

	w1 := &circuit.CompressionWitness{
		LayerID:   config.Layer1,
		Shape:     p.cfg.Shape(config.Layer1),
		PrevSnark: inner,
	}
	l1, err := p.loadOrGenSnark(StageCompression, id, config.Layer1.String(), w1, outputDir)
	if err != nil {
		return nil, err
	}

	w2 := &circuit.CompressionWitness{
		LayerID:            config.Layer2,
		Shape:              p.cfg.Shape(config.Layer2),
		PrevSnark:          l1,
		PrevHasAccumulator: true,
	}
	l2, err := p.loadOrGenSnark(StageCompression, id, config.Layer2.String(), w2, outputDir)
	if err != nil {
		return nil, err
	}

	pk, err := p.ensureKey(config.Layer2, w2)
	if err != nil {
		return nil, err
	}
	return proof.NewChunkProof(l2, pk, task.Witness.ChunkInfo, task.Kind)
}

// GenBatchProof runs the batch pipeline: it rebuilds the chunk snarks,
// derives the blob consistency witness binding the payload to its on-chain
// commitment, aggregates at layer3 and compresses at layer4. Chunk
// protocols are pinned per proving route to the first proof of that route.
func (p *Prover) GenBatchProof(task *BatchProvingTask, outputDir string) (*proof.BatchProof, error) {
	id := task.InstanceID

	snarks := make([]*snark.Snark, len(task.ChunkProofs))
	kinds := make([]batch.ChunkKind, len(task.ChunkProofs))
	expected := make(map[batch.ChunkKind]*snark.Protocol)
	for i, cp := range task.ChunkProofs {
		s, err := cp.ToSnark()
		if err != nil {
			return nil, fmt.Errorf("chunk proof %d: %w", i, err)
		}
		snarks[i] = s
		kinds[i] = cp.ChunkKind
		if _, ok := expected[cp.ChunkKind]; !ok {
			expected[cp.ChunkKind] = s.Protocol
		}
	}

	blobWitness, err := blob.NewConsistencyWitness(blob.EncodePayload(task.BlobBytes), task.Header)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", id, err)
	}

	aggWitness := &circuit.AggregationWitness{
		Shape:             p.cfg.Shape(config.Layer3),
		Header:            task.Header,
		BlobWitness:       blobWitness,
		ChunkSnarks:       snarks,
		ChunkKinds:        kinds,
		ExpectedProtocols: expected,
	}
	l3, err := p.LoadOrGenAggregationSnark(id, config.Layer3.String(), aggWitness, outputDir)
	if err != nil {
		return nil, err
	}

	w4 := &circuit.CompressionWitness{
		LayerID:            config.Layer4,
		Shape:              p.cfg.Shape(config.Layer4),
		PrevSnark:          l3,
		PrevHasAccumulator: true,
	}
	l4, err := p.loadOrGenSnark(StageCompression, id, config.Layer4.String(), w4, outputDir)
	if err != nil {
		return nil, err
	}

	pk, err := p.ensureKey(config.Layer4, w4)
	if err != nil {
		return nil, err
	}
	return proof.NewBatchProof(l4, pk, task.Header.Hash())
}

// GenBundleProof runs the bundle pipeline: the layer5 recursion over the
// batch snarks followed by the layer6 compression into the EVM-verifiable
// form. The final snark is verified in process before it is wrapped, so a
// bad proof never leaves the prover.
func (p *Prover) GenBundleProof(task *BundleProvingTask, outputDir string) (*proof.BundleProof, error) {
	id := task.InstanceID

	snarks := make([]*snark.Snark, len(task.BatchProofs))
	for i, bp := range task.BatchProofs {
		s, err := bp.ToSnark()
		if err != nil {
			return nil, fmt.Errorf("batch proof %d: %w", i, err)
		}
		snarks[i] = s
	}

	l5, err := p.LoadOrGenRecursionSnark(id, config.Layer5.String(), snarks, outputDir)
	if err != nil {
		return nil, err
	}

	w6 := &circuit.CompressionWitness{
		LayerID:            config.Layer6,
		Shape:              p.cfg.Shape(config.Layer6),
		PrevSnark:          l5,
		PrevHasAccumulator: true,
	}
	l6, err := p.loadOrGenSnark(StageCompression, id, config.Layer6.String(), w6, outputDir)
	if err != nil {
		return nil, err
	}

	pk, err := p.ensureKey(config.Layer6, w6)
	if err != nil {
		return nil, err
	}

	set, err := p.paramsFor(config.Layer6)
	if err != nil {
		return nil, err
	}
	if !p.adapter.Verify(set, pk.VK, l6) {
		return nil, fmt.Errorf("bundle %s: final snark failed in-process verification", id)
	}
	return proof.NewBundleProof(l6, pk)
}
