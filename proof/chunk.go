package proof

import (
	"fmt"

	"github.com/rollprover/rollprover/batch"
	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

const chunkName = "chunk"

// ChunkProof is the persisted artifact of the layer2 compression snark:
// the proof over one chunk's execution, its protocol, and the chunk's
// execution summary.
type ChunkProof struct {
	Envelope
	// Protocol is the JSON-encoded structural descriptor of the chunk
	// snark, needed by the aggregation layer to pin every chunk to the
	// same circuit structure.
	Protocol []byte `json:"protocol"`
	// ChunkInfo is the execution summary embedded at proving time.
	ChunkInfo *batch.ChunkInfo `json:"chunk_info"`
	// ChunkKind records the inner proving route.
	ChunkKind batch.ChunkKind `json:"chunk_kind"`
}

// NewChunkProof wraps a layer2 snark into its persisted form.
func NewChunkProof(s *snark.Snark, pk *params.ProvingKey, info *batch.ChunkInfo, kind batch.ChunkKind) (*ChunkProof, error) {
	envelope, err := newEnvelope(s, pk)
	if err != nil {
		return nil, fmt.Errorf("new chunk proof: %w", err)
	}
	protocol, err := s.Protocol.Encode()
	if err != nil {
		return nil, fmt.Errorf("new chunk proof: %w", err)
	}
	return &ChunkProof{
		Envelope:  envelope,
		Protocol:  protocol,
		ChunkInfo: info,
		ChunkKind: kind,
	}, nil
}

// ToSnark reconstructs the snark from the persisted artifact.
func (p *ChunkProof) ToSnark() (*snark.Snark, error) {
	return envelopeToSnark(&p.Envelope, p.Protocol)
}

// Dump writes the proof JSON, its verifying key and its protocol under
// dir using the chunk naming scheme.
func (p *ChunkProof) Dump(dir, suffix string) error {
	if err := writeFile(vkPath(dir, chunkName, suffix), p.VK); err != nil {
		return err
	}
	if err := writeFile(protocolPath(dir, chunkName, suffix), p.Protocol); err != nil {
		return err
	}
	return writeJSON(proofPath(dir, chunkName, suffix), p)
}

// ReadChunkProof loads a dumped chunk proof.
func ReadChunkProof(dir, suffix string) (*ChunkProof, error) {
	var p ChunkProof
	if err := readJSON(proofPath(dir, chunkName, suffix), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func envelopeToSnark(e *Envelope, protocol []byte) (*snark.Snark, error) {
	proto, err := snark.DecodeProtocol(protocol)
	if err != nil {
		return nil, fmt.Errorf("proof protocol not found or undecodable: %w", err)
	}
	instances, err := snark.DecodeInstances(e.Instances)
	if err != nil {
		return nil, err
	}
	if got := len(instances[0]); got != proto.TotalInstances() {
		return nil, &PublicInputsMismatchError{Expected: proto.TotalInstances() * snark.InstanceBytes, Got: got * snark.InstanceBytes}
	}
	return &snark.Snark{Protocol: proto, Proof: e.Proof, Instances: instances}, nil
}
