package proof

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

const batchName = "batch"

// BatchProof is the persisted artifact of the layer4 compression snark:
// the proof aggregating one batch of chunks, identified by its batch hash.
type BatchProof struct {
	Envelope
	// Protocol is the JSON-encoded structural descriptor of the batch
	// snark, consumed by the recursion layer.
	Protocol []byte `json:"protocol"`
	// BatchHash identifies the batch header this proof covers.
	BatchHash common.Hash `json:"batch_hash"`
}

// NewBatchProof wraps a layer4 snark into its persisted form.
func NewBatchProof(s *snark.Snark, pk *params.ProvingKey, batchHash common.Hash) (*BatchProof, error) {
	envelope, err := newEnvelope(s, pk)
	if err != nil {
		return nil, fmt.Errorf("new batch proof: %w", err)
	}
	protocol, err := s.Protocol.Encode()
	if err != nil {
		return nil, fmt.Errorf("new batch proof: %w", err)
	}
	return &BatchProof{
		Envelope:  envelope,
		Protocol:  protocol,
		BatchHash: batchHash,
	}, nil
}

// ToSnark reconstructs the snark from the persisted artifact.
func (p *BatchProof) ToSnark() (*snark.Snark, error) {
	return envelopeToSnark(&p.Envelope, p.Protocol)
}

// Dump writes the proof JSON, its verifying key and its protocol under
// dir using the batch naming scheme.
func (p *BatchProof) Dump(dir, suffix string) error {
	if err := writeFile(vkPath(dir, batchName, suffix), p.VK); err != nil {
		return err
	}
	if err := writeFile(protocolPath(dir, batchName, suffix), p.Protocol); err != nil {
		return err
	}
	return writeJSON(proofPath(dir, batchName, suffix), p)
}

// ReadBatchProof loads a dumped batch proof.
func ReadBatchProof(dir, suffix string) (*BatchProof, error) {
	var p BatchProof
	if err := readJSON(proofPath(dir, batchName, suffix), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
