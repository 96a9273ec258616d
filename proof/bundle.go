package proof

import (
	"fmt"

	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

const bundleName = "bundle"

// BundleInstanceBytes is the exact instance byte length of a bundle proof:
// 12 accumulator plus 13 application field elements, 32 bytes each. The
// on-chain verifier contract assumes this fixed length; calldata carries
// no length prefix.
const BundleInstanceBytes = snark.NumBundleInstances * snark.InstanceBytes

// BundleProof is the persisted artifact of the outermost layer6 snark, the
// one submitted on chain. It carries no protocol: the verifier contract is
// the protocol.
type BundleProof struct {
	Envelope
}

// NewBundleProof wraps a layer6 snark into its persisted form, checking
// the fixed instance layout.
func NewBundleProof(s *snark.Snark, pk *params.ProvingKey) (*BundleProof, error) {
	envelope, err := newEnvelope(s, pk)
	if err != nil {
		return nil, fmt.Errorf("new bundle proof: %w", err)
	}
	if len(envelope.Instances) != BundleInstanceBytes {
		return nil, &PublicInputsMismatchError{Expected: BundleInstanceBytes, Got: len(envelope.Instances)}
	}
	return &BundleProof{Envelope: envelope}, nil
}

// NewBundleProofFromRaw rebuilds a bundle proof from raw byte fields, e.g.
// out of an externally stored artifact.
func NewBundleProofFromRaw(proofBytes, instances, vk []byte) (*BundleProof, error) {
	if len(instances) != BundleInstanceBytes {
		return nil, &PublicInputsMismatchError{Expected: BundleInstanceBytes, Got: len(instances)}
	}
	return &BundleProof{Envelope: Envelope{
		Proof:      append([]byte(nil), proofBytes...),
		Instances:  append([]byte(nil), instances...),
		VK:         append([]byte(nil), vk...),
		GitVersion: Version,
	}}, nil
}

// Calldata assembles the on-chain verification calldata:
//
//	[ instance bytes | proof bytes ]
//
// with no length prefix or version tag.
func (p *BundleProof) Calldata() []byte {
	out := make([]byte, 0, len(p.Instances)+len(p.Proof))
	out = append(out, p.Instances...)
	out = append(out, p.Proof...)
	return out
}

// Dump writes the proof JSON and its verifying key under dir using the
// bundle naming scheme.
func (p *BundleProof) Dump(dir, suffix string) error {
	if err := writeFile(vkPath(dir, bundleName, suffix), p.VK); err != nil {
		return err
	}
	return writeJSON(proofPath(dir, bundleName, suffix), p)
}

// ReadBundleProof loads a dumped bundle proof.
func ReadBundleProof(dir, suffix string) (*BundleProof, error) {
	var p BundleProof
	if err := readJSON(proofPath(dir, bundleName, suffix), &p); err != nil {
		return nil, err
	}
	if len(p.Instances) != BundleInstanceBytes {
		return nil, &PublicInputsMismatchError{Expected: BundleInstanceBytes, Got: len(p.Instances)}
	}
	return &p, nil
}
