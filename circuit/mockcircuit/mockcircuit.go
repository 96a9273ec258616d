// Package mockcircuit provides a deterministic, dependency-free circuit
// adapter for tests and dry runs. Proof bytes, instances and keys are
// keccak-derived from the inputs, so the pipeline's orchestration behavior
// (caching, key bootstrap, recursion, serialization) is exercised end to
// end without a real proof system. Proofs verify by recomputation and offer
// no cryptographic soundness.
package mockcircuit

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rollprover/rollprover/circuit"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

// proofLen is the byte length of mock proofs.
const proofLen = 192

// Adapter is a deterministic circuit adapter. The zero value is ready to
// use. ProveCalls counts Prove invocations, which tests use as a cache
// probe.
type Adapter struct {
	ProveCalls atomic.Int64
}

var _ circuit.Adapter = (*Adapter)(nil)

func vkBytes(layer config.LayerID, degree uint32) []byte {
	return crypto.Keccak256([]byte("mock-vk"), []byte(layer.String()), []byte{
		byte(degree >> 24), byte(degree >> 16), byte(degree >> 8), byte(degree),
	})
}

func protocolDigest(vkRaw []byte) common.Hash {
	return crypto.Keccak256Hash([]byte("mock-protocol"), vkRaw)
}

// expand derives n field elements from a seed digest.
func expand(seed common.Hash, n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i].SetBytes(crypto.Keccak256(seed.Bytes(), []byte{byte(i)}))
	}
	return out
}

func instancesDigest(instances [][]fr.Element) (common.Hash, error) {
	encoded, err := snark.EncodeInstances(instances)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

// proofBytes derives the mock proof from the verifying key and the public
// inputs, so Verify can recompute it.
func proofBytes(vkRaw []byte, instances [][]fr.Element) ([]byte, error) {
	digest, err := instancesDigest(instances)
	if err != nil {
		return nil, err
	}
	seed := crypto.Keccak256Hash([]byte("mock-proof"), vkRaw, digest.Bytes())
	out := make([]byte, 0, proofLen)
	for len(out) < proofLen {
		seed = crypto.Keccak256Hash(seed.Bytes())
		out = append(out, seed.Bytes()...)
	}
	return out[:proofLen], nil
}

func (a *Adapter) protocol(layer config.LayerID, degree uint32, vkRaw []byte, numInstance int) *snark.Protocol {
	return &snark.Protocol{
		Layer:            layer.String(),
		Degree:           degree,
		NumInstance:      []int{numInstance},
		TranscriptDigest: protocolDigest(vkRaw),
	}
}

// Keygen derives the layer's key pair. Keys depend only on the layer and
// parameter set, so repeated derivations are stable across runs.
func (a *Adapter) Keygen(p *params.Params, w circuit.Witness) (*params.ProvingKey, error) {
	raw := vkBytes(w.Layer(), p.Degree)
	vk := &params.VerifyingKey{Layer: w.Layer(), Raw: raw}
	return &params.ProvingKey{
		VK:  vk,
		Raw: crypto.Keccak256([]byte("mock-pk"), raw),
	}, nil
}

// Prove produces a deterministic snark for the witness.
func (a *Adapter) Prove(p *params.Params, pk *params.ProvingKey, w circuit.Witness) (*snark.Snark, error) {
	a.ProveCalls.Add(1)

	var app []fr.Element
	switch w := w.(type) {
	case *circuit.InnerWitness:
		app = expand(w.Digest(), 4)

	case *circuit.CompressionWitness:
		prev := w.PrevSnark.Instances[0]
		if w.PrevHasAccumulator {
			if len(prev) < snark.NumAccumulatorInstances {
				return nil, fmt.Errorf("compression witness at %s: input has %d instances, fewer than the accumulator width", w.LayerID, len(prev))
			}
			app = prev[snark.NumAccumulatorInstances:]
		} else {
			app = prev
		}

	case *circuit.AggregationWitness:
		if err := w.CheckChunkProtocols(); err != nil {
			return nil, err
		}
		seedParts := [][]byte{w.Header.Hash().Bytes()}
		if w.BlobWitness != nil {
			seedParts = append(seedParts, w.BlobWitness.ID().Bytes())
			proof := w.BlobWitness.BlobDataProof()
			seedParts = append(seedParts, proof[0].Bytes(), proof[1].Bytes())
		}
		app = expand(crypto.Keccak256Hash(seedParts...), snark.NumBundlePublicInputs)

	case *circuit.RecursionWitness:
		app = make([]fr.Element, snark.NumBundlePublicInputs)
		app[0].SetBytes(crypto.Keccak256([]byte("mock-preprocessed"), pk.VK.Raw))
		app[1].SetUint64(uint64(w.Round) + 1)
		folded := expand(crypto.Keccak256Hash(w.PrevSnark.Proof, w.BatchSnark.Proof), snark.NumBundlePublicInputs-2)
		copy(app[2:], folded)

	default:
		return nil, fmt.Errorf("mock adapter: unsupported witness type %T", w)
	}

	instances := app
	if w.Layer().HasAccumulator() {
		acc := expand(crypto.Keccak256Hash([]byte("mock-accumulator"), w.Digest().Bytes()), snark.NumAccumulatorInstances)
		instances = append(acc, app...)
	}
	matrix := [][]fr.Element{instances}

	proof, err := proofBytes(pk.VK.Raw, matrix)
	if err != nil {
		return nil, err
	}
	return &snark.Snark{
		Protocol:  a.protocol(w.Layer(), p.Degree, pk.VK.Raw, len(instances)),
		Proof:     proof,
		Instances: matrix,
	}, nil
}

// Verify recomputes the proof bytes from the verifying key and the snark's
// instances.
func (a *Adapter) Verify(p *params.Params, vk *params.VerifyingKey, s *snark.Snark) bool {
	if s.Protocol == nil || s.Protocol.TranscriptDigest != protocolDigest(vk.Raw) {
		return false
	}
	expected, err := proofBytes(vk.Raw, s.Instances)
	if err != nil {
		return false
	}
	return bytes.Equal(expected, s.Proof)
}

// InitialRecursionSnark returns the recursion seed. With vk == nil the
// placeholder for key generation: a designated all-zero instance vector and
// a zero protocol digest, never to be treated as a real proof. With the
// real verifying key, the legitimate seed whose first instance is the
// preprocessed-state digest.
func (a *Adapter) InitialRecursionSnark(p *params.Params, shape *config.ShapeParams, vk *params.VerifyingKey) (*snark.Snark, error) {
	instances := make([]fr.Element, snark.NumBundlePublicInputs)
	if vk == nil {
		return &snark.Snark{
			Protocol: &snark.Protocol{
				Layer:       config.Layer5.String(),
				Degree:      p.Degree,
				NumInstance: []int{snark.NumBundlePublicInputs},
			},
			Proof:     make([]byte, 32),
			Instances: [][]fr.Element{instances},
		}, nil
	}

	instances[0].SetBytes(crypto.Keccak256([]byte("mock-preprocessed"), vk.Raw))
	matrix := [][]fr.Element{instances}
	proof, err := proofBytes(vk.Raw, matrix)
	if err != nil {
		return nil, err
	}
	return &snark.Snark{
		Protocol:  a.protocol(config.Layer5, p.Degree, vk.Raw, snark.NumBundlePublicInputs),
		Proof:     proof,
		Instances: matrix,
	}, nil
}
