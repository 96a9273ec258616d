// Package verifier checks persisted proofs outside the proving process:
// chunk and batch proofs against their layer's verifying key through the
// circuit adapter, and bundle proofs by executing the on-chain verifier
// contract in an in-process EVM.
package verifier

import (
	"path/filepath"

	"github.com/rollprover/rollprover/circuit"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/log"
	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

// Asset file names of the trusted verifying keys shipped with a release.
const (
	ChunkVKFilename = "vk_chunk.vkey"
	BatchVKFilename = "vk_batch.vkey"
)

// Verifier checks snarks of one layer against a pinned verifying key.
type Verifier struct {
	layer   config.LayerID
	params  *params.Params
	vk      *params.VerifyingKey
	adapter circuit.Adapter
	log     *log.Logger
}

// New builds a verifier over an already loaded key and parameter set.
func New(layer config.LayerID, set *params.Params, vk *params.VerifyingKey, adapter circuit.Adapter) *Verifier {
	return &Verifier{
		layer:   layer,
		params:  set,
		vk:      vk,
		adapter: adapter,
		log:     log.Default().Module("verifier"),
	}
}

// newFromAssets loads the layer's verifying key from the assets directory
// and resolves its parameter set.
func newFromAssets(cfg *config.Config, pm params.Map, adapter circuit.Adapter, layer config.LayerID, vkFile string) (*Verifier, error) {
	vk, err := params.ReadVerifyingKey(layer, filepath.Join(cfg.AssetsDir, vkFile))
	if err != nil {
		return nil, err
	}
	set, err := pm.Get(cfg.Degree(layer))
	if err != nil {
		return nil, err
	}
	return New(layer, set, vk, adapter), nil
}

// NewChunkVerifier builds the verifier for chunk proofs (layer2 snarks)
// from the release assets. A missing key asset fails with
// VerifyingKeyNotFoundError.
func NewChunkVerifier(cfg *config.Config, pm params.Map, adapter circuit.Adapter) (*Verifier, error) {
	return newFromAssets(cfg, pm, adapter, config.Layer2, ChunkVKFilename)
}

// NewBatchVerifier builds the verifier for batch proofs (layer4 snarks)
// from the release assets.
func NewBatchVerifier(cfg *config.Config, pm params.Map, adapter circuit.Adapter) (*Verifier, error) {
	return newFromAssets(cfg, pm, adapter, config.Layer4, BatchVKFilename)
}

// Layer is the pipeline layer this verifier checks.
func (v *Verifier) Layer() config.LayerID { return v.layer }

// VerifyingKey returns the pinned verifying key.
func (v *Verifier) VerifyingKey() *params.VerifyingKey { return v.vk }

// Verify checks the snark against the pinned verifying key. A false
// return is a plain verification failure.
func (v *Verifier) Verify(s *snark.Snark) bool {
	ok := v.adapter.Verify(v.params, v.vk, s)
	if !ok {
		v.log.Warn("snark rejected", "layer", v.layer.String())
	}
	return ok
}
