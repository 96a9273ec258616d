// Package prover orchestrates the proof-composition pipeline: it drives
// the circuit adapter through the inner, compression, aggregation and
// recursion stages, caching every generated snark on disk and deriving
// proving keys on first use.
package prover

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rollprover/rollprover/circuit"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/log"
	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

// Prover drives the pipeline stages against one circuit adapter. Key
// material is derived lazily per layer and memoized for the prover's
// lifetime.
//
// A Prover runs one proof construction at a time; concurrent callers are
// serialized on an internal mutex. Run independent provers for parallelism.
type Prover struct {
	cfg     *config.Config
	params  params.Map
	adapter circuit.Adapter
	log     *log.Logger

	// expectedVK pins the digest each layer's derived verifying key must
	// match. Layers without an entry skip the stability check.
	expectedVK map[config.LayerID]common.Hash

	mu   sync.Mutex
	keys map[config.LayerID]*params.ProvingKey
}

// New builds a Prover over the given configuration, parameter map and
// circuit adapter.
func New(cfg *config.Config, pm params.Map, adapter circuit.Adapter) *Prover {
	return &Prover{
		cfg:        cfg,
		params:     pm,
		adapter:    adapter,
		log:        log.Default().Module("prover"),
		expectedVK: make(map[config.LayerID]common.Hash),
		keys:       make(map[config.LayerID]*params.ProvingKey),
	}
}

// ExpectVerifyingKey pins the digest the given layer's derived verifying
// key must match. Derivation of a key with a different digest fails with
// VerifyingKeyMismatchError.
func (p *Prover) ExpectVerifyingKey(layer config.LayerID, digest common.Hash) {
	p.expectedVK[layer] = digest
}

// VerifyingKey returns the verifying key of the given layer if its key
// pair has been derived.
func (p *Prover) VerifyingKey(layer config.LayerID) *params.VerifyingKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pk, ok := p.keys[layer]; ok {
		return pk.VK
	}
	return nil
}

// paramsFor resolves the parameter set for a layer's degree.
func (p *Prover) paramsFor(layer config.LayerID) (*params.Params, error) {
	degree := p.cfg.Degree(layer)
	set, err := p.params.Get(degree)
	if err != nil {
		return nil, fmt.Errorf("params for %s: %w", layer, err)
	}
	return set, nil
}

// provingKeyFor returns the layer's proving key, deriving it on first use
// from the witness's keygen shape. Callers hold p.mu.
func (p *Prover) provingKeyFor(layer config.LayerID, set *params.Params, w circuit.Witness) (*params.ProvingKey, error) {
	if pk, ok := p.keys[layer]; ok {
		return pk, nil
	}
	p.log.Info("deriving key pair", "layer", layer.String(), "degree", set.Degree)
	pk, err := p.adapter.Keygen(set, w.Dummy())
	if err != nil {
		return nil, fmt.Errorf("keygen for %s: %w", layer, err)
	}
	if expected, ok := p.expectedVK[layer]; ok {
		if err := pk.VK.CheckStability(expected); err != nil {
			return nil, err
		}
	}
	p.keys[layer] = pk
	return pk, nil
}

// loadOrGenSnark is the cache-first stage driver: it returns the cached
// snark for the (kind, instanceID, name) key if present, otherwise proves
// the witness and persists the result. An empty outputDir disables the
// cache entirely.
func (p *Prover) loadOrGenSnark(kind StageKind, instanceID, name string, w circuit.Witness, outputDir string) (*snark.Snark, error) {
	layer := w.Layer()

	if outputDir != "" {
		path := CachePath(outputDir, kind, instanceID, name)
		cached, err := readCachedSnark(path)
		if err != nil {
			return nil, fmt.Errorf("%s stage %s/%s: %w", layer, instanceID, name, err)
		}
		if cached != nil {
			p.log.Info("snark cache hit", "layer", layer.String(), "id", instanceID, "name", name, "path", path)
			return cached, nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	set, err := p.paramsFor(layer)
	if err != nil {
		return nil, err
	}
	pk, err := p.provingKeyFor(layer, set, w)
	if err != nil {
		return nil, fmt.Errorf("%s stage %s/%s: %w", layer, instanceID, name, err)
	}

	p.log.Info("proving", "layer", layer.String(), "id", instanceID, "name", name, "witness", w.Digest().Hex())
	s, err := p.adapter.Prove(set, pk, w)
	if err != nil {
		return nil, fmt.Errorf("%s stage %s/%s: %w", layer, instanceID, name, err)
	}

	if outputDir != "" {
		path := CachePath(outputDir, kind, instanceID, name)
		if err := writeCachedSnark(path, s); err != nil {
			return nil, fmt.Errorf("%s stage %s/%s: %w", layer, instanceID, name, err)
		}
	}
	return s, nil
}

// LoadOrGenInnerSnark runs the inner super circuit over the chunk's
// execution traces, or returns the cached result.
func (p *Prover) LoadOrGenInnerSnark(instanceID, name string, w *circuit.InnerWitness, outputDir string) (*snark.Snark, error) {
	return p.loadOrGenSnark(StageInner, instanceID, name, w, outputDir)
}

// LoadOrGenCompressionSnark compresses prev through the given layer's
// compression circuit, or returns the cached result. The previous snark
// carries an accumulator at every layer except layer1, whose input is the
// inner snark.
func (p *Prover) LoadOrGenCompressionSnark(layer config.LayerID, instanceID, name string, prev *snark.Snark, outputDir string) (*snark.Snark, error) {
	w := &circuit.CompressionWitness{
		LayerID:            layer,
		Shape:              p.cfg.Shape(layer),
		PrevSnark:          prev,
		PrevHasAccumulator: layer != config.Layer1,
	}
	return p.loadOrGenSnark(StageCompression, instanceID, name, w, outputDir)
}

// LoadOrGenAggregationSnark runs the layer3 batch circuit over the chunk
// snarks, or returns the cached result. Chunk protocols are checked
// against the expected protocol of each chunk's proving route before any
// proving work starts.
func (p *Prover) LoadOrGenAggregationSnark(instanceID, name string, w *circuit.AggregationWitness, outputDir string) (*snark.Snark, error) {
	if err := w.CheckChunkProtocols(); err != nil {
		return nil, fmt.Errorf("aggregation stage %s/%s: %w", instanceID, name, err)
	}
	if w.Shape == nil {
		w.Shape = p.cfg.Shape(config.Layer3)
	}
	return p.loadOrGenSnark(StageAggregation, instanceID, name, w, outputDir)
}
