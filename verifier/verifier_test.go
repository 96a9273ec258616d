package verifier

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rollprover/rollprover/batch"
	"github.com/rollprover/rollprover/circuit"
	"github.com/rollprover/rollprover/circuit/mockcircuit"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/params"
)

func writeAssets(t *testing.T, degree uint32) string {
	t.Helper()
	dir := t.TempDir()
	for _, layer := range config.AllLayers {
		if !layer.HasShapeConfig() {
			continue
		}
		data, err := json.Marshal(&config.ShapeParams{Degree: degree})
		if err != nil {
			t.Fatalf("marshal shape: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, layer.ConfigFilename()), data, 0o644); err != nil {
			t.Fatalf("write shape: %v", err)
		}
	}
	return dir
}

func testParamsMap(t *testing.T, cfg *config.Config) params.Map {
	t.Helper()
	dir := t.TempDir()
	degrees := append(cfg.ChunkDegrees(), cfg.BatchDegrees()...)
	for _, d := range degrees {
		if err := os.WriteFile(filepath.Join(dir, params.ParamsFilename(d)), []byte("srs"), 0o644); err != nil {
			t.Fatalf("write params: %v", err)
		}
	}
	pm, err := params.LoadMap(dir, degrees)
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	return pm
}

func TestVerifierAcceptsAndRejects(t *testing.T) {
	adapter := &mockcircuit.Adapter{}
	set := &params.Params{Degree: 20, Raw: []byte("srs")}
	w := &circuit.InnerWitness{ChunkInfo: &batch.ChunkInfo{ChainID: 1}, Traces: []byte("traces")}

	pk, err := adapter.Keygen(set, w)
	if err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	s, err := adapter.Prove(set, pk, w)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	v := New(config.LayerInner, set, pk.VK, adapter)
	if !v.Verify(s) {
		t.Error("valid snark rejected")
	}

	tampered := *s
	tampered.Proof = append([]byte(nil), s.Proof...)
	tampered.Proof[0] ^= 0xff
	if v.Verify(&tampered) {
		t.Error("tampered snark accepted")
	}
}

func TestChunkVerifierFromAssets(t *testing.T) {
	assets := writeAssets(t, 21)
	cfg, err := config.Load(assets)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	pm := testParamsMap(t, cfg)
	adapter := &mockcircuit.Adapter{}

	// Key asset absent: construction must fail with the not-found error.
	_, err = NewChunkVerifier(cfg, pm, adapter)
	var notFound *params.VerifyingKeyNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected VerifyingKeyNotFoundError, got %v", err)
	}
	if notFound.Layer != config.Layer2 {
		t.Errorf("not-found layer: got %s, want %s", notFound.Layer, config.Layer2)
	}

	if err := os.WriteFile(filepath.Join(assets, ChunkVKFilename), []byte("chunk-vk"), 0o644); err != nil {
		t.Fatalf("write vk: %v", err)
	}
	v, err := NewChunkVerifier(cfg, pm, adapter)
	if err != nil {
		t.Fatalf("NewChunkVerifier: %v", err)
	}
	if v.Layer() != config.Layer2 {
		t.Errorf("layer: got %s, want %s", v.Layer(), config.Layer2)
	}
	if string(v.VerifyingKey().Raw) != "chunk-vk" {
		t.Error("verifying key bytes not loaded from asset")
	}
}

func TestBatchVerifierFromAssets(t *testing.T) {
	assets := writeAssets(t, 21)
	cfg, err := config.Load(assets)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(assets, BatchVKFilename), []byte("batch-vk"), 0o644); err != nil {
		t.Fatalf("write vk: %v", err)
	}
	v, err := NewBatchVerifier(cfg, testParamsMap(t, cfg), &mockcircuit.Adapter{})
	if err != nil {
		t.Fatalf("NewBatchVerifier: %v", err)
	}
	if v.Layer() != config.Layer4 {
		t.Errorf("layer: got %s, want %s", v.Layer(), config.Layer4)
	}
}
