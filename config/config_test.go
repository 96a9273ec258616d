package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeShapeFile(t *testing.T, dir string, layer LayerID, degree uint32) {
	t.Helper()
	shape := ShapeParams{
		Degree:          degree,
		NumAdvice:       []uint32{59, 1},
		NumLookupAdvice: []uint32{9},
		NumFixed:        1,
		LookupBits:      18,
		LimbBits:        88,
		NumLimbs:        3,
	}
	data, err := json.Marshal(&shape)
	if err != nil {
		t.Fatalf("marshal shape: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, layer.ConfigFilename()), data, 0o644); err != nil {
		t.Fatalf("write shape: %v", err)
	}
}

func writeAllShapeFiles(t *testing.T, dir string) {
	t.Helper()
	degrees := map[LayerID]uint32{
		Layer1: 26, Layer2: 26, Layer3: 21, Layer4: 26, Layer5: 21, Layer6: 26,
	}
	for layer, degree := range degrees {
		writeShapeFile(t, dir, layer, degree)
	}
}

func TestLayerIdentifiers(t *testing.T) {
	want := map[LayerID]string{
		LayerInner: "inner",
		Layer1:     "layer1",
		Layer2:     "layer2",
		Layer3:     "layer3",
		Layer4:     "layer4",
		Layer5:     "layer5",
		Layer6:     "layer6",
	}
	for layer, id := range want {
		if got := layer.String(); got != id {
			t.Errorf("LayerID(%d).String(): got %q, want %q", layer, got, id)
		}
	}
}

func TestAccumulatorOnEveryComposedLayer(t *testing.T) {
	for _, layer := range AllLayers {
		want := layer != LayerInner
		if got := layer.HasAccumulator(); got != want {
			t.Errorf("%s.HasAccumulator(): got %v, want %v", layer, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeAllShapeFiles(t, dir)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Degree(LayerInner); got != DefaultInnerDegree {
		t.Errorf("inner degree: got %d, want %d", got, DefaultInnerDegree)
	}
	if got := cfg.Degree(Layer3); got != 21 {
		t.Errorf("layer3 degree: got %d, want 21", got)
	}
	if cfg.Shape(LayerInner) != nil {
		t.Error("inner layer should have no shape config")
	}
	if shape := cfg.Shape(Layer4); shape == nil || shape.Degree != 26 {
		t.Errorf("layer4 shape: got %+v", shape)
	}
}

func TestLoadMissingShapeFileFatal(t *testing.T) {
	dir := t.TempDir()
	writeAllShapeFiles(t, dir)
	if err := os.Remove(filepath.Join(dir, Layer5.ConfigFilename())); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("Load should fail when a layer shape file is missing")
	}
}

func TestLoadRejectsZeroDegree(t *testing.T) {
	dir := t.TempDir()
	writeAllShapeFiles(t, dir)
	if err := os.WriteFile(filepath.Join(dir, Layer1.ConfigFilename()), []byte(`{"degree":0}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("Load should reject a zero degree shape")
	}
}

func TestDegreeSetsDeduplicated(t *testing.T) {
	dir := t.TempDir()
	writeAllShapeFiles(t, dir)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	chunk := cfg.ChunkDegrees()
	if len(chunk) != 2 { // inner=20, layer1=layer2=26
		t.Errorf("chunk degrees: got %v, want 2 unique values", chunk)
	}
	batch := cfg.BatchDegrees()
	if len(batch) != 2 { // layer3=layer5=21, layer4=layer6=26
		t.Errorf("batch degrees: got %v, want 2 unique values", batch)
	}
}
