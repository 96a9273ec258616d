package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultInnerDegree is the circuit-size parameter (k) of the inner super
// circuit when no override is supplied. Every other layer's degree comes
// from its shape config file.
const DefaultInnerDegree = 20

// ShapeParams describes the shape of a composed circuit: its size parameter
// and the column counts the external circuit implementation is built with.
// The JSON field names follow the asset file format.
type ShapeParams struct {
	// Degree is the circuit-size parameter k; the proof-system parameter
	// set for 2^k rows.
	Degree uint32 `json:"degree"`
	// NumAdvice holds per-phase advice column counts.
	NumAdvice []uint32 `json:"num_advice"`
	// NumLookupAdvice holds per-phase lookup advice column counts.
	NumLookupAdvice []uint32 `json:"num_lookup_advice"`
	// NumFixed is the number of fixed columns.
	NumFixed uint32 `json:"num_fixed"`
	// LookupBits is the bit width of range lookups.
	LookupBits uint32 `json:"lookup_bits"`
	// LimbBits is the bit width of non-native arithmetic limbs.
	LimbBits uint32 `json:"limb_bits"`
	// NumLimbs is the number of limbs per non-native field element.
	NumLimbs uint32 `json:"num_limbs"`
}

// Config carries the per-layer pipeline configuration, resolved once at
// startup. It replaces any process-wide "current configuration" slot: stage
// invocations receive the shape they need explicitly.
type Config struct {
	// AssetsDir is the directory holding layer shape files and verifying
	// key assets.
	AssetsDir string
	// InnerDegree is the degree of the inner super circuit.
	InnerDegree uint32

	shapes map[LayerID]*ShapeParams
}

// Load reads every layer's shape file from assetsDir. A missing or
// malformed shape file is fatal for the corresponding layer and reported
// with the path that failed.
func Load(assetsDir string) (*Config, error) {
	cfg := &Config{
		AssetsDir:   assetsDir,
		InnerDegree: DefaultInnerDegree,
		shapes:      make(map[LayerID]*ShapeParams),
	}
	for _, layer := range AllLayers {
		if !layer.HasShapeConfig() {
			continue
		}
		path := filepath.Join(assetsDir, layer.ConfigFilename())
		shape, err := readShape(path)
		if err != nil {
			return nil, fmt.Errorf("load shape config for %s: %w", layer, err)
		}
		cfg.shapes[layer] = shape
	}
	return cfg, nil
}

func readShape(path string) (*ShapeParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var shape ShapeParams
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if shape.Degree == 0 {
		return nil, fmt.Errorf("parse %s: zero degree", path)
	}
	return &shape, nil
}

// Shape returns the shape parameters of the given layer. The inner layer
// has no shape config and returns nil.
func (c *Config) Shape(layer LayerID) *ShapeParams {
	return c.shapes[layer]
}

// Degree returns the circuit-size parameter of the given layer.
func (c *Config) Degree(layer LayerID) uint32 {
	if layer == LayerInner {
		return c.InnerDegree
	}
	if shape, ok := c.shapes[layer]; ok {
		return shape.Degree
	}
	return 0
}

// ChunkDegrees returns the set of degrees covered by the chunk prover
// (inner through layer2), deduplicated.
func (c *Config) ChunkDegrees() []uint32 {
	return dedupDegrees([]uint32{c.Degree(LayerInner), c.Degree(Layer1), c.Degree(Layer2)})
}

// BatchDegrees returns the set of degrees covered by the batch/bundle
// prover (layer3 through layer6), deduplicated.
func (c *Config) BatchDegrees() []uint32 {
	return dedupDegrees([]uint32{
		c.Degree(Layer3), c.Degree(Layer4), c.Degree(Layer5), c.Degree(Layer6),
	})
}

func dedupDegrees(degrees []uint32) []uint32 {
	seen := make(map[uint32]bool, len(degrees))
	var out []uint32
	for _, d := range degrees {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
