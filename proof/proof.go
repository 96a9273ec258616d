// Package proof defines the persisted proof artifacts produced at the
// pipeline's checkpoints: chunk proofs (layer2), batch proofs (layer4) and
// bundle proofs (layer6). Artifacts are JSON envelopes with base64-encoded
// byte fields, dumped alongside their verifying key and protocol under
// stable file names.
package proof

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

// Version is the build provenance string recorded in every dumped proof.
// Overridden at build time:
//
//	go build -ldflags "-X github.com/rollprover/rollprover/proof.Version=$(git describe --always)"
var Version = "unknown"

// Envelope is the layer-independent part of a persisted proof: raw proof
// bytes, canonically encoded public inputs, the serialized verifying key
// and the build that produced it. []byte fields marshal as base64 strings,
// keeping the JSON dumps compact.
type Envelope struct {
	Proof      []byte `json:"proof"`
	Instances  []byte `json:"instances"`
	VK         []byte `json:"vk"`
	GitVersion string `json:"git_version"`
}

func newEnvelope(s *snark.Snark, pk *params.ProvingKey) (Envelope, error) {
	instances, err := snark.EncodeInstances(s.Instances)
	if err != nil {
		return Envelope{}, err
	}
	var vk []byte
	if pk != nil {
		vk = pk.VK.Raw
	}
	return Envelope{
		Proof:      s.Proof,
		Instances:  instances,
		VK:         vk,
		GitVersion: Version,
	}, nil
}

// PublicInputsMismatchError reports that a reconstructed proof's instance
// byte length disagrees with the statically expected length. Structural
// corruption, fatal.
type PublicInputsMismatchError struct {
	Expected int
	Got      int
}

func (e *PublicInputsMismatchError) Error() string {
	return fmt.Sprintf("number of instance bytes in bundle proof mismatch: expected=%d, got=%d",
		e.Expected, e.Got)
}

// proofPath, vkPath and protocolPath fix the dump file naming:
//
//	<dir>/proof_{name}_{suffix}.json
//	<dir>/vk_{name}_{suffix}.vkey
//	<dir>/protocol_{name}_{suffix}.protocol
func proofPath(dir, name, suffix string) string {
	return filepath.Join(dir, fmt.Sprintf("proof_%s_%s.json", name, suffix))
}

func vkPath(dir, name, suffix string) string {
	return filepath.Join(dir, fmt.Sprintf("vk_%s_%s.vkey", name, suffix))
}

func protocolPath(dir, name, suffix string) string {
	return filepath.Join(dir, fmt.Sprintf("protocol_%s_%s.protocol", name, suffix))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return writeFile(path, data)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
