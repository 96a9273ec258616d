package prover

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rollprover/rollprover/snark"
)

// StageKind names the cache namespace of a pipeline stage. Together with
// an instance id and artifact name it keys one cached snark on disk.
type StageKind string

const (
	StageInner       StageKind = "inner"
	StageCompression StageKind = "compression"
	StageAggregation StageKind = "aggregation"
	StageRecursion   StageKind = "recursion"
)

// CachePath maps a cache key to its file:
//
//	<dir>/{stageKind}_snark_{instanceID}_{artifactName}.json
func CachePath(dir string, kind StageKind, instanceID, artifactName string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_snark_%s_%s.json", kind, instanceID, artifactName))
}

// readCachedSnark loads a snark from the cache if the key exists. The
// cache is trusted: contents are only structurally decoded, never checked
// against the witness — callers must use a unique artifact name per
// distinct witness. Returns (nil, nil) on a miss.
func readCachedSnark(path string) (*snark.Snark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cached snark %s: %w", path, err)
	}
	var s snark.Snark
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse cached snark %s: %w", path, err)
	}
	return &s, nil
}

// writeCachedSnark persists a snark under the given cache key. Failures
// are reported, not retried.
func writeCachedSnark(path string, s *snark.Snark) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snark for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cached snark %s: %w", path, err)
	}
	return nil
}
