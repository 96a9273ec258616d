// Package params loads and holds the proof-system parameter sets and the
// per-layer proving/verifying keys. Parameter sets are keyed by degree and
// loaded once at startup; the resulting map is read-only and safe to share
// across concurrent provers.
package params

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rollprover/rollprover/config"
)

// Params is one trusted-setup parameter set, sufficient for circuits of up
// to 2^Degree rows. The bytes are opaque to this pipeline; only the
// external circuit adapter interprets them.
type Params struct {
	Degree uint32
	Raw    []byte
}

// Map holds parameter sets keyed by degree.
type Map map[uint32]*Params

// ParamsFilename returns the on-disk file name for the parameter set of
// the given degree.
func ParamsFilename(degree uint32) string {
	return fmt.Sprintf("params%d", degree)
}

// LoadMap reads the parameter sets for every requested degree from dir.
// A missing parameter file is fatal: proof generation cannot proceed
// without its trusted setup.
func LoadMap(dir string, degrees []uint32) (Map, error) {
	m := make(Map, len(degrees))
	for _, degree := range degrees {
		if _, ok := m[degree]; ok {
			continue
		}
		path := filepath.Join(dir, ParamsFilename(degree))
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load params for degree %d: read %s: %w", degree, path, err)
		}
		m[degree] = &Params{Degree: degree, Raw: raw}
	}
	return m, nil
}

// Get returns the parameter set for the given degree.
func (m Map) Get(degree uint32) (*Params, error) {
	p, ok := m[degree]
	if !ok {
		return nil, fmt.Errorf("no params loaded for degree %d", degree)
	}
	return p, nil
}

// VerifyingKey is the verification half of a layer's key material. It is
// derived once per layer per parameter set and expected to be stable
// across runs.
type VerifyingKey struct {
	Layer config.LayerID
	Raw   []byte
}

// Digest returns the keccak256 digest identifying the key, used for
// stability checks across runs.
func (vk *VerifyingKey) Digest() common.Hash {
	return crypto.Keccak256Hash(vk.Raw)
}

// ProvingKey is the proving half of a layer's key material, carrying its
// verifying key.
type ProvingKey struct {
	VK  *VerifyingKey
	Raw []byte
}

// VerifyingKeyNotFoundError reports that an expected verifying key asset
// was absent. Distinct from a digest mismatch: absence is a startup/
// environment problem, mismatch signals version drift.
type VerifyingKeyNotFoundError struct {
	Layer config.LayerID
	Path  string
}

func (e *VerifyingKeyNotFoundError) Error() string {
	return fmt.Sprintf("verifying key not found: layer=%s, path=%s", e.Layer, e.Path)
}

// VerifyingKeyMismatchError reports that a freshly derived verifying key
// disagrees with a previously trusted one for the same layer. Fatal, never
// retried.
type VerifyingKeyMismatchError struct {
	Layer    config.LayerID
	Expected common.Hash
	Found    common.Hash
}

func (e *VerifyingKeyMismatchError) Error() string {
	return fmt.Sprintf("verifying key mismatch: layer=%s, expected=%s, found=%s",
		e.Layer, e.Expected.Hex(), e.Found.Hex())
}

// ReadVerifyingKey loads a verifying key from the given asset path.
func ReadVerifyingKey(layer config.LayerID, path string) (*VerifyingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &VerifyingKeyNotFoundError{Layer: layer, Path: path}
		}
		return nil, fmt.Errorf("read verifying key %s: %w", path, err)
	}
	return &VerifyingKey{Layer: layer, Raw: raw}, nil
}

// CheckStability compares a freshly derived verifying key against an
// expected digest. A zero expected digest disables the check.
func (vk *VerifyingKey) CheckStability(expected common.Hash) error {
	if expected == (common.Hash{}) {
		return nil
	}
	if found := vk.Digest(); found != expected {
		return &VerifyingKeyMismatchError{Layer: vk.Layer, Expected: expected, Found: found}
	}
	return nil
}
