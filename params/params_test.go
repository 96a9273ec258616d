package params

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rollprover/rollprover/config"
)

func TestLoadMap(t *testing.T) {
	dir := t.TempDir()
	for _, degree := range []uint32{20, 26} {
		if err := os.WriteFile(filepath.Join(dir, ParamsFilename(degree)), []byte{byte(degree)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := LoadMap(dir, []uint32{20, 26, 20})
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(m) != 2 {
		t.Errorf("map size: got %d, want 2", len(m))
	}
	p, err := m.Get(26)
	if err != nil {
		t.Fatalf("Get(26): %v", err)
	}
	if p.Degree != 26 || len(p.Raw) != 1 {
		t.Errorf("params: got %+v", p)
	}
	if _, err := m.Get(21); err == nil {
		t.Error("Get for an unloaded degree should fail")
	}
}

func TestLoadMapMissingFile(t *testing.T) {
	if _, err := LoadMap(t.TempDir(), []uint32{20}); err == nil {
		t.Error("LoadMap should fail when a params file is missing")
	}
}

func TestReadVerifyingKeyNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vk_chunk.vkey")
	_, err := ReadVerifyingKey(config.Layer2, path)

	var notFound *VerifyingKeyNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected VerifyingKeyNotFoundError, got %v", err)
	}
	if notFound.Layer != config.Layer2 {
		t.Errorf("error layer: got %s, want layer2", notFound.Layer)
	}
}

func TestCheckStability(t *testing.T) {
	vk := &VerifyingKey{Layer: config.Layer4, Raw: []byte("vk bytes")}

	if err := vk.CheckStability(vk.Digest()); err != nil {
		t.Errorf("matching digest: unexpected error %v", err)
	}
	if err := vk.CheckStability(common.Hash{}); err != nil {
		t.Errorf("zero digest disables the check, got %v", err)
	}

	err := vk.CheckStability(common.HexToHash("0x01"))
	var mismatch *VerifyingKeyMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected VerifyingKeyMismatchError, got %v", err)
	}
	if mismatch.Layer != config.Layer4 {
		t.Errorf("error layer: got %s, want layer4", mismatch.Layer)
	}
}
