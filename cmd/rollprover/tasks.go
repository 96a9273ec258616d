package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rollprover/rollprover/batch"
	"github.com/rollprover/rollprover/circuit"
	"github.com/rollprover/rollprover/proof"
	"github.com/rollprover/rollprover/prover"
)

// chunkTaskFile is the JSON schema of a chunk task.
type chunkTaskFile struct {
	InstanceID string           `json:"instance_id"`
	Kind       string           `json:"kind"`
	ChunkInfo  *batch.ChunkInfo `json:"chunk_info"`
	Traces     []byte           `json:"traces"`
}

// batchTaskFile is the JSON schema of a batch task. Chunk proofs are
// picked up from earlier dumps in the output directory by suffix.
type batchTaskFile struct {
	InstanceID    string        `json:"instance_id"`
	Header        *batch.Header `json:"header"`
	Blob          []byte        `json:"blob"`
	ChunkSuffixes []string      `json:"chunk_suffixes"`
}

// bundleTaskFile is the JSON schema of a bundle task.
type bundleTaskFile struct {
	InstanceID    string   `json:"instance_id"`
	BatchSuffixes []string `json:"batch_suffixes"`
}

// verifyTaskFile is the JSON schema of a verify task.
type verifyTaskFile struct {
	BundleSuffix string `json:"bundle_suffix"`
}

func readTask(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read task file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse task file %s: %w", path, err)
	}
	return nil
}

func parseChunkKind(s string) (batch.ChunkKind, error) {
	switch s {
	case "", batch.ChunkKindHalo2.String():
		return batch.ChunkKindHalo2, nil
	case batch.ChunkKindSp1.String():
		return batch.ChunkKindSp1, nil
	default:
		return 0, fmt.Errorf("unknown chunk kind %q", s)
	}
}

func loadChunkTask(path string) (*prover.ChunkProvingTask, error) {
	var t chunkTaskFile
	if err := readTask(path, &t); err != nil {
		return nil, err
	}
	kind, err := parseChunkKind(t.Kind)
	if err != nil {
		return nil, err
	}
	if t.ChunkInfo == nil {
		return nil, fmt.Errorf("task file %s: missing chunk_info", path)
	}
	return &prover.ChunkProvingTask{
		InstanceID: t.InstanceID,
		Witness:    &circuit.InnerWitness{ChunkInfo: t.ChunkInfo, Traces: t.Traces},
		Kind:       kind,
	}, nil
}

func loadBatchTask(path, outDir string) (*prover.BatchProvingTask, error) {
	var t batchTaskFile
	if err := readTask(path, &t); err != nil {
		return nil, err
	}
	if t.Header == nil {
		return nil, fmt.Errorf("task file %s: missing header", path)
	}
	chunkProofs := make([]*proof.ChunkProof, len(t.ChunkSuffixes))
	for i, suffix := range t.ChunkSuffixes {
		cp, err := proof.ReadChunkProof(outDir, suffix)
		if err != nil {
			return nil, err
		}
		chunkProofs[i] = cp
	}
	return &prover.BatchProvingTask{
		InstanceID:  t.InstanceID,
		ChunkProofs: chunkProofs,
		Header:      t.Header,
		BlobBytes:   t.Blob,
	}, nil
}

func loadBundleTask(path, outDir string) (*prover.BundleProvingTask, error) {
	var t bundleTaskFile
	if err := readTask(path, &t); err != nil {
		return nil, err
	}
	batchProofs := make([]*proof.BatchProof, len(t.BatchSuffixes))
	for i, suffix := range t.BatchSuffixes {
		bp, err := proof.ReadBatchProof(outDir, suffix)
		if err != nil {
			return nil, err
		}
		batchProofs[i] = bp
	}
	return &prover.BundleProvingTask{InstanceID: t.InstanceID, BatchProofs: batchProofs}, nil
}
