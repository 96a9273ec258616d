// Package batch holds the chunk and batch metadata that travels alongside
// proofs: execution summaries per chunk, batch headers, and the consistency
// checks linking re-executed traces to previously proven ones.
package batch

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChunkKind identifies the proving route of the innermost snark.
type ChunkKind uint8

const (
	// ChunkKindHalo2 marks a chunk proven by the halo2-style super circuit.
	ChunkKindHalo2 ChunkKind = iota
	// ChunkKindSp1 marks a chunk proven by an sp1-style STARK wrapped in a
	// snark backend.
	ChunkKindSp1
)

// String returns the name of the chunk kind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkKindHalo2:
		return "halo2"
	case ChunkKindSp1:
		return "sp1"
	default:
		return "unknown"
	}
}

// ChunkInfo summarizes the EVM execution of one chunk: the state commitment
// before and after, the withdraw root, the digest of the chunk's data and
// the raw L2 transaction bytes.
type ChunkInfo struct {
	ChainID       uint64      `json:"chain_id"`
	PrevStateRoot common.Hash `json:"prev_state_root"`
	PostStateRoot common.Hash `json:"post_state_root"`
	WithdrawRoot  common.Hash `json:"withdraw_root"`
	DataHash      common.Hash `json:"data_hash"`
	TxBytes       []byte      `json:"tx_bytes"`
	// IsPadding marks a filler chunk appended to reach the aggregation
	// arity; padding chunks repeat the last real chunk's state roots.
	IsPadding bool `json:"is_padding"`
}

// Digest commits to the full chunk info. Used as the chunk data digest
// inside batch metadata.
func (c *ChunkInfo) Digest() common.Hash {
	var buf bytes.Buffer
	var chainID [8]byte
	binary.BigEndian.PutUint64(chainID[:], c.ChainID)
	buf.Write(chainID[:])
	buf.Write(c.PrevStateRoot.Bytes())
	buf.Write(c.PostStateRoot.Bytes())
	buf.Write(c.WithdrawRoot.Bytes())
	buf.Write(c.DataHash.Bytes())
	buf.Write(crypto.Keccak256(c.TxBytes))
	return crypto.Keccak256Hash(buf.Bytes())
}

// CompareChunkInfo checks that a chunk info reconstructed by re-executing a
// trace matches the chunk info embedded in a previously generated proof.
// The first differing field is named in the returned error.
func CompareChunkInfo(name string, lhs, rhs *ChunkInfo) error {
	if lhs.ChainID != rhs.ChainID {
		return fmt.Errorf("%s chunk different chain_id: %d != %d", name, lhs.ChainID, rhs.ChainID)
	}
	if lhs.PrevStateRoot != rhs.PrevStateRoot {
		return fmt.Errorf("%s chunk different prev_state_root: %s != %s",
			name, lhs.PrevStateRoot.Hex(), rhs.PrevStateRoot.Hex())
	}
	if lhs.PostStateRoot != rhs.PostStateRoot {
		return fmt.Errorf("%s chunk different post_state_root: %s != %s",
			name, lhs.PostStateRoot.Hex(), rhs.PostStateRoot.Hex())
	}
	if lhs.WithdrawRoot != rhs.WithdrawRoot {
		return fmt.Errorf("%s chunk different withdraw_root: %s != %s",
			name, lhs.WithdrawRoot.Hex(), rhs.WithdrawRoot.Hex())
	}
	if lhs.DataHash != rhs.DataHash {
		return fmt.Errorf("%s chunk different data_hash: %s != %s",
			name, lhs.DataHash.Hex(), rhs.DataHash.Hex())
	}
	if !bytes.Equal(lhs.TxBytes, rhs.TxBytes) {
		return fmt.Errorf("%s chunk different tx_bytes: %x != %x", name, lhs.TxBytes, rhs.TxBytes)
	}
	return nil
}
