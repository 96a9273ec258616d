package batch

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Header is the structural metadata of one batch of chunks. Its digest
// seeds the Fiat-Shamir challenge that binds the batch payload to the blob
// commitment, and its hash identifies the batch proof on disk and on chain.
type Header struct {
	// Version of the batch encoding.
	Version uint8 `json:"version"`
	// Index of the batch in the rollup's batch sequence.
	Index uint64 `json:"index"`
	// ParentBatchHash chains batches together.
	ParentBatchHash common.Hash `json:"parent_batch_hash"`
	// LastBlockTimestamp is the timestamp of the last block in the batch.
	LastBlockTimestamp uint64 `json:"last_block_timestamp"`
	// ChunkDigests are the chunk data digests of the batch, in order.
	ChunkDigests []common.Hash `json:"chunk_digests"`
}

// NewHeader builds a batch header over the given chunks.
func NewHeader(version uint8, index uint64, parent common.Hash, lastBlockTimestamp uint64, chunks []*ChunkInfo) *Header {
	digests := make([]common.Hash, len(chunks))
	for i, c := range chunks {
		digests[i] = c.Digest()
	}
	return &Header{
		Version:            version,
		Index:              index,
		ParentBatchHash:    parent,
		LastBlockTimestamp: lastBlockTimestamp,
		ChunkDigests:       digests,
	}
}

func (h *Header) encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(h.Version)
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], h.Index)
	buf.Write(u64[:])
	buf.Write(h.ParentBatchHash.Bytes())
	binary.BigEndian.PutUint64(u64[:], h.LastBlockTimestamp)
	buf.Write(u64[:])
	for _, d := range h.ChunkDigests {
		buf.Write(d.Bytes())
	}
	return buf.Bytes()
}

// MetadataDigest commits to the batch structure. It is one of the inputs
// to the blob-consistency challenge and must be a pure function of the
// header fields.
func (h *Header) MetadataDigest() common.Hash {
	return crypto.Keccak256Hash(h.encode())
}

// Hash identifies the batch. Unlike MetadataDigest it is also bound to the
// number of chunks, mirroring the on-chain batch header hashing.
func (h *Header) Hash() common.Hash {
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(len(h.ChunkDigests)))
	return crypto.Keccak256Hash(n[:], h.encode())
}
