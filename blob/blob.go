// Package blob computes the data-availability consistency witness binding a
// batch's off-chain payload bytes to its on-chain EIP-4844 blob commitment:
// the commitment's versioned hash, a Fiat-Shamir challenge over the batch
// structure and blob, and the blob polynomial's evaluation at that
// challenge. The whole witness is a pure function of (payload, header);
// recomputing it from identical inputs reproduces identical output
// bit-for-bit.
package blob

import (
	"crypto/sha256"
	"fmt"
	"sync"

	goethkzg "github.com/crate-crypto/go-eth-kzg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/rollprover/rollprover/batch"
)

const (
	// BlobWidth is the number of scalar coefficients in one blob.
	BlobWidth = 4096

	// BytesPerCoefficient is the number of payload bytes packed into each
	// coefficient. The top byte of every 32-byte coefficient stays zero so
	// the value is always a canonical BLS scalar.
	BytesPerCoefficient = 31

	// MaxBlobBytes is the maximum payload that fits in one blob.
	MaxBlobBytes = BlobWidth * BytesPerCoefficient

	// VersionedHashVersionKZG is the version tag overwriting byte 0 of the
	// commitment hash, per the EIP-4844 addressing scheme.
	VersionedHashVersionKZG = byte(0x01)
)

// blsModulus is the order of the BLS12-381 scalar field; challenge digests
// are reduced modulo this bound.
var blsModulus = uint256.MustFromHex("0x73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001")

var (
	kzgOnce sync.Once
	kzgCtx  *goethkzg.Context
	kzgErr  error
)

// kzgContext returns the shared KZG context over the standard trusted
// setup. Loading the setup takes a few seconds, so it happens once per
// process.
func kzgContext() (*goethkzg.Context, error) {
	kzgOnce.Do(func() {
		kzgCtx, kzgErr = goethkzg.NewContext4096Secure()
	})
	if kzgErr != nil {
		return nil, fmt.Errorf("load kzg trusted setup: %w", kzgErr)
	}
	return kzgCtx, nil
}

// EncodePayload wraps raw batch bytes into blob bytes: a 1-byte flag
// (0 = raw payload follows) ahead of the payload itself. The flag slot
// exists so a compressed encoding can be introduced without changing the
// blob layout.
func EncodePayload(payload []byte) []byte {
	out := make([]byte, 1+len(payload))
	copy(out[1:], payload)
	return out
}

// Coefficients packs blob bytes into BlobWidth big-endian 32-byte scalar
// coefficients. Byte i of the input lands at byte 1+(i%31) of coefficient
// i/31; unused coefficients are zero.
func Coefficients(blobBytes []byte) (*goethkzg.Blob, error) {
	if len(blobBytes) > MaxBlobBytes {
		return nil, fmt.Errorf("too many bytes in batch data: %d > %d", len(blobBytes), MaxBlobBytes)
	}
	var blob goethkzg.Blob
	for i, b := range blobBytes {
		coeff := i / BytesPerCoefficient
		blob[coeff*32+1+(i%BytesPerCoefficient)] = b
	}
	return &blob, nil
}

// VersionedHash hashes a KZG commitment and overwrites the leading byte
// with the KZG version tag.
func VersionedHash(commitment goethkzg.KZGCommitment) common.Hash {
	digest := sha256.Sum256(commitment[:])
	digest[0] = VersionedHashVersionKZG
	return common.Hash(digest)
}

// challengeDigest derives the Fiat-Shamir challenge binding the batch
// structure to the blob: keccak256 over the batch metadata digest, the
// keccak digest of the blob bytes and the blob's versioned hash.
func challengeDigest(metadataDigest common.Hash, blobBytes []byte, versionedHash common.Hash) common.Hash {
	keccak := sha3.NewLegacyKeccak256()
	keccak.Write(metadataDigest.Bytes())

	inner := sha3.NewLegacyKeccak256()
	inner.Write(blobBytes)
	keccak.Write(inner.Sum(nil))

	keccak.Write(versionedHash.Bytes())
	return common.BytesToHash(keccak.Sum(nil))
}

// reduceToScalar maps a 32-byte digest onto the BLS scalar field by
// big-integer remainder. The digest is wider than the field, so a plain
// truncation would bias the challenge.
func reduceToScalar(digest common.Hash) goethkzg.Scalar {
	word := new(uint256.Int).SetBytes(digest.Bytes())
	word.Mod(word, blsModulus)
	return goethkzg.Scalar(word.Bytes32())
}

// ConsistencyWitness binds a batch payload to its blob commitment. Immutable
// once constructed.
type ConsistencyWitness struct {
	blobVersionedHash common.Hash
	challengeDigest   common.Hash
	challenge         goethkzg.Scalar
	evaluation        goethkzg.Scalar
	commitment        goethkzg.KZGCommitment
	kzgProof          goethkzg.KZGProof
}

// NewConsistencyWitness derives the full witness from blob bytes and the
// batch header. blobBytes is the flagged payload as produced by
// EncodePayload.
func NewConsistencyWitness(blobBytes []byte, header *batch.Header) (*ConsistencyWitness, error) {
	coeffs, err := Coefficients(blobBytes)
	if err != nil {
		return nil, err
	}

	ctx, err := kzgContext()
	if err != nil {
		return nil, err
	}

	commitment, err := ctx.BlobToKZGCommitment(coeffs, 0)
	if err != nil {
		return nil, fmt.Errorf("blob to kzg commitment: %w", err)
	}
	versionedHash := VersionedHash(commitment)

	digest := challengeDigest(header.MetadataDigest(), blobBytes, versionedHash)
	challenge := reduceToScalar(digest)

	kzgProof, evaluation, err := ctx.ComputeKZGProof(coeffs, challenge, 0)
	if err != nil {
		return nil, fmt.Errorf("compute kzg proof at challenge: %w", err)
	}

	return &ConsistencyWitness{
		blobVersionedHash: versionedHash,
		challengeDigest:   digest,
		challenge:         challenge,
		evaluation:        evaluation,
		commitment:        commitment,
		kzgProof:          kzgProof,
	}, nil
}

// ID returns the blob's versioned hash, the witness identity.
func (w *ConsistencyWitness) ID() common.Hash {
	return w.blobVersionedHash
}

// ChallengeDigest returns the unreduced challenge digest as a big integer.
func (w *ConsistencyWitness) ChallengeDigest() *uint256.Int {
	return new(uint256.Int).SetBytes(w.challengeDigest.Bytes())
}

// Challenge returns the evaluation point: the challenge digest reduced into
// the scalar field, big-endian encoded.
func (w *ConsistencyWitness) Challenge() goethkzg.Scalar {
	return w.challenge
}

// Evaluation returns the blob polynomial's value at the challenge point.
func (w *ConsistencyWitness) Evaluation() goethkzg.Scalar {
	return w.evaluation
}

// Commitment returns the KZG commitment to the blob.
func (w *ConsistencyWitness) Commitment() goethkzg.KZGCommitment {
	return w.commitment
}

// KZGProof returns the point-evaluation proof for (challenge, evaluation).
func (w *ConsistencyWitness) KZGProof() goethkzg.KZGProof {
	return w.kzgProof
}

// BlobDataProof returns the (challenge, evaluation) pair as digest-sized
// values, the form embedded as public inputs for external comparison.
func (w *ConsistencyWitness) BlobDataProof() [2]common.Hash {
	return [2]common.Hash{
		common.BytesToHash(w.challenge[:]),
		common.BytesToHash(w.evaluation[:]),
	}
}

// Verify checks the point-evaluation proof against the commitment, the same
// check the on-chain point-evaluation precompile performs.
func (w *ConsistencyWitness) Verify() error {
	ctx, err := kzgContext()
	if err != nil {
		return err
	}
	if err := ctx.VerifyKZGProof(w.commitment, w.challenge, w.evaluation, w.kzgProof); err != nil {
		return fmt.Errorf("kzg point-evaluation proof rejected: %w", err)
	}
	return nil
}
