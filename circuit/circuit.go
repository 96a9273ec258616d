// Package circuit defines the boundary to the externally supplied
// arithmetic circuits. The pipeline treats every circuit as an opaque
// transform (parameters, witness) -> snark; this package holds the witness
// types per stage and the adapter interface a concrete proof system
// implements. Selection between circuit variants is by interface value, not
// type-level dispatch.
package circuit

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/snark"
)

// Witness carries a stage's private inputs plus the shape its circuit is
// built with.
type Witness interface {
	// Layer is the pipeline layer the witness belongs to.
	Layer() config.LayerID
	// Dummy returns a witness of identical circuit shape usable for key
	// generation before any real inputs exist. Composed layers are shaped
	// by their input snarks' structure, so their real witness doubles as
	// the keygen witness; only the inner layer substitutes empty traces.
	Dummy() Witness
	// Digest commits to the witness contents, for logging and for
	// deterministic test adapters.
	Digest() common.Hash
}

// Adapter is the external collaborator translating a witness plus
// parameters into a snark, and deriving key material on first use.
//
// An adapter instance may keep internal transcript state; callers must not
// run two Prove calls concurrently on one instance (the pipeline's prover
// serializes them).
type Adapter interface {
	// Keygen derives the proving/verifying key pair for the witness's
	// layer against the given parameter set.
	Keygen(p *params.Params, w Witness) (*params.ProvingKey, error)
	// Prove produces a snark for the witness under the given proving key.
	Prove(p *params.Params, pk *params.ProvingKey, w Witness) (*snark.Snark, error)
	// Verify checks a snark against a verifying key. A false return is a
	// plain verification failure, not an environment error.
	Verify(p *params.Params, vk *params.VerifyingKey, s *snark.Snark) bool
	// InitialRecursionSnark constructs the seed snark for the recursion
	// loop. With a nil verifying key it returns the key-generation
	// placeholder (carrying a designated zero instance); with the real
	// verifying key it returns the legitimate seed encoding the starting
	// pre-state digest.
	InitialRecursionSnark(p *params.Params, shape *config.ShapeParams, vk *params.VerifyingKey) (*snark.Snark, error)
}
