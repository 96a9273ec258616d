package verifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm/runtime"
	gethparams "github.com/ethereum/go-ethereum/params"

	"github.com/rollprover/rollprover/log"
	"github.com/rollprover/rollprover/proof"
)

// evmGasLimit bounds a single verification call. Real verifier contracts
// stay well under this; hitting it means a broken deployment.
const evmGasLimit = 100_000_000

var (
	// ErrVerifierCodeMissing reports a bundle verification attempt without
	// deployment code configured. An environment problem, distinct from a
	// proof being rejected.
	ErrVerifierCodeMissing = errors.New("no verifier deployment code configured")

	// ErrVerification reports that the verifier contract rejected the
	// proof calldata.
	ErrVerification = errors.New("bundle proof rejected by verifier contract")

	// ErrSanityCheckFailed reports that a freshly generated bundle proof
	// failed the post-generation EVM check. The proof must be discarded.
	ErrSanityCheckFailed = errors.New("bundle proof failed the EVM sanity check")
)

// BundleVerifier checks bundle proofs by deploying the on-chain verifier
// contract into a throwaway in-process EVM and calling it with the proof
// calldata, the exact path the proof takes on chain.
type BundleVerifier struct {
	deployment []byte
	log        *log.Logger
}

// NewBundleVerifier builds a verifier around the contract's creation
// bytecode. A nil or empty deployment is allowed: verification then fails
// with ErrVerifierCodeMissing.
func NewBundleVerifier(deployment []byte) *BundleVerifier {
	return &BundleVerifier{
		deployment: deployment,
		log:        log.Default().Module("verifier"),
	}
}

// NewBundleVerifierFromFile loads the contract's creation bytecode from
// the given asset path.
func NewBundleVerifierFromFile(path string) (*BundleVerifier, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read verifier deployment code %s: %w", path, err)
	}
	return NewBundleVerifier(code), nil
}

// BundleCodeFilename is the asset file holding the verifier contract's
// creation bytecode.
const BundleCodeFilename = "evm_verifier.bin"

// NewBundleVerifierFromAssets loads the deployment bytecode from the
// assets directory. The asset is optional: if absent, the verifier is
// built without code and rejects with ErrVerifierCodeMissing when used.
func NewBundleVerifierFromAssets(assetsDir string) (*BundleVerifier, error) {
	code, err := os.ReadFile(filepath.Join(assetsDir, BundleCodeFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return NewBundleVerifier(nil), nil
		}
		return nil, fmt.Errorf("read verifier deployment code: %w", err)
	}
	return NewBundleVerifier(code), nil
}

// Verify deploys the verifier contract and calls it with the proof's
// calldata. A revert or invalid opcode in the call is ErrVerification;
// deployment failures are environment errors.
func (v *BundleVerifier) Verify(p *proof.BundleProof) error {
	if len(v.deployment) == 0 {
		return ErrVerifierCodeMissing
	}
	if err := deployAndCall(v.deployment, p.Calldata()); err != nil {
		v.log.Warn("bundle proof rejected", "err", err)
		return err
	}
	return nil
}

// SanityCheck runs Verify on a freshly generated proof and converts a
// rejection into ErrSanityCheckFailed, so callers can tell a bad new
// proof from a bad submitted one.
func (v *BundleVerifier) SanityCheck(p *proof.BundleProof) error {
	err := v.Verify(p)
	if errors.Is(err, ErrVerification) {
		return fmt.Errorf("%w: %v", ErrSanityCheckFailed, err)
	}
	return err
}

// deployAndCall runs the contract's creation code in a fresh state, then
// calls the deployed address with the calldata. Both steps share one
// state so the call sees the deployed code.
func deployAndCall(deployment, calldata []byte) error {
	statedb, err := state.New(types.EmptyRootHash, state.NewDatabaseForTesting())
	if err != nil {
		return fmt.Errorf("new evm state: %w", err)
	}
	cfg := &runtime.Config{
		ChainConfig: gethparams.MergedTestChainConfig,
		State:       statedb,
		GasLimit:    evmGasLimit,
		Random:      &common.Hash{},
	}

	_, addr, _, err := runtime.Create(deployment, cfg)
	if err != nil {
		return fmt.Errorf("deploy verifier contract: %w", err)
	}

	if _, _, err := runtime.Call(addr, calldata, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return nil
}
