// Command rollprover drives the proof-composition pipeline from the
// command line: it generates chunk, batch and bundle proofs over the
// on-disk snark cache, and verifies dumped bundle proofs against a
// verifier contract in an in-process EVM.
//
// Usage:
//
//	rollprover -mode chunk  -task chunk.json  [-assets dir] [-params dir] [-out dir]
//	rollprover -mode batch  -task batch.json  ...
//	rollprover -mode bundle -task bundle.json ...
//	rollprover -mode verify -task verify.json -verifier-code verifier.bin
//
// Proof generation runs against the deterministic built-in circuit
// adapter, which exercises the full pipeline (caching, key bootstrap,
// recursion, blob consistency, artifact dumps) without a real proof
// system; swap the adapter in code to attach one.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rollprover/rollprover/circuit/mockcircuit"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/log"
	"github.com/rollprover/rollprover/params"
	"github.com/rollprover/rollprover/proof"
	"github.com/rollprover/rollprover/prover"
	"github.com/rollprover/rollprover/verifier"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cli, exit, code := parseFlags(args, os.Stderr)
	if exit {
		return code
	}

	log.SetDefault(log.New(verbosityToLevel(cli.Verbosity)))
	logger := log.Default().Module("cli")

	// Record build provenance in every dumped proof unless the proof
	// package got its own ldflags override.
	if proof.Version == "unknown" {
		proof.Version = fmt.Sprintf("%s-%s", version, commit)
	}

	logger.Info("rollprover starting", "version", version, "commit", commit,
		"mode", cli.Mode, "assets", cli.AssetsDir, "params", cli.ParamsDir, "out", cli.OutDir)

	if err := os.MkdirAll(cli.OutDir, 0o755); err != nil {
		logger.Error("create output directory", "err", err)
		return 1
	}

	if cli.Mode == "verify" {
		if err := runVerify(cli); err != nil {
			logger.Error("verification failed", "err", err)
			return 1
		}
		logger.Info("bundle proof verified")
		return 0
	}

	if err := runProve(cli); err != nil {
		logger.Error("proving failed", "err", err)
		return 1
	}
	return 0
}

func runProve(cli *cliConfig) error {
	cfg, err := config.Load(cli.AssetsDir)
	if err != nil {
		return err
	}
	degrees := append(cfg.ChunkDegrees(), cfg.BatchDegrees()...)
	pm, err := params.LoadMap(cli.ParamsDir, degrees)
	if err != nil {
		return err
	}
	p := prover.New(cfg, pm, &mockcircuit.Adapter{})

	switch cli.Mode {
	case "chunk":
		task, err := loadChunkTask(cli.TaskFile)
		if err != nil {
			return err
		}
		cp, err := p.GenChunkProof(task, cli.OutDir)
		if err != nil {
			return err
		}
		return cp.Dump(cli.OutDir, task.InstanceID)

	case "batch":
		task, err := loadBatchTask(cli.TaskFile, cli.OutDir)
		if err != nil {
			return err
		}
		bp, err := p.GenBatchProof(task, cli.OutDir)
		if err != nil {
			return err
		}
		return bp.Dump(cli.OutDir, task.InstanceID)

	case "bundle":
		task, err := loadBundleTask(cli.TaskFile, cli.OutDir)
		if err != nil {
			return err
		}
		bp, err := p.GenBundleProof(task, cli.OutDir)
		if err != nil {
			return err
		}
		// With known deployment code, run the fresh proof through the
		// verifier contract before anything is persisted.
		if cli.VerifierCode != "" {
			v, err := verifier.NewBundleVerifierFromFile(cli.VerifierCode)
			if err != nil {
				return err
			}
			if err := v.SanityCheck(bp); err != nil {
				return err
			}
		}
		return bp.Dump(cli.OutDir, task.InstanceID)
	}
	return fmt.Errorf("unknown mode %q", cli.Mode)
}

func runVerify(cli *cliConfig) error {
	var t verifyTaskFile
	if err := readTask(cli.TaskFile, &t); err != nil {
		return err
	}
	bp, err := proof.ReadBundleProof(cli.OutDir, t.BundleSuffix)
	if err != nil {
		return err
	}
	if cli.VerifierCode == "" {
		return verifier.ErrVerifierCodeMissing
	}
	v, err := verifier.NewBundleVerifierFromFile(cli.VerifierCode)
	if err != nil {
		return err
	}
	return v.Verify(bp)
}

// verbosityToLevel maps the geth-style 0-5 verbosity scale onto slog
// levels.
func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
