package main

import (
	"flag"
	"fmt"
	"io"
)

// cliConfig holds the parsed command line.
type cliConfig struct {
	Mode         string // chunk, batch, bundle, verify
	AssetsDir    string
	ParamsDir    string
	OutDir       string
	TaskFile     string
	VerifierCode string
	Verbosity    int
}

// parseFlags parses args into a cliConfig. The second return value
// requests an early exit (help or version) with the given exit code.
func parseFlags(args []string, stderr io.Writer) (*cliConfig, bool, int) {
	cfg := &cliConfig{}
	fs := flag.NewFlagSet("rollprover", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.Mode, "mode", "chunk", "pipeline mode: chunk, batch, bundle or verify")
	fs.StringVar(&cfg.AssetsDir, "assets", "assets", "directory with layer shape configs and verifying keys")
	fs.StringVar(&cfg.ParamsDir, "params", "params", "directory with trusted-setup parameter files")
	fs.StringVar(&cfg.OutDir, "out", "out", "directory for snark caches and proof dumps")
	fs.StringVar(&cfg.TaskFile, "task", "", "task description file (JSON)")
	fs.StringVar(&cfg.VerifierCode, "verifier-code", "", "verifier contract creation bytecode (verify mode)")
	fs.IntVar(&cfg.Verbosity, "verbosity", 3, "log level 0-5")
	printVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, 0
		}
		return nil, true, 2
	}
	if *printVersion {
		fmt.Fprintf(stderr, "rollprover %s (commit %s)\n", version, commit)
		return nil, true, 0
	}

	switch cfg.Mode {
	case "chunk", "batch", "bundle", "verify":
	default:
		fmt.Fprintf(stderr, "unknown mode %q\n", cfg.Mode)
		return nil, true, 2
	}
	if cfg.TaskFile == "" {
		fmt.Fprintln(stderr, "missing required -task flag")
		return nil, true, 2
	}
	return cfg, false, 0
}
