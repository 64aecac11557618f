package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"--command=create",
		"--dir=/data",
		"--filename=t.rrdb",
		"--setcount=2",
		"--samplecount=100",
		"--xform=RRDBSUM:FIVEMINUTE:0",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.command != "create" || cfg.setCount != 2 || cfg.sampleCount != 100 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got, want := cfg.resolvedPath(), filepath.Join("/data", "t.rrdb"); got != want {
		t.Fatalf("resolvedPath() = %q, want %q", got, want)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags([]string{"--command=info", "--filename=t.rrdb"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.dir != "." {
		t.Fatalf("dir = %q, want \".\"", cfg.dir)
	}
	if cfg.verbosity != "info" {
		t.Fatalf("verbosity = %q, want \"info\"", cfg.verbosity)
	}
}

func TestRequestFromConfigCreate(t *testing.T) {
	cfg := &config{command: "create", dir: ".", filename: "t.rrdb", setCount: 1, sampleCount: 10, xform: "RRDBSUM:ONEHOUR:0"}
	req, err := requestFromConfig(cfg)
	if err != nil {
		t.Fatalf("requestFromConfig: %v", err)
	}
	if req.Name != "create" || req.SetCount != 1 || req.SampleCount != 10 || req.XformSpec != cfg.xform {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestRequestFromConfigFetchXformIndex(t *testing.T) {
	cfg := &config{command: "fetch", dir: ".", filename: "t.rrdb", xform: "1"}
	req, err := requestFromConfig(cfg)
	if err != nil {
		t.Fatalf("requestFromConfig: %v", err)
	}
	if !req.HasXformIdx || req.XformIndex != 1 {
		t.Fatalf("expected xform index 1: %+v", req)
	}
}

func TestRequestFromConfigUnknownCommand(t *testing.T) {
	cfg := &config{command: "bogus", dir: ".", filename: "t.rrdb"}
	if _, err := requestFromConfig(cfg); err == nil {
		t.Fatalf("expected an error for an unrecognized command")
	}
}

func TestRunSingleCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()

	code := runWithArgs(t, []string{
		"--command=create",
		"--dir=" + dir,
		"--filename=t.rrdb",
		"--setcount=1",
		"--samplecount=5",
		"--xform=RRDBSUM:FIVEMINUTE:0",
	})
	if code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
}

// runWithArgs runs the CLI against real files, since run() takes *os.File
// rather than io.Writer/io.Reader.
func runWithArgs(t *testing.T, args []string) int {
	t.Helper()
	outPath := filepath.Join(t.TempDir(), "out.txt")
	out, err := os.Create(outPath)
	if err != nil {
		t.Fatalf("os.Create: %v", err)
	}
	defer out.Close()

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("os.Open(DevNull): %v", err)
	}
	defer devNull.Close()

	return run(args, devNull, out)
}
