// Command rrdb drives the round-robin sample store from the command line,
// either as a single shot (--command=create|update|fetch|info|touch|modify)
// or in pipe mode (--command=-), reading newline-delimited commands from
// stdin until EOF (spec.md §5, §6).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/babblevoice/rrdb/internal/command"
	"github.com/babblevoice/rrdb/internal/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// shuttingDown cooperates with the pipe loop: signal handling sets it, and
// the loop checks it between lines rather than the handler calling os.Exit
// directly (spec.md §9 "Global mutable singletons").
var shuttingDown atomic.Bool

func run(args []string, in *os.File, out *os.File) int {
	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", err)
		return 0
	}

	level := log.LevelFromString(cfg.verbosity)
	log.SetDefault(log.NewWithFormat(level.Slog(), cfg.logFormat))
	logger := log.Default().Module("rrdb")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		shuttingDown.Store(true)
		cancel()
	}()

	if cfg.command == "-" {
		return runPipe(ctx, in, out)
	}

	req, err := requestFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", err)
		return 0
	}

	logger.Debug("dispatching single command", "command", req.Name, "path", req.Path)
	command.Run(out, req)
	return 0
}

// runPipe reads one command per line from in, executes it, and writes one
// result line to out, continuing after errors until EOF or shutdown
// (spec.md §6 "Pipe-mode grammar").
func runPipe(ctx context.Context, in *os.File, out *os.File) int {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if shuttingDown.Load() {
			return 0
		}
		select {
		case <-ctx.Done():
			return 0
		default:
		}

		line := scanner.Text()
		req, err := command.ParseLine(line)
		if err != nil {
			fmt.Fprintf(out, "ERROR: %s\n", err)
			continue
		}
		command.Run(out, req)
	}
	return 0
}

// requestFromConfig builds a single command.Request from the parsed flags,
// matching each command's argument set from spec.md §6.
func requestFromConfig(cfg *config) (command.Request, error) {
	req := command.Request{
		Name: cfg.command,
		Path: cfg.resolvedPath(),
	}

	switch cfg.command {
	case "create":
		req.SetCount = cfg.setCount
		req.SampleCount = cfg.sampleCount
		req.XformSpec = cfg.xform

	case "update":
		req.Values = cfg.values

	case "fetch":
		if cfg.touchPath != "" {
			req.TouchPath = cfg.touchPath
			req.TouchPeriods = cfg.period
		} else if cfg.xform != "" {
			idx, err := strconv.Atoi(cfg.xform)
			if err != nil {
				return command.Request{}, fmt.Errorf("bad xform index %q: %w", cfg.xform, err)
			}
			req.XformIndex = idx
			req.HasXformIdx = true
		}

	case "info":
		// No further fields.

	case "touch":
		req.MaxSets = cfg.setCount
		req.SampleCount = cfg.sampleCount
		req.TouchPath = cfg.touchPath
		req.TouchPeriods = cfg.period

	case "modify":
		req.ModifyVals = cfg.values
		if cfg.xform != "" {
			idx, err := strconv.Atoi(cfg.xform)
			if err != nil {
				return command.Request{}, fmt.Errorf("bad xform index %q: %w", cfg.xform, err)
			}
			req.XformIndex = idx
			req.HasXformIdx = true
		}

	default:
		return command.Request{}, fmt.Errorf("unrecognized command %q", cfg.command)
	}

	return req, nil
}
