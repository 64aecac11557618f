package main

import (
	"flag"
	"path/filepath"
)

// config holds the parsed long-only CLI flags spec.md §6 defines:
// --command, --setcount, --samplecount, --dir, --filename, --values,
// --xform, --touchpath, --period. --verbosity and --logformat are the only
// additions beyond that list, controlling the ambient logger.
type config struct {
	command     string
	setCount    int
	sampleCount int
	dir         string
	filename    string
	values      string
	xform       string
	touchPath   string
	period      string
	verbosity   string
	logFormat   string
}

// parseFlags registers and parses the flag set, following the teacher's
// flagSet wrapper shape (plain stdlib flag.FlagSet, long-only names, no
// short aliases).
func parseFlags(args []string) (*config, error) {
	fs := flag.NewFlagSet("rrdb", flag.ContinueOnError)

	cfg := &config{}
	fs.StringVar(&cfg.command, "command", "", "command to run: create, update, fetch, info, touch, modify, or - for pipe mode")
	fs.IntVar(&cfg.setCount, "setcount", 0, "number of value sets for create/touch")
	fs.IntVar(&cfg.sampleCount, "samplecount", 0, "ring capacity for create/touch")
	fs.StringVar(&cfg.dir, "dir", ".", "directory prepended to --filename")
	fs.StringVar(&cfg.filename, "filename", "", "data file name, resolved as dir/filename")
	fs.StringVar(&cfg.values, "values", "", "colon-separated sample values for update, or time:value for modify")
	fs.StringVar(&cfg.xform, "xform", "", "xform spec for create, or xform index for fetch/modify")
	fs.StringVar(&cfg.touchPath, "touchpath", "", "slash-separated path components for touch/fetch")
	fs.StringVar(&cfg.period, "period", "", "comma-separated period names for touch, single period for fetch")
	fs.StringVar(&cfg.verbosity, "verbosity", "info", "log level: debug, info, warn, error")
	fs.StringVar(&cfg.logFormat, "logformat", "json", "log rendering: json, text, or color")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolvedPath joins dir and filename, matching spec.md §6's
// "Filename is resolved as dir + / + filename".
func (c *config) resolvedPath() string {
	return filepath.Join(c.dir, c.filename)
}
