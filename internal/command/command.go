// Package command implements the textual command grammar that drives both
// single-shot CLI invocations and pipe mode: one line in, one "OK" or
// "ERROR: ..." line out (spec.md §6).
package command

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/babblevoice/rrdb/internal/format"
	"github.com/babblevoice/rrdb/internal/rrdbfile"
	"github.com/babblevoice/rrdb/internal/touchfile"
)

// Request describes one parsed command, whichever grammar produced it
// (long CLI flags or a pipe-mode line).
type Request struct {
	Name         string // create, update, fetch, info, touch, modify
	Path         string
	SetCount     int
	SampleCount  int
	XformSpec    string
	Values       string
	XformIndex   int
	HasXformIdx  bool
	TouchPath    string
	TouchPeriods string
	MaxSets      int
	ModifyVals   string
}

// ErrUnknownCommand is returned for a command name outside the recognized
// set.
var ErrUnknownCommand = errors.New("command: unknown command")

// Run executes req and writes exactly one result to out: "OK\n" on success,
// "ERROR: <message>\n" on failure (spec.md §6, §7). It never returns an
// error itself -- the dispatcher's job is to turn every failure into an
// output line, matching the source's never-a-nonzero-exit-status contract.
func Run(out io.Writer, req Request) {
	if err := dispatch(out, req); err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", err)
		return
	}
	fmt.Fprintln(out, "OK")
}

func dispatch(out io.Writer, req Request) error {
	switch req.Name {
	case "create":
		return runCreate(req)
	case "update":
		return runUpdate(req)
	case "fetch":
		return runFetch(out, req)
	case "info":
		return runInfo(out, req)
	case "touch":
		return runTouch(req)
	case "modify":
		return runModify(req)
	default:
		return ErrUnknownCommand
	}
}

func runCreate(req Request) error {
	xforms, err := rrdbfile.ParseXformSpec(req.XformSpec)
	if err != nil {
		return err
	}
	return rrdbfile.Create(req.Path, req.SetCount, req.SampleCount, xforms)
}

func runUpdate(req Request) error {
	values, err := parseValues(req.Values)
	if err != nil {
		return err
	}
	return rrdbfile.WithFile(req.Path, func(f *rrdbfile.File, now time.Time) (bool, error) {
		f.Update(now, values)
		return true, nil
	})
}

func parseValues(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ":")
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("command: bad value %q: %w", p, err)
		}
		values[i] = v
	}
	return values, nil
}

func runFetch(out io.Writer, req Request) error {
	version, err := rrdbfile.FileVersion(req.Path)
	if err != nil {
		return err
	}

	if version == touchfile.Version {
		period := format.ParsePeriod(req.TouchPeriods)
		return touchfile.Fetch(out, req.Path, period, req.TouchPath)
	}

	if version != rrdbfile.Version {
		return rrdbfile.ErrBadVersion
	}

	return rrdbfile.ReadOnly(req.Path, func(f *rrdbfile.File) error {
		if !req.HasXformIdx {
			return f.FetchMain(out)
		}
		return f.FetchXform(out, req.XformIndex)
	})
}

func runInfo(out io.Writer, req Request) error {
	version, err := rrdbfile.FileVersion(req.Path)
	if err != nil {
		return err
	}

	if version == touchfile.Version {
		return touchfile.Info(out, req.Path)
	}
	if version != rrdbfile.Version {
		return rrdbfile.ErrBadVersion
	}
	return rrdbfile.ReadOnly(req.Path, func(f *rrdbfile.File) error {
		return f.Info(out)
	})
}

func runTouch(req Request) error {
	components := strings.Split(req.TouchPath, "/")
	periodNames := strings.Split(req.TouchPeriods, ",")
	periods := make([]format.Period, len(periodNames))
	for i, name := range periodNames {
		periods[i] = format.ParsePeriod(name)
	}
	return touchfile.Touch(req.Path, components, periods, uint32(req.MaxSets), uint32(req.SampleCount))
}

func runModify(req Request) error {
	sec, usec, newValue, err := parseModifyVals(req.ModifyVals)
	if err != nil {
		return err
	}

	return rrdbfile.WithFile(req.Path, func(f *rrdbfile.File, now time.Time) (bool, error) {
		if req.HasXformIdx {
			modified, err := f.ModifyXform(req.XformIndex, sec, newValue)
			if err != nil {
				return false, err
			}
			return modified, nil
		}
		modified := f.ModifyMain(sec, usec, newValue)
		return modified, nil
	})
}

// parseModifyVals parses "sec[.usec]:newvalue", mirroring modifyRRDBFile's
// strtok-based split on '.' and ':'.
func parseModifyVals(s string) (sec int64, usec int32, newValue float64, err error) {
	timePart := s
	valuePart := ""
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		timePart = s[:idx]
		valuePart = s[idx+1:]
	} else {
		return 0, 0, 0, fmt.Errorf("command: malformed modify value %q", s)
	}

	if dot := strings.IndexByte(timePart, '.'); dot >= 0 {
		secStr := timePart[:dot]
		usecStr := timePart[dot+1:]
		secVal, serr := strconv.ParseInt(secStr, 10, 64)
		if serr != nil {
			return 0, 0, 0, fmt.Errorf("command: bad seconds %q: %w", secStr, serr)
		}
		usecVal, uerr := strconv.ParseInt(usecStr, 10, 32)
		if uerr != nil {
			return 0, 0, 0, fmt.Errorf("command: bad microseconds %q: %w", usecStr, uerr)
		}
		sec = secVal
		usec = int32(usecVal)
	} else {
		secVal, serr := strconv.ParseInt(timePart, 10, 64)
		if serr != nil {
			return 0, 0, 0, fmt.Errorf("command: bad seconds %q: %w", timePart, serr)
		}
		sec = secVal
	}

	v, verr := strconv.ParseFloat(valuePart, 64)
	if verr != nil {
		return 0, 0, 0, fmt.Errorf("command: bad value %q: %w", valuePart, verr)
	}
	newValue = v
	return sec, usec, newValue, nil
}

// ParseLine parses one pipe-mode line into a Request (spec.md §6 "Pipe-mode
// grammar").
func ParseLine(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, errors.New("command: empty line")
	}

	name := fields[0]
	req := Request{Name: name}
	if name != "create" && name != "update" && name != "fetch" && name != "info" && name != "touch" && name != "modify" {
		return Request{}, ErrUnknownCommand
	}
	if len(fields) < 2 {
		return Request{}, fmt.Errorf("command: %s requires a file argument", name)
	}
	req.Path = fields[1]
	rest := fields[2:]

	switch name {
	case "create":
		if len(rest) < 3 {
			return Request{}, errors.New("command: create requires setCount sampleCount xformSpec")
		}
		setCount, err := strconv.Atoi(rest[0])
		if err != nil {
			return Request{}, fmt.Errorf("command: bad setCount %q: %w", rest[0], err)
		}
		sampleCount, err := strconv.Atoi(rest[1])
		if err != nil {
			return Request{}, fmt.Errorf("command: bad sampleCount %q: %w", rest[1], err)
		}
		req.SetCount = setCount
		req.SampleCount = sampleCount
		req.XformSpec = rest[2]

	case "update":
		if len(rest) < 1 {
			return Request{}, errors.New("command: update requires a value list")
		}
		req.Values = rest[0]

	case "fetch":
		switch len(rest) {
		case 0:
			// Fetch the main ring.
		case 1:
			idx, err := strconv.Atoi(rest[0])
			if err != nil {
				return Request{}, fmt.Errorf("command: bad xform index %q: %w", rest[0], err)
			}
			req.XformIndex = idx
			req.HasXformIdx = true
		case 2:
			req.TouchPath = rest[0]
			req.TouchPeriods = rest[1]
		default:
			return Request{}, errors.New("command: too many arguments to fetch")
		}

	case "info":
		// No further arguments.

	case "touch":
		if len(rest) < 4 {
			return Request{}, errors.New("command: touch requires maxSets sampleCount path period")
		}
		maxSets, err := strconv.Atoi(rest[0])
		if err != nil {
			return Request{}, fmt.Errorf("command: bad maxSets %q: %w", rest[0], err)
		}
		sampleCount, err := strconv.Atoi(rest[1])
		if err != nil {
			return Request{}, fmt.Errorf("command: bad sampleCount %q: %w", rest[1], err)
		}
		req.MaxSets = maxSets
		req.SampleCount = sampleCount
		req.TouchPath = rest[2]
		req.TouchPeriods = rest[3]

	case "modify":
		if len(rest) < 1 {
			return Request{}, errors.New("command: modify requires a time:value argument")
		}
		req.ModifyVals = rest[0]
		if len(rest) >= 2 {
			idx, err := strconv.Atoi(rest[1])
			if err != nil {
				return Request{}, fmt.Errorf("command: bad xform index %q: %w", rest[1], err)
			}
			req.XformIndex = idx
			req.HasXformIdx = true
		}
	}

	return req, nil
}
