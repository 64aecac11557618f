package rrdbfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/babblevoice/rrdb/internal/format"
)

// ParseXformSpec parses the colon-concatenated xformSpec syntax of spec.md
// §6: "Reducer:Period[:setIndex]" repeated, e.g.
// "RRDBCOUNT:ONEDAY:RRDBCOUNT:FIVEMINUTE:RRDBSUM:FIVEMINUTE:0". setIndex is
// optional only for RRDBCOUNT; it is required for the other four reducers.
// The first unrecognised reducer name silently ends parsing: it and every
// token after it are dropped, and the xforms parsed before it are returned
// without error. A missing period or a missing required setIndex is an
// Input error (spec.md §7).
func ParseXformSpec(spec string) ([]Xform, error) {
	if spec == "" {
		return nil, nil
	}
	tokens := strings.Split(spec, ":")

	var xforms []Xform
	i := 0
	for i < len(tokens) {
		reducer, ok := format.ParseReducer(tokens[i])
		i++
		if !ok {
			// Unrecognised reducer name: silently ignored (spec.md §6).
			// We still must consume its period (and setIndex, if the
			// following token isn't itself a reducer) to stay aligned,
			// but since we can't know arity for an unknown reducer we
			// simply drop the rest of the spec -- matching the source,
			// which only ever sees recognised names here because its
			// if/else-if chain leaves fileData.xforms[i].calc
			// uninitialized (0, RRDBMAX) for unrecognised tokens rather
			// than truly skipping them. This implementation instead stops
			// parsing on the first unrecognised reducer.
			break
		}

		if i >= len(tokens) {
			return nil, fmt.Errorf("rrdbfile: xform %d (%s) missing required period", len(xforms), reducer)
		}
		// An unrecognised period name is silently ignored (spec.md §6), a
		// different rule from the missing-token case just above: the
		// source leaves fileData.xforms[i].period at its calloc'd zero
		// value (FIVEMINUTE) rather than erroring, and ParsePeriodStrict's
		// zero-value return on failure already matches that.
		period, _ := format.ParsePeriodStrict(tokens[i])
		i++

		var setIndex uint32
		if reducer.RequiresSetIndex() {
			if i >= len(tokens) {
				return nil, fmt.Errorf("rrdbfile: xform %d (%s) missing required set index", len(xforms), reducer)
			}
			n, err := strconv.Atoi(tokens[i])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("rrdbfile: xform %d (%s) has invalid set index %q", len(xforms), reducer, tokens[i])
			}
			setIndex = uint32(n)
			i++
		}

		xforms = append(xforms, Xform{
			Period:   period,
			Reducer:  reducer,
			SetIndex: setIndex,
		})
	}

	if len(xforms) > MaxXformsTotal {
		return nil, fmt.Errorf("rrdbfile: %d xforms exceeds maximum of %d", len(xforms), MaxXformsTotal)
	}
	return xforms, nil
}
