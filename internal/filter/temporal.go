package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// buildTemporal keeps waveforms acquired within [start, end]. Either
// bound may be absent, leaving that side open. Bounds are RFC 3339;
// malformed bounds fail at compile time.
func buildTemporal(params Params) (Predicate, error) {
	startStr, err := stringParam(params, "start")
	if err != nil {
		return nil, err
	}
	endStr, err := stringParam(params, "end")
	if err != nil {
		return nil, err
	}
	var start, end time.Time
	if startStr != "" {
		if start, err = time.Parse(time.RFC3339, startStr); err != nil {
			return nil, fmt.Errorf("invalid start date %q: %v", startStr, err)
		}
	}
	if endStr != "" {
		if end, err = time.Parse(time.RFC3339, endStr); err != nil {
			return nil, fmt.Errorf("invalid end date %q: %v", endStr, err)
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, fmt.Errorf("start date %s is after end date %s", startStr, endStr)
	}
	return func(rec *waveform.Record) bool {
		v, err := rec.Get("metadata/time")
		if err != nil {
			return false
		}
		ts, ok := waveform.AsText(v)
		if !ok {
			return false
		}
		t, err := time.Parse(time.RFC3339, string(ts))
		if err != nil {
			return false
		}
		if !start.IsZero() && t.Before(start) {
			return false
		}
		if !end.IsZero() && t.After(end) {
			return false
		}
		return true
	}, nil
}

// ParseDateRange splits a "start,end" range into temporal filter
// parameters. A leading comma gives an end-only bound, a trailing comma
// a start-only bound; a single date is treated as a start bound.
func ParseDateRange(rangeStr string) (Params, error) {
	parts := strings.Split(rangeStr, ",")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid date range %q: expected at most one comma", rangeStr)
	}
	start := strings.TrimSpace(parts[0])
	end := ""
	if len(parts) == 2 {
		end = strings.TrimSpace(parts[1])
	}
	if start == "" && end == "" {
		return nil, fmt.Errorf("invalid date range %q: no dates given", rangeStr)
	}
	p := Params{}
	if start != "" {
		p["start"] = start
	}
	if end != "" {
		p["end"] = end
	}
	return p, nil
}
