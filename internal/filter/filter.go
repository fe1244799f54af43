// Package filter decides which waveforms are eligible for pipeline
// processing. Each filter is a named predicate over a waveform record;
// a chain of filters passes a record only if every predicate accepts
// it. Filter parameters are validated when the chain is compiled, never
// per record.
package filter

import (
	"fmt"
	"sort"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// Predicate reports whether a record should be processed. A predicate
// must not modify the record.
type Predicate func(rec *waveform.Record) bool

// Builder compiles filter parameters into a predicate, failing on
// malformed parameters.
type Builder func(params Params) (Predicate, error)

// Params is the raw parameter map of one configured filter.
type Params map[string]any

// Spec names a filter and carries its parameters.
type Spec struct {
	Name   string
	Params Params
}

var builders = map[string]Builder{
	"spatial":        buildSpatial,
	"temporal":       buildTemporal,
	"quality_flag":   buildQualityFlag,
	"min_modes":      buildMinModes,
	"min_treecover":  buildMinTreecover,
	"min_separation": buildMinSeparation,
	"lua":            buildLua,
}

// Names returns the sorted names of available filters.
func Names() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// UnknownFilterError is returned when a spec names a filter that does
// not exist.
type UnknownFilterError struct{ Name string }

func (e UnknownFilterError) Error() string { return "unknown filter: " + e.Name }

type compiled struct {
	name string
	pred Predicate
}

// Chain is an AND-composed, compiled set of filters. An empty chain
// passes every record.
type Chain struct {
	filters []compiled
}

// Compile resolves and validates the specs into a chain. Any parameter
// error aborts compilation with the filter named.
func Compile(specs []Spec) (*Chain, error) {
	c := &Chain{}
	for _, s := range specs {
		build, ok := builders[s.Name]
		if !ok {
			return nil, UnknownFilterError{Name: s.Name}
		}
		pred, err := build(s.Params)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", s.Name, err)
		}
		c.filters = append(c.filters, compiled{name: s.Name, pred: pred})
	}
	return c, nil
}

// Keep reports whether every filter in the chain accepts the record.
func (c *Chain) Keep(rec *waveform.Record) bool {
	for _, f := range c.filters {
		if !f.pred(rec) {
			return false
		}
	}
	return true
}

// Len returns the number of compiled filters.
func (c *Chain) Len() int { return len(c.filters) }

// recScalar reads a scalar field, reporting absence or a non-scalar
// kind as not-ok. Filters treat missing quality data as a rejection,
// not an error.
func recScalar(rec *waveform.Record, path string) (float64, bool) {
	v, err := rec.Get(path)
	if err != nil {
		return 0, false
	}
	return waveform.AsScalar(v)
}
