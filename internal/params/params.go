// Package params attaches resolved biophysical model parameters to
// waveform records before filtering. A parameter value may be a scalar
// shared by every shot or a per-shot lookup table; spatially sampled
// values arrive through the same per-shot interface, resolved upstream.
package params

import (
	"fmt"
	"sort"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// Source yields one parameter value per waveform.
type Source interface {
	// Validate checks the source configuration before any record is
	// touched.
	Validate() error
	// Value returns the parameter value for a record, or ok=false when
	// the source has no value for that shot.
	Value(rec *waveform.Record) (v float64, ok bool)
}

// Loader writes a set of named parameter sources onto records under
// metadata/parameters/<name>.
type Loader struct {
	Sources map[string]Source
}

// Validate checks every source.
func (l Loader) Validate() error {
	for _, name := range l.names() {
		if err := l.Sources[name].Validate(); err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
	}
	return nil
}

// Apply resolves each parameter for each record. A shot with no value
// from a source simply does not get the field; a pipeline step reading
// it then fails for that record alone.
func (l Loader) Apply(records []*waveform.Record) error {
	for _, name := range l.names() {
		src := l.Sources[name]
		path := "metadata/parameters/" + name
		for _, rec := range records {
			v, ok := src.Value(rec)
			if !ok {
				continue
			}
			if err := rec.Set(path, waveform.Scalar(v)); err != nil {
				return fmt.Errorf("parameter %q: shot %s: %w", name, rec.Shot(), err)
			}
		}
	}
	return nil
}

// Paths returns the record paths the loader populates, for pipeline
// validation.
func (l Loader) Paths() []string {
	out := make([]string, 0, len(l.Sources))
	for _, name := range l.names() {
		out = append(out, "metadata/parameters/"+name)
	}
	return out
}

func (l Loader) names() []string {
	out := make([]string, 0, len(l.Sources))
	for name := range l.Sources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Scalar is a constant parameter value shared by all shots.
type Scalar float64

func (Scalar) Validate() error { return nil }

func (s Scalar) Value(*waveform.Record) (float64, bool) { return float64(s), true }
