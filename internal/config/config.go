// Package config loads and validates run configurations. Configs are
// CUE files parsed into closed structs at load time; loosely typed
// configuration data never reaches the processing core.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Run is a fully parsed run configuration.
type Run struct {
	ConfigVersion string
	Input         Input
	Output        Output
	Workers       int
	Steps         []Step // empty means the built-in biomass pipeline
	Filters       Filters
	Parameters    map[string]Parameter
}

// Input names the shot bundle to process.
type Input struct {
	Shots string
}

// Output names the result file.
type Output struct {
	Path string
}

// Step is one declared pipeline step.
type Step struct {
	Name     string
	Function string
	Inputs   map[string]InputSource
	Params   map[string]any
	Output   string
}

// InputSource is either a record field path or a literal constant.
type InputSource struct {
	Path   string
	Scalar *float64
	Array  []float64
}

// Filters holds the optional filter settings; a nil or zero entry
// leaves that filter disabled.
type Filters struct {
	Boundary      [][][]float64
	DateRange     string
	QualityFlag   *float64
	MinModes      *float64
	MinTreecover  *float64
	MinSeparation *float64
	Lua           string
}

// Parameter is a model parameter source: a scalar shared by all shots
// or a per-shot CSV table.
type Parameter struct {
	Scalar *float64
	Table  string
}

// Parse loads and validates a CUE run configuration.
func Parse(path string) (Run, error) {
	if filepath.Ext(path) != ".cue" {
		return Run{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("failed to read config: %w", err)
	}
	return parseBytes(data)
}

func parseBytes(data []byte) (Run, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return Run{}, fmt.Errorf("invalid config: %v", err)
	}
	var r Run
	if err := requireString(v, "configVersion", &r.ConfigVersion); err != nil {
		return Run{}, err
	}
	if r.ConfigVersion != "1" {
		return Run{}, fmt.Errorf("unsupported configVersion: %q", r.ConfigVersion)
	}

	iv := v.LookupPath(cue.ParsePath("input"))
	if iv.Exists() {
		if err := requireString(iv, "shots", &r.Input.Shots); err != nil {
			return Run{}, err
		}
	}
	ov := v.LookupPath(cue.ParsePath("output"))
	if ov.Exists() {
		if err := requireString(ov, "path", &r.Output.Path); err != nil {
			return Run{}, err
		}
	}
	if err := optInt(v, "workers", &r.Workers); err != nil {
		return Run{}, err
	}
	if r.Workers < 0 {
		return Run{}, fmt.Errorf("workers must be non-negative, got %d", r.Workers)
	}

	steps, err := parseSteps(v)
	if err != nil {
		return Run{}, err
	}
	r.Steps = steps

	filters, err := parseFilters(v)
	if err != nil {
		return Run{}, err
	}
	r.Filters = filters

	parameters, err := parseParameters(v)
	if err != nil {
		return Run{}, err
	}
	r.Parameters = parameters
	return r, nil
}

func requireString(v cue.Value, name string, out *string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return f.Decode(out)
}

func optString(v cue.Value, name string, out *string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return f.Decode(out)
}

func optInt(v cue.Value, name string, out *int) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.IntKind {
		return fmt.Errorf("invalid type for field: %s (expected int)", name)
	}
	return f.Decode(out)
}

func optNumber(v cue.Value, name string) (*float64, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil, nil
	}
	if f.Kind() != cue.NumberKind && f.Kind() != cue.IntKind && f.Kind() != cue.FloatKind {
		return nil, fmt.Errorf("invalid type for field: %s (expected number)", name)
	}
	var x float64
	if err := f.Decode(&x); err != nil {
		return nil, fmt.Errorf("invalid value for field %s: %v", name, err)
	}
	return &x, nil
}
