package pipeline

import "github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"

// Source describes where one function input comes from: a record field
// path, or a literal constant fixed in the pipeline specification.
type Source struct {
	Path    string
	Literal waveform.Value
}

// FromPath builds a Source reading a record field.
func FromPath(path string) Source { return Source{Path: path} }

// FromLiteral builds a Source carrying a constant value.
func FromLiteral(v waveform.Value) Source { return Source{Literal: v} }

// IsLiteral reports whether the source carries a constant.
func (s Source) IsLiteral() bool { return s.Literal != nil }

// StepSpec is one declared pipeline step: a registered function, a
// mapping from its formal parameter names to input sources, fixed
// parameters, and the record path receiving the return value.
type StepSpec struct {
	Name       string
	Function   string
	Inputs     map[string]Source
	Params     map[string]waveform.Value
	OutputPath string
}
