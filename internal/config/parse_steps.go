package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

// parseSteps extracts the optional pipeline step list. An input entry
// may be a field path string, a number literal, or a list-of-numbers
// literal; params are numbers or number lists.
func parseSteps(v cue.Value) ([]Step, error) {
	pv := v.LookupPath(cue.ParsePath("pipeline"))
	if !pv.Exists() {
		return nil, nil
	}
	if pv.Kind() != cue.ListKind {
		return nil, fmt.Errorf("invalid type for field: pipeline (expected list)")
	}
	iter, err := pv.List()
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline: %v", err)
	}
	var steps []Step
	for i := 0; iter.Next(); i++ {
		step, err := parseStep(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("pipeline step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("pipeline is empty")
	}
	return steps, nil
}

func parseStep(sv cue.Value) (Step, error) {
	var s Step
	if err := requireString(sv, "name", &s.Name); err != nil {
		return Step{}, err
	}
	if err := requireString(sv, "function", &s.Function); err != nil {
		return Step{}, err
	}
	if err := requireString(sv, "output", &s.Output); err != nil {
		return Step{}, err
	}

	inv := sv.LookupPath(cue.ParsePath("inputs"))
	if inv.Exists() {
		s.Inputs = map[string]InputSource{}
		fields, err := inv.Fields()
		if err != nil {
			return Step{}, fmt.Errorf("invalid inputs: %v", err)
		}
		for fields.Next() {
			name := fields.Selector().Unquoted()
			src, err := parseInputSource(fields.Value())
			if err != nil {
				return Step{}, fmt.Errorf("input %q: %w", name, err)
			}
			s.Inputs[name] = src
		}
	}

	prv := sv.LookupPath(cue.ParsePath("params"))
	if prv.Exists() {
		s.Params = map[string]any{}
		fields, err := prv.Fields()
		if err != nil {
			return Step{}, fmt.Errorf("invalid params: %v", err)
		}
		for fields.Next() {
			name := fields.Selector().Unquoted()
			val, err := parseNumberOrList(fields.Value())
			if err != nil {
				return Step{}, fmt.Errorf("param %q: %w", name, err)
			}
			s.Params[name] = val
		}
	}
	return s, nil
}

func parseInputSource(fv cue.Value) (InputSource, error) {
	switch fv.Kind() {
	case cue.StringKind:
		var path string
		if err := fv.Decode(&path); err != nil {
			return InputSource{}, err
		}
		return InputSource{Path: path}, nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		var x float64
		if err := fv.Decode(&x); err != nil {
			return InputSource{}, err
		}
		return InputSource{Scalar: &x}, nil
	case cue.ListKind:
		var xs []float64
		if err := fv.Decode(&xs); err != nil {
			return InputSource{}, err
		}
		return InputSource{Array: xs}, nil
	default:
		return InputSource{}, fmt.Errorf("expected field path, number, or number list")
	}
}

// parseNumberOrList returns a float64 or []float64.
func parseNumberOrList(fv cue.Value) (any, error) {
	switch fv.Kind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		var x float64
		if err := fv.Decode(&x); err != nil {
			return nil, err
		}
		return x, nil
	case cue.ListKind:
		var xs []float64
		if err := fv.Decode(&xs); err != nil {
			return nil, err
		}
		return xs, nil
	default:
		return nil, fmt.Errorf("expected number or number list")
	}
}
