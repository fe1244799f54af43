package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

func parseFilters(v cue.Value) (Filters, error) {
	var f Filters
	fv := v.LookupPath(cue.ParsePath("filters"))
	if !fv.Exists() {
		return f, nil
	}

	bv := fv.LookupPath(cue.ParsePath("boundary"))
	if bv.Exists() {
		if bv.Kind() != cue.ListKind {
			return f, fmt.Errorf("invalid type for field: filters.boundary (expected list of rings)")
		}
		if err := bv.Decode(&f.Boundary); err != nil {
			return f, fmt.Errorf("invalid filters.boundary: %v", err)
		}
	}
	if err := optString(fv, "dateRange", &f.DateRange); err != nil {
		return f, err
	}

	var err error
	if f.QualityFlag, err = optNumber(fv, "qualityFlag"); err != nil {
		return f, err
	}
	if f.MinModes, err = optNumber(fv, "minModes"); err != nil {
		return f, err
	}
	if f.MinTreecover, err = optNumber(fv, "minTreecover"); err != nil {
		return f, err
	}
	if f.MinSeparation, err = optNumber(fv, "minSeparation"); err != nil {
		return f, err
	}
	if err := optString(fv, "lua", &f.Lua); err != nil {
		return f, err
	}
	return f, nil
}

func parseParameters(v cue.Value) (map[string]Parameter, error) {
	pv := v.LookupPath(cue.ParsePath("parameters"))
	if !pv.Exists() {
		return nil, nil
	}
	out := map[string]Parameter{}
	fields, err := pv.Fields()
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %v", err)
	}
	for fields.Next() {
		name := fields.Selector().Unquoted()
		ev := fields.Value()
		var p Parameter
		if p.Scalar, err = optNumber(ev, "scalar"); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		if err := optString(ev, "table", &p.Table); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		if p.Scalar == nil && p.Table == "" {
			return nil, fmt.Errorf("parameter %q: needs scalar or table", name)
		}
		if p.Scalar != nil && p.Table != "" {
			return nil, fmt.Errorf("parameter %q: scalar and table are mutually exclusive", name)
		}
		out[name] = p
	}
	return out, nil
}
