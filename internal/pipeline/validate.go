package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks an ordered step list against the registry and the set
// of field paths guaranteed present on every record before the pipeline
// runs. It runs once, before any record is touched.
//
// Checks, per step in declared order:
//   - the step name is unique within the pipeline
//   - the function name resolves in the registry
//   - input and fixed-parameter names exactly cover the function's
//     declared formal parameters, with no overlap
//   - every input path is satisfiable by a known raw/metadata path or an
//     earlier step's output path
//   - the output path lies under processed/ or results/ and has not been
//     claimed before (fields are write-once)
func Validate(steps []StepSpec, reg *Registry, knownPaths []string) error {
	known := make(map[string]bool, len(knownPaths))
	for _, p := range knownPaths {
		known[strings.Trim(p, "/")] = true
	}
	seen := map[string]bool{}

	for _, step := range steps {
		if step.Name == "" {
			return &ConfigError{Step: step.Name, Reason: "missing step name"}
		}
		if seen[step.Name] {
			return &ConfigError{Step: step.Name, Reason: "duplicate step name"}
		}
		seen[step.Name] = true

		_, declared, err := reg.Resolve(step.Function)
		if err != nil {
			return &ConfigError{Step: step.Name, Reason: err.Error()}
		}
		if err := checkParamCoverage(step, declared); err != nil {
			return err
		}
		for name, src := range step.Inputs {
			if src.IsLiteral() {
				continue
			}
			if !satisfiable(src.Path, known) {
				return &ConfigError{
					Step:   step.Name,
					Reason: fmt.Sprintf("input %q reads %q, which no raw field or earlier step provides", name, src.Path),
				}
			}
		}
		if err := claimOutput(step, known); err != nil {
			return err
		}
	}
	return nil
}

// checkParamCoverage verifies that input names plus fixed parameter
// names match the function's declared formals exactly.
func checkParamCoverage(step StepSpec, declared []string) error {
	want := make(map[string]bool, len(declared))
	for _, p := range declared {
		want[p] = true
	}
	var missing, unknown []string
	for name := range step.Inputs {
		if _, fixed := step.Params[name]; fixed {
			return &ConfigError{
				Step:   step.Name,
				Reason: fmt.Sprintf("parameter %q given as both input and fixed parameter", name),
			}
		}
		if !want[name] {
			unknown = append(unknown, name)
		}
	}
	for name := range step.Params {
		if !want[name] {
			unknown = append(unknown, name)
		}
	}
	for _, p := range declared {
		_, in := step.Inputs[p]
		_, fixed := step.Params[p]
		if !in && !fixed {
			missing = append(missing, p)
		}
	}
	sort.Strings(missing)
	sort.Strings(unknown)
	if len(unknown) > 0 {
		return &ConfigError{
			Step:   step.Name,
			Reason: fmt.Sprintf("function %q has no parameter %s", step.Function, strings.Join(unknown, ", ")),
		}
	}
	if len(missing) > 0 {
		return &ConfigError{
			Step:   step.Name,
			Reason: fmt.Sprintf("function %q parameter %s not supplied", step.Function, strings.Join(missing, ", ")),
		}
	}
	return nil
}

// satisfiable reports whether a path equals a known path or addresses a
// sub-entry beneath one. A step producing a mapping output satisfies
// later reads of the mapping's entries.
func satisfiable(path string, known map[string]bool) bool {
	p := strings.Trim(path, "/")
	if p == "" {
		return false
	}
	for {
		if known[p] {
			return true
		}
		i := strings.LastIndex(p, "/")
		if i < 0 {
			return false
		}
		p = p[:i]
	}
}

// claimOutput validates a step's output path and records it as claimed.
func claimOutput(step StepSpec, known map[string]bool) error {
	out := strings.Trim(step.OutputPath, "/")
	if out == "" {
		return &ConfigError{Step: step.Name, Reason: "missing output path"}
	}
	top := out
	if i := strings.Index(out, "/"); i > 0 {
		top = out[:i]
	}
	if top != "processed" && top != "results" {
		return &ConfigError{
			Step:   step.Name,
			Reason: fmt.Sprintf("output path %q must lie under processed/ or results/", step.OutputPath),
		}
	}
	for p := range known {
		if p == out || strings.HasPrefix(p, out+"/") || strings.HasPrefix(out, p+"/") {
			return &ConfigError{
				Step:   step.Name,
				Reason: fmt.Sprintf("output path %q already claimed by %q", step.OutputPath, p),
			}
		}
	}
	known[out] = true
	return nil
}
