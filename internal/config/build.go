package config

import (
	"fmt"
	"path/filepath"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/algorithms"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/filter"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/params"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// BuildSteps converts the configured pipeline into step specifications.
// With no configured steps the built-in biomass pipeline applies; its
// height scaling exponent comes from a configured "hse" parameter when
// present, else the built-in default.
func BuildSteps(r Run) []pipeline.StepSpec {
	if len(r.Steps) == 0 {
		hse := pipeline.FromLiteral(waveform.Scalar(algorithms.DefaultHSE))
		if _, ok := r.Parameters["hse"]; ok {
			hse = pipeline.FromPath("metadata/parameters/hse")
		}
		return algorithms.BiwfPipeline(hse)
	}

	steps := make([]pipeline.StepSpec, 0, len(r.Steps))
	for _, s := range r.Steps {
		spec := pipeline.StepSpec{
			Name:       s.Name,
			Function:   s.Function,
			OutputPath: s.Output,
		}
		if len(s.Inputs) > 0 {
			spec.Inputs = make(map[string]pipeline.Source, len(s.Inputs))
			for name, src := range s.Inputs {
				spec.Inputs[name] = buildSource(src)
			}
		}
		if len(s.Params) > 0 {
			spec.Params = make(map[string]waveform.Value, len(s.Params))
			for name, v := range s.Params {
				spec.Params[name] = buildValue(v)
			}
		}
		steps = append(steps, spec)
	}
	return steps
}

func buildSource(src InputSource) pipeline.Source {
	switch {
	case src.Scalar != nil:
		return pipeline.FromLiteral(waveform.Scalar(*src.Scalar))
	case src.Array != nil:
		return pipeline.FromLiteral(waveform.Array(src.Array))
	default:
		return pipeline.FromPath(src.Path)
	}
}

func buildValue(v any) waveform.Value {
	switch x := v.(type) {
	case float64:
		return waveform.Scalar(x)
	case []float64:
		return waveform.Array(x)
	default:
		// parseNumberOrList admits nothing else.
		panic(fmt.Sprintf("unsupported param value %T", v))
	}
}

// BuildFilterSpecs converts the configured filter settings into filter
// specs. Absent settings produce no spec, leaving that filter disabled.
func BuildFilterSpecs(r Run) ([]filter.Spec, error) {
	var specs []filter.Spec
	f := r.Filters
	if f.QualityFlag != nil {
		specs = append(specs, filter.Spec{
			Name:   "quality_flag",
			Params: filter.Params{"value": *f.QualityFlag},
		})
	}
	if f.MinModes != nil {
		specs = append(specs, filter.Spec{
			Name:   "min_modes",
			Params: filter.Params{"min": *f.MinModes},
		})
	}
	if f.MinTreecover != nil {
		specs = append(specs, filter.Spec{
			Name:   "min_treecover",
			Params: filter.Params{"min": *f.MinTreecover},
		})
	}
	if f.MinSeparation != nil {
		specs = append(specs, filter.Spec{
			Name:   "min_separation",
			Params: filter.Params{"min": *f.MinSeparation},
		})
	}
	if len(f.Boundary) > 0 {
		specs = append(specs, filter.Spec{
			Name:   "spatial",
			Params: filter.Params{"rings": f.Boundary},
		})
	}
	if f.DateRange != "" {
		p, err := filter.ParseDateRange(f.DateRange)
		if err != nil {
			return nil, err
		}
		specs = append(specs, filter.Spec{Name: "temporal", Params: p})
	}
	if f.Lua != "" {
		specs = append(specs, filter.Spec{
			Name:   "lua",
			Params: filter.Params{"script": f.Lua},
		})
	}
	return specs, nil
}

// BuildLoader converts the configured parameters into a loader. Table
// paths resolve relative to the config file's directory.
func BuildLoader(r Run, configPath string) (params.Loader, error) {
	l := params.Loader{Sources: map[string]params.Source{}}
	base := filepath.Dir(configPath)
	for name, p := range r.Parameters {
		if p.Scalar != nil {
			l.Sources[name] = params.Scalar(*p.Scalar)
			continue
		}
		path := p.Table
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		t, err := params.LoadTable(path)
		if err != nil {
			return params.Loader{}, err
		}
		l.Sources[name] = t
	}
	return l, nil
}
