package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "run.cue")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const minimalConfig = `
configVersion: "1"
input: shots: "shots.yaml"
output: path: "results.csv"
`

func TestParseMinimal(t *testing.T) {
	r, err := Parse(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Input.Shots != "shots.yaml" || r.Output.Path != "results.csv" {
		t.Fatalf("parsed: %+v", r)
	}
	if r.Workers != 0 || len(r.Steps) != 0 {
		t.Fatalf("defaults: %+v", r)
	}
}

func TestParseRejectsWrongExtension(t *testing.T) {
	p := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(p, []byte(minimalConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(p); err == nil || !strings.Contains(err.Error(), ".cue") {
		t.Fatalf("non-cue config accepted: %v", err)
	}
}

func TestParseRejectsVersionMismatch(t *testing.T) {
	_, err := Parse(writeConfig(t, `configVersion: "2"`))
	if err == nil || !strings.Contains(err.Error(), "configVersion") {
		t.Fatalf("want version error, got %v", err)
	}
	if _, err := Parse(writeConfig(t, `workers: 2`)); err == nil {
		t.Fatal("missing configVersion accepted")
	}
}

func TestParseRejectsNegativeWorkers(t *testing.T) {
	_, err := Parse(writeConfig(t, minimalConfig+"workers: -1\n"))
	if err == nil || !strings.Contains(err.Error(), "workers") {
		t.Fatalf("negative workers accepted: %v", err)
	}
}

func TestParsePipelineSteps(t *testing.T) {
	cfg := minimalConfig + `
pipeline: [
	{
		name:     "height"
		function: "calc_height"
		inputs: {
			wf:          "raw/wf"
			elev_top:    "raw/elev/top"
			elev_bottom: "raw/elev/bottom"
			elev_ground: "raw/elev/ground"
		}
		output: "processed/ht"
	},
	{
		name:     "smooth"
		function: "smooth_waveform"
		inputs: wf: "raw/wf"
		params: sd: 3
		output: "processed/smooth"
	},
]
`
	r, err := Parse(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(r.Steps) != 2 {
		t.Fatalf("steps: %+v", r.Steps)
	}
	h := r.Steps[0]
	if h.Name != "height" || h.Function != "calc_height" || h.Output != "processed/ht" {
		t.Fatalf("step: %+v", h)
	}
	if src := h.Inputs["elev_top"]; src.Path != "raw/elev/top" {
		t.Fatalf("input source: %+v", src)
	}
	s := r.Steps[1]
	if sd, ok := s.Params["sd"].(float64); !ok || sd != 3 {
		t.Fatalf("param sd: %+v", s.Params)
	}
}

func TestParseLiteralInputs(t *testing.T) {
	cfg := minimalConfig + `
pipeline: [{
	name:     "bi"
	function: "calc_biomass_index"
	inputs: {
		dp_dz: "processed/dp_dz"
		dz:    "processed/dz"
		ht:    "processed/ht"
		hse:   1.7
	}
	output: "results/biomass_index"
}]
`
	r, err := Parse(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	src := r.Steps[0].Inputs["hse"]
	if src.Scalar == nil || *src.Scalar != 1.7 {
		t.Fatalf("literal input: %+v", src)
	}
}

func TestParseStepMissingFields(t *testing.T) {
	cfg := minimalConfig + `
pipeline: [{name: "x", function: "f"}]
`
	_, err := Parse(writeConfig(t, cfg))
	if err == nil || !strings.Contains(err.Error(), "output") {
		t.Fatalf("step without output accepted: %v", err)
	}
}

func TestParseFilters(t *testing.T) {
	cfg := minimalConfig + `
filters: {
	boundary: [[[-74.5, 40.0], [-73.5, 40.0], [-73.5, 41.0], [-74.5, 41.0]]]
	dateRange:     "2022-06-01T00:00:00Z,2022-06-30T00:00:00Z"
	qualityFlag:   1
	minModes:      2
	minTreecover:  10
	minSeparation: 15
	lua:           "return true"
}
`
	r, err := Parse(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f := r.Filters
	if len(f.Boundary) != 1 || len(f.Boundary[0]) != 4 {
		t.Fatalf("boundary: %+v", f.Boundary)
	}
	if f.QualityFlag == nil || *f.QualityFlag != 1 {
		t.Fatalf("qualityFlag: %+v", f.QualityFlag)
	}
	if f.MinSeparation == nil || *f.MinSeparation != 15 {
		t.Fatalf("minSeparation: %+v", f.MinSeparation)
	}
	if f.DateRange == "" || f.Lua == "" {
		t.Fatalf("filters: %+v", f)
	}
}

func TestParseParameters(t *testing.T) {
	cfg := minimalConfig + `
parameters: {
	hse:     scalar: 1.7
	k_allom: table:  "k_allom.csv"
}
`
	r, err := Parse(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p := r.Parameters["hse"]; p.Scalar == nil || *p.Scalar != 1.7 {
		t.Fatalf("hse: %+v", p)
	}
	if p := r.Parameters["k_allom"]; p.Table != "k_allom.csv" {
		t.Fatalf("k_allom: %+v", p)
	}
}

func TestParseParameterExclusivity(t *testing.T) {
	cfg := minimalConfig + `
parameters: hse: {scalar: 1.7, table: "hse.csv"}
`
	if _, err := Parse(writeConfig(t, cfg)); err == nil {
		t.Fatal("scalar+table parameter accepted")
	}
	cfg = minimalConfig + `
parameters: hse: {}
`
	if _, err := Parse(writeConfig(t, cfg)); err == nil {
		t.Fatal("empty parameter accepted")
	}
}
