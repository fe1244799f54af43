package validate

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

func TestCheckDefaultPipeline(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
input: shots: "shots.yaml"
output: path: "results.csv"
`)
	report, err := check(p)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !report.OK || report.Steps != 10 || report.Filters != 0 {
		t.Fatalf("report: %+v", report)
	}
}

func TestCheckCountsFilters(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
input: shots: "shots.yaml"
output: path: "results.csv"
filters: {
	qualityFlag: 1
	minModes:    2
}
`)
	report, err := check(p)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.Filters != 2 {
		t.Fatalf("report: %+v", report)
	}
}

func TestCheckRejectsUnknownFunction(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
input: shots: "shots.yaml"
output: path: "results.csv"
pipeline: [{
	name:     "height"
	function: "bogus_fun"
	inputs: wf: "raw/wf"
	output: "processed/ht"
}]
`)
	_, err := check(p)
	if err == nil || !strings.Contains(err.Error(), "bogus_fun") {
		t.Fatalf("unknown function accepted: %v", err)
	}
}

func TestCheckRejectsUnsatisfiableInput(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
input: shots: "shots.yaml"
output: path: "results.csv"
pipeline: [{
	name:     "smooth"
	function: "smooth_waveform"
	inputs: wf: "processed/never_made"
	params: sd: 3
	output: "processed/smooth"
}]
`)
	_, err := check(p)
	if err == nil || !strings.Contains(err.Error(), "never_made") {
		t.Fatalf("unsatisfiable input accepted: %v", err)
	}
}
