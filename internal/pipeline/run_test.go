package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

func runRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.MustRegister("scale", func(args Args) (waveform.Value, error) {
		a, _ := waveform.AsArray(args["wf"])
		k, _ := waveform.AsScalar(args["factor"])
		out := make([]float64, len(a))
		for i, v := range a {
			out[i] = v * k
		}
		return waveform.Array(out), nil
	}, []string{"wf", "factor"})
	r.MustRegister("fail", func(Args) (waveform.Value, error) {
		return nil, errors.New("bad waveform")
	}, nil)
	r.MustRegister("explode", func(Args) (waveform.Value, error) {
		panic("index out of range")
	}, nil)
	return r
}

func TestRunStoresOutputs(t *testing.T) {
	rec := waveform.New("s1")
	if err := rec.Set("raw/wf", waveform.Array{1, 2}); err != nil {
		t.Fatal(err)
	}
	steps := []StepSpec{
		{Name: "double", Function: "scale",
			Inputs:     map[string]Source{"wf": FromPath("raw/wf")},
			Params:     map[string]waveform.Value{"factor": waveform.Scalar(2)},
			OutputPath: "processed/doubled"},
		{Name: "quad", Function: "scale",
			Inputs:     map[string]Source{"wf": FromPath("processed/doubled")},
			Params:     map[string]waveform.Value{"factor": waveform.Scalar(2)},
			OutputPath: "results/quadrupled"},
	}
	Run(rec, steps, runRegistry(t))
	if rec.Failed() {
		t.Fatalf("record failed: %s", rec.FailReason())
	}
	v, err := rec.Get("results/quadrupled")
	if err != nil {
		t.Fatalf("Get result: %v", err)
	}
	a, _ := waveform.AsArray(v)
	if len(a) != 2 || a[0] != 4 || a[1] != 8 {
		t.Fatalf("chained result: %v", a)
	}
}

func TestRunMissingInputFailsRecord(t *testing.T) {
	rec := waveform.New("s1")
	steps := []StepSpec{
		{Name: "height", Function: "scale",
			Inputs:     map[string]Source{"wf": FromPath("raw/elev/bottom")},
			Params:     map[string]waveform.Value{"factor": waveform.Scalar(1)},
			OutputPath: "processed/ht"},
		{Name: "later", Function: "fail", OutputPath: "processed/unreached"},
	}
	Run(rec, steps, runRegistry(t))
	if !rec.Failed() {
		t.Fatal("record with missing input did not fail")
	}
	reason := rec.FailReason()
	if !strings.Contains(reason, "step height") || !strings.Contains(reason, "raw/elev/bottom") {
		t.Fatalf("reason does not name step and path: %q", reason)
	}
	if rec.Has("processed/unreached") {
		t.Fatal("later step ran after failure")
	}
}

func TestRunFunctionErrorFailsRecord(t *testing.T) {
	rec := waveform.New("s1")
	steps := []StepSpec{{Name: "noise", Function: "fail", OutputPath: "processed/x"}}
	Run(rec, steps, runRegistry(t))
	if !rec.Failed() {
		t.Fatal("record did not fail")
	}
	if got := rec.FailReason(); !strings.Contains(got, "step noise: bad waveform") {
		t.Fatalf("reason: %q", got)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	rec := waveform.New("s1")
	steps := []StepSpec{{Name: "boom", Function: "explode", OutputPath: "processed/x"}}
	Run(rec, steps, runRegistry(t))
	if !rec.Failed() {
		t.Fatal("panicking step did not fail the record")
	}
	got := rec.FailReason()
	if !strings.Contains(got, "function panicked") || !strings.Contains(got, "index out of range") {
		t.Fatalf("reason: %q", got)
	}
}

func TestRunSkipsAlreadyFailedRecord(t *testing.T) {
	rec := waveform.New("s1")
	rec.MarkFailed("upstream")
	steps := []StepSpec{{Name: "s", Function: "fail", OutputPath: "processed/x"}}
	Run(rec, steps, runRegistry(t))
	if got := rec.FailReason(); got != "upstream" {
		t.Fatalf("reason overwritten: %q", got)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	reg := runRegistry(t)
	steps := []StepSpec{{Name: "double", Function: "scale",
		Inputs:     map[string]Source{"wf": FromPath("raw/wf")},
		Params:     map[string]waveform.Value{"factor": waveform.Scalar(3)},
		OutputPath: "results/tripled"}}
	var first []float64
	for i := 0; i < 5; i++ {
		rec := waveform.New("s1")
		if err := rec.Set("raw/wf", waveform.Array{1.5, -2, 0}); err != nil {
			t.Fatal(err)
		}
		Run(rec, steps, reg)
		v, err := rec.Get("results/tripled")
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		a, _ := waveform.AsArray(v)
		if first == nil {
			first = a
			continue
		}
		for j := range a {
			if a[j] != first[j] {
				t.Fatalf("run %d diverged at bin %d: %v vs %v", i, j, a[j], first[j])
			}
		}
	}
}
