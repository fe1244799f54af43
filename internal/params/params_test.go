package params

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

func TestScalarAppliesToEveryRecord(t *testing.T) {
	l := Loader{Sources: map[string]Source{"hse": Scalar(1.7)}}
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	recs := []*waveform.Record{waveform.New("a"), waveform.New("b")}
	if err := l.Apply(recs); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, rec := range recs {
		v, err := rec.Get("metadata/parameters/hse")
		if err != nil {
			t.Fatalf("shot %s: %v", rec.Shot(), err)
		}
		if s, _ := waveform.AsScalar(v); s != 1.7 {
			t.Fatalf("shot %s: got %v", rec.Shot(), s)
		}
	}
}

func TestLoaderPathsSorted(t *testing.T) {
	l := Loader{Sources: map[string]Source{
		"k_allom": Scalar(2),
		"hse":     Scalar(1.7),
	}}
	want := []string{"metadata/parameters/hse", "metadata/parameters/k_allom"}
	if got := l.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Paths: %v", got)
	}
}

func writeTable(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "table.csv")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadTableWithHeader(t *testing.T) {
	tb, err := LoadTable(writeTable(t, "shot_number,hse\nshot-1,1.5\nshot-2,2.0\n"))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	v, ok := tb.Value(waveform.New("shot-2"))
	if !ok || v != 2.0 {
		t.Fatalf("Value shot-2: %v %v", v, ok)
	}
	if _, ok := tb.Value(waveform.New("shot-99")); ok {
		t.Fatal("unknown shot resolved")
	}
}

func TestLoadTableWithoutHeader(t *testing.T) {
	tb, err := LoadTable(writeTable(t, "shot-1,1.5\nshot-2,2.0\n"))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if v, ok := tb.Value(waveform.New("shot-1")); !ok || v != 1.5 {
		t.Fatalf("Value shot-1: %v %v", v, ok)
	}
}

func TestLoadTableRejectsDuplicates(t *testing.T) {
	_, err := LoadTable(writeTable(t, "shot-1,1.5\nshot-1,2.0\n"))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("want duplicate error, got %v", err)
	}
}

func TestLoadTableRejectsNonNumericBody(t *testing.T) {
	_, err := LoadTable(writeTable(t, "shot-1,1.5\nshot-2,abc\n"))
	if err == nil || !strings.Contains(err.Error(), "non-numeric") {
		t.Fatalf("want non-numeric error, got %v", err)
	}
}

func TestLoadTableRejectsEmpty(t *testing.T) {
	if _, err := LoadTable(writeTable(t, "shot_number,hse\n")); err == nil {
		t.Fatal("header-only table accepted")
	}
}

func TestApplySkipsShotsWithoutValue(t *testing.T) {
	tb, err := LoadTable(writeTable(t, "shot-1,1.5\n"))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	l := Loader{Sources: map[string]Source{"hse": tb}}
	known := waveform.New("shot-1")
	unknown := waveform.New("shot-2")
	if err := l.Apply([]*waveform.Record{known, unknown}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !known.Has("metadata/parameters/hse") {
		t.Fatal("known shot missing parameter")
	}
	if unknown.Has("metadata/parameters/hse") {
		t.Fatal("unknown shot got a parameter")
	}
}
