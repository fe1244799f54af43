package filter

import (
	"errors"
	"strings"
	"testing"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

func newRec(t *testing.T, fields map[string]waveform.Value) *waveform.Record {
	t.Helper()
	rec := waveform.New("test-shot")
	for p, v := range fields {
		if err := rec.Set(p, v); err != nil {
			t.Fatalf("Set %s: %v", p, err)
		}
	}
	return rec
}

func TestEmptyChainPassesEverything(t *testing.T) {
	c, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !c.Keep(newRec(t, nil)) {
		t.Fatal("empty chain rejected a record")
	}
	if c.Len() != 0 {
		t.Fatalf("Len: %d", c.Len())
	}
}

func TestCompileUnknownFilter(t *testing.T) {
	_, err := Compile([]Spec{{Name: "elevation"}})
	var unk UnknownFilterError
	if !errors.As(err, &unk) || unk.Name != "elevation" {
		t.Fatalf("want UnknownFilterError{elevation}, got %v", err)
	}
}

func TestCompileNamesFailingFilter(t *testing.T) {
	_, err := Compile([]Spec{{Name: "lua", Params: Params{"script": "return ((("}}})
	if err == nil || !strings.Contains(err.Error(), `filter "lua"`) {
		t.Fatalf("error does not name the filter: %v", err)
	}
}

func TestChainIsConjunction(t *testing.T) {
	c, err := Compile([]Spec{
		{Name: "quality_flag"},
		{Name: "min_modes", Params: Params{"min": 2.0}},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	good := newRec(t, map[string]waveform.Value{
		"metadata/flags/quality":   waveform.Scalar(1),
		"metadata/modes/num_modes": waveform.Scalar(3),
	})
	oneBad := newRec(t, map[string]waveform.Value{
		"metadata/flags/quality":   waveform.Scalar(1),
		"metadata/modes/num_modes": waveform.Scalar(1),
	})
	if !c.Keep(good) {
		t.Fatal("record passing all filters rejected")
	}
	if c.Keep(oneBad) {
		t.Fatal("record failing one filter kept")
	}
}

func TestQualityFlag(t *testing.T) {
	c, err := Compile([]Spec{{Name: "quality_flag"}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	pass := newRec(t, map[string]waveform.Value{"metadata/flags/quality": waveform.Scalar(1)})
	fail := newRec(t, map[string]waveform.Value{"metadata/flags/quality": waveform.Scalar(0)})
	missing := newRec(t, nil)
	if !c.Keep(pass) || c.Keep(fail) {
		t.Fatal("quality_flag default comparison wrong")
	}
	if c.Keep(missing) {
		t.Fatal("record without quality flag kept")
	}
}

func TestMinTreecoverStrict(t *testing.T) {
	c, err := Compile([]Spec{{Name: "min_treecover", Params: Params{"min": 10.0}}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	at := newRec(t, map[string]waveform.Value{"metadata/landcover/modis_treecover": waveform.Scalar(10)})
	above := newRec(t, map[string]waveform.Value{"metadata/landcover/modis_treecover": waveform.Scalar(10.5)})
	if c.Keep(at) {
		t.Fatal("treecover equal to threshold kept, want strict >")
	}
	if !c.Keep(above) {
		t.Fatal("treecover above threshold rejected")
	}
}

func TestMinSeparationReadsRH100(t *testing.T) {
	c, err := Compile([]Spec{{Name: "min_separation", Params: Params{"min": 15.0}}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	rh := make([]float64, 101)
	rh[100] = 20
	tall := newRec(t, map[string]waveform.Value{"raw/rh": waveform.Array(rh)})
	if !c.Keep(tall) {
		t.Fatal("canopy above separation rejected")
	}
	rhShort := make([]float64, 101)
	rhShort[100] = 10
	short := newRec(t, map[string]waveform.Value{"raw/rh": waveform.Array(rhShort)})
	if c.Keep(short) {
		t.Fatal("canopy below separation kept")
	}
	truncated := newRec(t, map[string]waveform.Value{"raw/rh": waveform.Array{1, 2}})
	if c.Keep(truncated) {
		t.Fatal("malformed rh array kept")
	}
}

func TestBadParamType(t *testing.T) {
	_, err := Compile([]Spec{{Name: "min_modes", Params: Params{"min": "two"}}})
	if err == nil {
		t.Fatal("string threshold accepted")
	}
}
