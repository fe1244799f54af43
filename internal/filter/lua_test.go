package filter

import (
	"testing"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

func luaChain(t *testing.T, script string) *Chain {
	t.Helper()
	c, err := Compile([]Spec{{Name: "lua", Params: Params{"script": script}}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return c
}

func TestLuaFieldAccess(t *testing.T) {
	c := luaChain(t, `return field("metadata/flags/quality") == 1`)
	pass := newRec(t, map[string]waveform.Value{"metadata/flags/quality": waveform.Scalar(1)})
	fail := newRec(t, map[string]waveform.Value{"metadata/flags/quality": waveform.Scalar(0)})
	if !c.Keep(pass) {
		t.Fatal("matching record rejected")
	}
	if c.Keep(fail) {
		t.Fatal("non-matching record kept")
	}
}

func TestLuaMissingFieldIsNil(t *testing.T) {
	c := luaChain(t, `return field("metadata/flags/quality") ~= nil`)
	if c.Keep(newRec(t, nil)) {
		t.Fatal("missing field did not read as nil")
	}
}

func TestLuaShotGlobal(t *testing.T) {
	c := luaChain(t, `return shot == "test-shot"`)
	if !c.Keep(newRec(t, nil)) {
		t.Fatal("shot global not set")
	}
}

func TestLuaSyntaxErrorFailsCompile(t *testing.T) {
	_, err := Compile([]Spec{{Name: "lua", Params: Params{"script": "return (("}}})
	if err == nil {
		t.Fatal("syntax error not caught at compile time")
	}
}

func TestLuaMissingScript(t *testing.T) {
	if _, err := Compile([]Spec{{Name: "lua"}}); err == nil {
		t.Fatal("lua filter without script accepted")
	}
}

func TestLuaRuntimeErrorRejects(t *testing.T) {
	c := luaChain(t, `error("boom")`)
	if c.Keep(newRec(t, nil)) {
		t.Fatal("script raising an error kept the record")
	}
}

func TestLuaNonBooleanReturnRejects(t *testing.T) {
	c := luaChain(t, `return 42`)
	if c.Keep(newRec(t, nil)) {
		t.Fatal("non-boolean return kept the record")
	}
}

func TestLuaSandboxExcludesIOAndOS(t *testing.T) {
	c := luaChain(t, `return io == nil and os == nil and require == nil and dofile == nil`)
	if !c.Keep(newRec(t, nil)) {
		t.Fatal("sandbox exposes io, os, require or dofile")
	}
}

func TestLuaAllowedLibsAvailable(t *testing.T) {
	c := luaChain(t, `return math.floor(1.5) == 1 and string.upper("a") == "A" and #({1, 2}) == 2`)
	if !c.Keep(newRec(t, nil)) {
		t.Fatal("allowlisted libraries unavailable")
	}
}

func TestLuaTimeoutRejectsRunawayScript(t *testing.T) {
	c, err := Compile([]Spec{{Name: "lua", Params: Params{
		"script":     `while true do end`,
		"timeout_ms": 50.0,
	}}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.Keep(newRec(t, nil)) {
		t.Fatal("runaway script kept the record")
	}
}
