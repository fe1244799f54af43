package filter

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

const defaultLuaTimeout = 250 * time.Millisecond

// buildLua compiles an inline Lua predicate. The script runs in a
// sandbox with the base, table, string and math libraries only, a
// deadline, and a field(path) accessor over the record; it must return
// a boolean. Syntax errors fail at compile time; a runtime error on a
// record rejects that record.
func buildLua(params Params) (Predicate, error) {
	script, err := stringParam(params, "script")
	if err != nil {
		return nil, err
	}
	if script == "" {
		return nil, errors.New(`parameter "script" is required`)
	}
	timeoutMs, err := floatParam(params, "timeout_ms", 0)
	if err != nil {
		return nil, err
	}
	timeout := defaultLuaTimeout
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}

	// Syntax check once so a broken script fails before any record.
	check := lua.NewState(lua.Options{SkipOpenLibs: true})
	_, err = check.LoadString(script)
	check.Close()
	if err != nil {
		return nil, fmt.Errorf("invalid script: %v", err)
	}

	return func(rec *waveform.Record) bool {
		keep, err := evalLuaPredicate(script, timeout, rec)
		if err != nil {
			return false
		}
		return keep
	}, nil
}

func evalLuaPredicate(script string, timeout time.Duration, rec *waveform.Record) (bool, error) {
	L := newSandboxState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("field", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		v, err := rec.Get(path)
		if err != nil {
			L.Push(lua.LNil)
			return 1
		}
		switch x := v.(type) {
		case waveform.Scalar:
			L.Push(lua.LNumber(x))
		case waveform.Text:
			L.Push(lua.LString(x))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
	L.SetGlobal("shot", lua.LString(rec.Shot()))

	if err := L.DoString(script); err != nil {
		return false, err
	}
	ret := L.Get(-1)
	b, ok := ret.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("script returned %s, want boolean", ret.Type())
	}
	return bool(b), nil
}

// newSandboxState opens only the allowlisted libraries; io, os and
// package loading stay unavailable.
func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	open := func(name string, fn lua.LGFunction) {
		L.Push(L.NewFunction(fn))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	open(lua.BaseLibName, lua.OpenBase)
	open(lua.TabLibName, lua.OpenTable)
	open(lua.StringLibName, lua.OpenString)
	open(lua.MathLibName, lua.OpenMath)
	// The base library reaches the filesystem through these.
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	return L
}
