package pipeline

import (
	"fmt"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// Run executes the steps in declared order against one record.
//
// A missing input field or a function failure marks the record failed
// with a reason naming the step, and stops processing that record; it
// never aborts the batch. On success the return value is stored at the
// step's output path and execution continues.
func Run(rec *waveform.Record, steps []StepSpec, reg *Registry) {
	for _, step := range steps {
		if rec.Failed() {
			return
		}
		fn, _, err := reg.Resolve(step.Function)
		if err != nil {
			rec.MarkFailed(fmt.Sprintf("step %s: %v", step.Name, err))
			return
		}

		args := make(Args, len(step.Inputs)+len(step.Params))
		ok := true
		for name, src := range step.Inputs {
			if src.IsLiteral() {
				args[name] = src.Literal
				continue
			}
			v, err := rec.Get(src.Path)
			if err != nil {
				rec.MarkFailed(fmt.Sprintf("step %s: input %s: %v", step.Name, name, err))
				ok = false
				break
			}
			args[name] = v
		}
		if !ok {
			return
		}
		for name, v := range step.Params {
			args[name] = v
		}

		out, err := invoke(fn, args)
		if err != nil {
			rec.MarkFailed(fmt.Sprintf("step %s: %v", step.Name, err))
			return
		}
		if err := rec.Set(step.OutputPath, out); err != nil {
			rec.MarkFailed(fmt.Sprintf("step %s: output %s: %v", step.Name, step.OutputPath, err))
			return
		}
	}
}

// invoke calls fn, converting a panic in a transformation function into
// an ordinary error so one malformed waveform cannot abort a batch.
func invoke(fn Func, args Args) (out waveform.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("function panicked: %v", r)
		}
	}()
	return fn(args)
}
