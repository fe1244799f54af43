package algorithms

import (
	"fmt"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

func scalarArg(args pipeline.Args, name string) (float64, error) {
	v, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	s, ok := waveform.AsScalar(v)
	if !ok {
		return 0, fmt.Errorf("argument %q: expected scalar, got %T", name, v)
	}
	return s, nil
}

func arrayArg(args pipeline.Args, name string) ([]float64, error) {
	v, ok := args[name]
	if !ok {
		return nil, fmt.Errorf("missing argument %q", name)
	}
	a, ok := waveform.AsArray(v)
	if !ok {
		return nil, fmt.Errorf("argument %q: expected array, got %T", name, v)
	}
	return a, nil
}

func indexArg(args pipeline.Args, name string, n int) (int, error) {
	s, err := scalarArg(args, name)
	if err != nil {
		return 0, err
	}
	i := int(s)
	if float64(i) != s || i < 0 || i > n {
		return 0, fmt.Errorf("argument %q: index %v out of range [0, %d]", name, s, n)
	}
	return i, nil
}
