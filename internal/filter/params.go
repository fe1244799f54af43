package filter

import "fmt"

func floatParam(params Params, name string, def float64) (float64, error) {
	v, ok := params[name]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("parameter %q: expected number, got %T", name, v)
	}
}

func stringParam(params Params, name string) (string, error) {
	v, ok := params[name]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q: expected string, got %T", name, v)
	}
	return s, nil
}
