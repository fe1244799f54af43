package waveform

// Value is the closed set of data kinds a record field may hold:
// a scalar number, a numeric array, a text string, or a nested mapping.
type Value interface {
	kind() string
}

// Scalar is a single numeric field value.
type Scalar float64

// Array is a fixed-length numeric field value.
type Array []float64

// Text is a descriptive string field value.
type Text string

// Mapping is a nested group of named field values. Saving a Mapping
// registers each of its terminal entries as an addressable sub-path.
type Mapping map[string]Value

func (Scalar) kind() string  { return "scalar" }
func (Array) kind() string   { return "array" }
func (Text) kind() string    { return "text" }
func (Mapping) kind() string { return "mapping" }

// AsScalar returns the float64 behind a Scalar value.
func AsScalar(v Value) (float64, bool) {
	s, ok := v.(Scalar)
	return float64(s), ok
}

// AsArray returns the slice behind an Array value.
func AsArray(v Value) ([]float64, bool) {
	a, ok := v.(Array)
	return []float64(a), ok
}

// AsText returns the string behind a Text value.
func AsText(v Value) (string, bool) {
	t, ok := v.(Text)
	return string(t), ok
}
