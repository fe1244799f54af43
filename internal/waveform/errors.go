package waveform

import "errors"

// ErrInvalidPath reports a malformed or out-of-namespace field path.
var ErrInvalidPath = errors.New("invalid field path")

// FieldNotFoundError is returned by Get when no data exists at a path.
type FieldNotFoundError struct{ Path string }

func (e FieldNotFoundError) Error() string { return "field not found: " + e.Path }

// DuplicateFieldError is returned by Set when a path is already populated.
// Fields are write-once for the lifetime of a record.
type DuplicateFieldError struct{ Path string }

func (e DuplicateFieldError) Error() string { return "field already written: " + e.Path }

// IsFieldNotFound reports whether err is a FieldNotFoundError.
func IsFieldNotFound(err error) bool {
	var fnf FieldNotFoundError
	return errors.As(err, &fnf)
}

// IsDuplicateField reports whether err is a DuplicateFieldError.
func IsDuplicateField(err error) bool {
	var dup DuplicateFieldError
	return errors.As(err, &dup)
}
