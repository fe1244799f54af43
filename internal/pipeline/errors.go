package pipeline

import "fmt"

// UnknownFunctionError is returned when a name does not resolve in the
// function registry.
type UnknownFunctionError struct{ Name string }

func (e UnknownFunctionError) Error() string { return "unknown function: " + e.Name }

// DuplicateRegistrationError is returned when a function name is
// registered twice.
type DuplicateRegistrationError struct{ Name string }

func (e DuplicateRegistrationError) Error() string {
	return "function already registered: " + e.Name
}

// ConfigError reports a pipeline specification problem found before any
// record is processed. It names the offending step so a misconfigured
// run fails fast with a usable diagnostic.
type ConfigError struct {
	Step   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pipeline config: step %q: %s", e.Step, e.Reason)
}
