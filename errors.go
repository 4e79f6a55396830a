package ocio

import "fmt"

// DomainError reports a grid-level failure: unsupported dimensions, content
// that does not match the recorded dimensions, or an import buffer of the
// wrong size.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string { return e.Msg }

func DomainErrorf(format string, a ...any) *DomainError {
	return &DomainError{Msg: fmt.Sprintf(format, a...)}
}

// ConfigError reports a node-level failure: missing bit depths, an
// interpolation the node cannot run, or operations combined in ways their
// recorded depths forbid.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func ConfigErrorf(format string, a ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, a...)}
}
