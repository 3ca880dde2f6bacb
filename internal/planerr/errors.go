// Package planerr defines the error taxonomy used while turning a job
// description into task and model-path graphs.
//
// Every failure carries one of four kinds. Callers match on kind with
// errors.Is and read the step and chain context from *Error.
package planerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructural reports a malformed or cyclic network/chain structure.
	ErrStructural = errors.New("structural error")
	// ErrConfiguration reports a strategy that under-specifies or contradicts the network.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound reports a chain lacking an expected compute-task destination.
	ErrNotFound = errors.New("not found")
	// ErrIdentifier reports a resource specification that cannot be resolved.
	ErrIdentifier = errors.New("identifier error")
)

// Error is a classified planning failure.
type Error struct {
	Kind  error
	Step  string
	Chain string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Step != "" {
		fmt.Fprintf(&sb, " [step=%s]", e.Step)
	}
	if e.Chain != "" {
		fmt.Fprintf(&sb, " [chain=%s]", e.Chain)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool { return e != nil && e.Kind == target }

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

func newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Structuralf returns an ErrStructural error.
func Structuralf(format string, args ...any) error { return newf(ErrStructural, format, args...) }

// Configurationf returns an ErrConfiguration error.
func Configurationf(format string, args ...any) error { return newf(ErrConfiguration, format, args...) }

// NotFoundf returns an ErrNotFound error.
func NotFoundf(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

// Identifierf returns an ErrIdentifier error.
func Identifierf(format string, args ...any) error { return newf(ErrIdentifier, format, args...) }

// Wrap classifies an arbitrary error. If err is already a *Error it is returned as is.
func Wrap(kind error, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	e := newf(kind, format, args...)
	e.Err = err
	return e
}

// WithStep records the initialization step that failed. An existing step is kept.
func WithStep(err error, step string) error {
	return annotate(err, func(e *Error) {
		if e.Step == "" {
			e.Step = step
		}
	})
}

// WithChain records the chain being processed. An existing chain is kept.
func WithChain(err error, chain string) error {
	return annotate(err, func(e *Error) {
		if e.Chain == "" {
			e.Chain = chain
		}
	})
}

func annotate(err error, fn func(*Error)) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if !errors.As(err, &pe) {
		return err
	}
	cp := *pe
	fn(&cp)
	return &cp
}

// KindOf returns a short label for metrics and logs.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrStructural):
		return "structural"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIdentifier):
		return "identifier"
	default:
		return "unknown"
	}
}
