package mask

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a construction-time failure per the error taxonomy:
// malformed regex, precondition violation on lookup, and resource
// exhaustion are the only fatal kinds dmatch/mask construction can surface.
type ErrorKind int

const (
	// ErrMalformedTerminal indicates a terminal's regex source failed to
	// compile, either at DFABuilder.Build or during case-3 recursion.
	ErrMalformedTerminal ErrorKind = iota
	// ErrUnknownKey indicates a lookup used a (state, sequence) key never
	// populated at construction time — a programming error, not user input.
	ErrUnknownKey
	// ErrBudgetExceeded indicates the mask store's estimated size exceeds a
	// host-supplied budget. Config.Validate also reports a non-positive Alpha
	// under this kind.
	ErrBudgetExceeded
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedTerminal:
		return "MalformedRegex"
	case ErrUnknownKey:
		return "UnknownKey"
	case ErrBudgetExceeded:
		return "BudgetExceeded"
	default:
		return "Unknown"
	}
}

// Error wraps a classified mask-construction failure with enough context
// (the offending terminal, a size estimate) for the host to diagnose it
// without re-deriving state.
type Error struct {
	Kind     ErrorKind
	Terminal string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Terminal != "" {
		return fmt.Sprintf("mask: %s: %s (terminal %q): %v", e.Kind, e.Message, e.Terminal, e.Cause)
	}
	return fmt.Sprintf("mask: %s: %s: %v", e.Kind, e.Message, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// errBudget builds the cause error for a budget overrun, naming both the
// estimate and the configured ceiling so the host can see by how much it
// was exceeded without re-running EstimateSize itself.
func errBudget(estimated, budget uint64) error {
	return fmt.Errorf("estimated %d bits exceeds budget of %d bits", estimated, budget)
}

// wrapCompileError builds a malformed-regex Error, preserving the original
// compiler error via github.com/pkg/errors so callers retain a stack trace
// at the point compilation actually failed.
func wrapCompileError(terminal string, cause error) error {
	return &Error{
		Kind:     ErrMalformedTerminal,
		Terminal: terminal,
		Message:  "failed to compile terminal regex",
		Cause:    errors.WithStack(cause),
	}
}
