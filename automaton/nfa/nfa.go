// Package nfa compiles lexical terminal regexes into Thompson NFAs.
//
// A terminal is identified by its regex source string. Compilation always
// targets anchored matching: the resulting NFA has a single start state and
// is meant to be fed to automaton/dfa for determinization, never searched
// directly. Capturing groups are not modeled — parenthesized groups compile
// through as plain grouping, since nothing downstream ever reads a capture
// slot.
package nfa

import (
	"fmt"
)

// StateID uniquely identifies an NFA state.
type StateID uint32

// Special state constants.
const (
	// InvalidState represents an invalid/uninitialized state ID.
	InvalidState StateID = 0xFFFFFFFF

	// FailState represents a dead/failure state (no transitions).
	FailState StateID = 0xFFFFFFFE
)

// StateKind identifies the type of NFA state and determines which transitions are valid.
type StateKind uint8

const (
	// StateMatch represents a match (accepting) state.
	StateMatch StateKind = iota

	// StateByteRange represents a single byte or byte range transition [lo, hi].
	StateByteRange

	// StateSparse represents multiple byte transitions, e.g. a character class.
	StateSparse

	// StateSplit represents an epsilon transition to two states (alternation, quantifiers).
	StateSplit

	// StateEpsilon represents an epsilon transition to one state.
	StateEpsilon

	// StateLook represents a zero-width assertion (anchors, word boundary).
	StateLook

	// StateFail represents a dead state with no valid transitions.
	StateFail
)

// String returns a human-readable representation of the StateKind.
func (k StateKind) String() string {
	switch k {
	case StateMatch:
		return "Match"
	case StateByteRange:
		return "ByteRange"
	case StateSparse:
		return "Sparse"
	case StateSplit:
		return "Split"
	case StateEpsilon:
		return "Epsilon"
	case StateLook:
		return "Look"
	case StateFail:
		return "Fail"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// State represents a single NFA state with its transitions.
// The state's kind determines which fields are valid.
type State struct {
	id   StateID
	kind StateKind

	// For ByteRange: single byte or range [lo, hi].
	lo, hi byte
	next   StateID // target state for ByteRange/Epsilon/Look

	// For Sparse: multiple byte ranges with corresponding targets.
	transitions []Transition

	// For Split: epsilon transitions to two states.
	left, right StateID
	// isQuantifierSplit marks a split generated by *, +, ?, {m,n} rather than
	// alternation; priority ordering differs and callers that care about
	// leftmost-first semantics can branch on it. Determinization (which this
	// package feeds) ignores priority entirely, so this is informational.
	isQuantifierSplit bool

	// For Look: which zero-width assertion this state checks.
	look Look
}

// Transition represents a byte range and target state for sparse transitions.
type Transition struct {
	Lo   byte
	Hi   byte
	Next StateID
}

// ID returns the state's unique identifier.
func (s *State) ID() StateID { return s.id }

// Kind returns the state's type.
func (s *State) Kind() StateKind { return s.kind }

// IsMatch returns true if this is a match state.
func (s *State) IsMatch() bool { return s.kind == StateMatch }

// ByteRange returns the byte range for ByteRange states.
// Returns (0, 0, InvalidState) for non-ByteRange states.
func (s *State) ByteRange() (lo, hi byte, next StateID) {
	if s.kind == StateByteRange {
		return s.lo, s.hi, s.next
	}
	return 0, 0, InvalidState
}

// Split returns the two target states for Split states.
func (s *State) Split() (left, right StateID) {
	if s.kind == StateSplit {
		return s.left, s.right
	}
	return InvalidState, InvalidState
}

// Epsilon returns the target state for Epsilon states.
func (s *State) Epsilon() StateID {
	if s.kind == StateEpsilon {
		return s.next
	}
	return InvalidState
}

// Transitions returns the list of transitions for Sparse states.
func (s *State) Transitions() []Transition {
	if s.kind == StateSparse {
		return s.transitions
	}
	return nil
}

// Look returns the assertion and continuation for Look states.
func (s *State) Look() (look Look, next StateID) {
	if s.kind == StateLook {
		return s.look, s.next
	}
	return LookNone, InvalidState
}

// String returns a human-readable representation of the state.
func (s *State) String() string {
	switch s.kind {
	case StateMatch:
		return fmt.Sprintf("State(%d, Match)", s.id)
	case StateByteRange:
		if s.lo == s.hi {
			return fmt.Sprintf("State(%d, ByteRange '%c' -> %d)", s.id, s.lo, s.next)
		}
		return fmt.Sprintf("State(%d, ByteRange ['%c'-'%c'] -> %d)", s.id, s.lo, s.hi, s.next)
	case StateSparse:
		return fmt.Sprintf("State(%d, Sparse %d transitions)", s.id, len(s.transitions))
	case StateSplit:
		return fmt.Sprintf("State(%d, Split -> [%d, %d])", s.id, s.left, s.right)
	case StateEpsilon:
		return fmt.Sprintf("State(%d, Epsilon -> %d)", s.id, s.next)
	case StateLook:
		return fmt.Sprintf("State(%d, Look %s -> %d)", s.id, s.look, s.next)
	case StateFail:
		return fmt.Sprintf("State(%d, Fail)", s.id)
	default:
		return fmt.Sprintf("State(%d, Unknown)", s.id)
	}
}

// NFA is a compiled, always-anchored Thompson NFA for a single terminal regex.
type NFA struct {
	states []State

	// start is the single anchored start state.
	start StateID

	// utf8 indicates if the NFA respects UTF-8 boundaries.
	utf8 bool

	// byteClasses maps bytes to equivalence classes for DFA optimization.
	byteClasses ByteClasses
}

// Start returns the anchored start state of the NFA.
func (n *NFA) Start() StateID { return n.start }

// State returns the state with the given ID, or nil if invalid.
func (n *NFA) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// IsMatch returns true if the given state is a match state.
func (n *NFA) IsMatch(id StateID) bool {
	if s := n.State(id); s != nil {
		return s.IsMatch()
	}
	return false
}

// States returns the total number of states in the NFA.
func (n *NFA) States() int { return len(n.states) }

// IsUTF8 returns true if the NFA respects UTF-8 boundaries.
func (n *NFA) IsUTF8() bool { return n.utf8 }

// ByteClasses returns the byte equivalence classes for this NFA.
func (n *NFA) ByteClasses() *ByteClasses { return &n.byteClasses }

// String returns a human-readable representation of the NFA.
func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %d, utf8: %v}", len(n.states), n.start, n.utf8)
}
