package dfa

import "github.com/syncode-go/dfamask/automaton/nfa"

// LookSet is a bitset of satisfied zero-width assertions, used during
// epsilon-closure to decide which StateLook transitions may be followed.
//
// Every terminal's DFA is compiled anchored at position 0, so only two
// contexts ever arise: the fixed start context (LookStartText|LookStartLine)
// and the end-of-input context (LookEndText|LookEndLine). Word
// boundaries are resolved separately in determinize.go because they depend
// on the previous and current byte, not on position alone.
type LookSet uint32

const (
	// LookNone represents no assertions satisfied.
	LookNone LookSet = 0
	// LookStartText represents \A, satisfied only at position 0.
	LookStartText LookSet = 1 << iota
	// LookEndText represents \z, satisfied only at end of input.
	LookEndText
	// LookStartLine represents ^.
	LookStartLine
	// LookEndLine represents $.
	LookEndLine
)

// Contains reports whether look is satisfied by this set.
func (s LookSet) Contains(look nfa.Look) bool {
	switch look {
	case nfa.LookStartText:
		return s&LookStartText != 0
	case nfa.LookEndText:
		return s&LookEndText != 0
	case nfa.LookStartLine:
		return s&LookStartLine != 0
	case nfa.LookEndLine:
		return s&LookEndLine != 0
	default:
		return false
	}
}

// LookSetForStart returns the assertions satisfied at the anchored start of
// a terminal: both \A and ^ hold since there is never a preceding byte.
func LookSetForStart() LookSet {
	return LookStartText | LookStartLine
}

// LookSetForEOI returns the assertions satisfied at end-of-input: both \z
// and $ hold at the true end.
func LookSetForEOI() LookSet {
	return LookEndText | LookEndLine
}
