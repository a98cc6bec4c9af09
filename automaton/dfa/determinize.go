package dfa

import "github.com/syncode-go/dfamask/automaton/nfa"

// isWordByte reports whether b is an ASCII word character ([0-9A-Za-z_]),
// the only alphabet \b/\B ever reason about.
func isWordByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

// Builder determinizes a single terminal's NFA on demand, one byte at a
// time. It never searches a haystack: every operation is "given I'm in NFA
// state set S, what does consuming byte b (or reaching end-of-input) do."
type Builder struct {
	nfa             *nfa.NFA
	hasWordBoundary bool

	// determinizationLimit bounds the cumulative number of epsilon-closure
	// expansion steps this builder may perform over its lifetime; zero or
	// negative means unbounded. Guards against a pathological terminal
	// whose closure/move steps blow up long before MaxStates would catch it.
	determinizationLimit int
	steps                int
}

// NewBuilder creates a new determinization helper for n, bounding total
// epsilon-closure work to limit steps.
func NewBuilder(n *nfa.NFA, limit int) *Builder {
	b := &Builder{nfa: n, determinizationLimit: limit}
	b.hasWordBoundary = b.checkHasWordBoundary()
	return b
}

// step counts one unit of epsilon-closure expansion work and reports
// ErrStateLimitExceeded once determinizationLimit is exhausted.
func (b *Builder) step() error {
	b.steps++
	if b.determinizationLimit > 0 && b.steps > b.determinizationLimit {
		return &DFAError{Kind: StateLimitExceeded, Message: "determinization step limit exceeded", Cause: ErrStateLimitExceeded}
	}
	return nil
}

// checkHasWordBoundary reports whether the NFA contains any \b/\B
// assertions, letting moveWithWordContext skip resolution entirely for the
// (common) terminals that have none.
func (b *Builder) checkHasWordBoundary() bool {
	for i := 0; i < b.nfa.States(); i++ {
		s := b.nfa.State(nfa.StateID(i))
		if s.Kind() == nfa.StateLook {
			look, _ := s.Look()
			if look == nfa.LookWordBoundary || look == nfa.LookNoWordBoundary {
				return true
			}
		}
	}
	return false
}

// epsilonClosure expands states through epsilon/split transitions and any
// StateLook transition whose assertion is satisfied by lookHave.
func (b *Builder) epsilonClosure(states []nfa.StateID, lookHave LookSet) ([]nfa.StateID, error) {
	closure := NewStateSet()
	stack := make([]nfa.StateID, 0, len(states)*2)

	for _, sid := range states {
		if !closure.Contains(sid) {
			closure.Add(sid)
			stack = append(stack, sid)
		}
	}

	for len(stack) > 0 {
		if err := b.step(); err != nil {
			return nil, err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		state := b.nfa.State(current)
		if state == nil {
			continue
		}

		switch state.Kind() {
		case nfa.StateEpsilon:
			next := state.Epsilon()
			if next != nfa.InvalidState && !closure.Contains(next) {
				closure.Add(next)
				stack = append(stack, next)
			}

		case nfa.StateSplit:
			left, right := state.Split()
			if left != nfa.InvalidState && !closure.Contains(left) {
				closure.Add(left)
				stack = append(stack, left)
			}
			if right != nfa.InvalidState && !closure.Contains(right) {
				closure.Add(right)
				stack = append(stack, right)
			}

		case nfa.StateLook:
			look, next := state.Look()
			if lookHave.Contains(look) && next != nfa.InvalidState && !closure.Contains(next) {
				closure.Add(next)
				stack = append(stack, next)
			}
		}
	}

	return closure.ToSlice(), nil
}

// moveWithWordContext computes the NFA state set reached by consuming input
// from resolvedStates, given whether the previous byte was a word byte.
func (b *Builder) moveWithWordContext(states []nfa.StateID, input byte, isFromWord bool) ([]nfa.StateID, error) {
	var resolvedStates []nfa.StateID
	if !b.hasWordBoundary {
		resolvedStates = states
	} else {
		isCurrentWord := isWordByte(input)
		resolvedStates = b.resolveWordBoundaries(states, isFromWord != isCurrentWord)
	}

	targets := NewStateSet()
	for _, sid := range resolvedStates {
		state := b.nfa.State(sid)
		if state == nil {
			continue
		}

		switch state.Kind() {
		case nfa.StateByteRange:
			lo, hi, next := state.ByteRange()
			if input >= lo && input <= hi {
				targets.Add(next)
			}

		case nfa.StateSparse:
			for _, tr := range state.Transitions() {
				if input >= tr.Lo && input <= tr.Hi {
					targets.Add(tr.Next)
				}
			}
		}
	}

	if targets.Len() == 0 {
		return nil, nil
	}

	return b.epsilonClosure(targets.ToSlice(), LookNone)
}

// resolveWordBoundaries expands states by following any StateLook(\b)/(\B)
// transition now known to be satisfied, given the transition just crossed a
// word boundary (or didn't). Unlike start/end-of-text assertions this can't
// be folded into epsilonClosure's lookHave because it depends on both the
// previous byte and the next one.
func (b *Builder) resolveWordBoundaries(states []nfa.StateID, wordBoundarySatisfied bool) []nfa.StateID {
	crossed := NewStateSet()
	stack := make([]nfa.StateID, 0, len(states))

	for _, sid := range states {
		state := b.nfa.State(sid)
		if state == nil || state.Kind() != nfa.StateLook {
			continue
		}
		look, next := state.Look()
		if next == nfa.InvalidState {
			continue
		}
		if b.boundaryCrossed(look, wordBoundarySatisfied) && !crossed.Contains(next) {
			crossed.Add(next)
			stack = append(stack, next)
		}
	}

	if len(stack) == 0 {
		return states
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		state := b.nfa.State(current)
		if state == nil {
			continue
		}

		switch state.Kind() {
		case nfa.StateLook:
			look, next := state.Look()
			if next == nfa.InvalidState {
				continue
			}
			if b.boundaryCrossed(look, wordBoundarySatisfied) && !crossed.Contains(next) {
				crossed.Add(next)
				stack = append(stack, next)
			}

		case nfa.StateEpsilon:
			next := state.Epsilon()
			if next != nfa.InvalidState && !crossed.Contains(next) {
				crossed.Add(next)
				stack = append(stack, next)
			}

		case nfa.StateSplit:
			left, right := state.Split()
			if left != nfa.InvalidState && !crossed.Contains(left) {
				crossed.Add(left)
				stack = append(stack, left)
			}
			if right != nfa.InvalidState && !crossed.Contains(right) {
				crossed.Add(right)
				stack = append(stack, right)
			}
		}
	}

	result := NewStateSet()
	for _, sid := range states {
		result.Add(sid)
	}
	for _, sid := range crossed.ToSlice() {
		result.Add(sid)
	}
	return result.ToSlice()
}

func (b *Builder) boundaryCrossed(look nfa.Look, wordBoundarySatisfied bool) bool {
	switch look {
	case nfa.LookWordBoundary:
		return wordBoundarySatisfied
	case nfa.LookNoWordBoundary:
		return !wordBoundarySatisfied
	default:
		return false
	}
}

// containsMatchState reports whether any state in states is a match state.
func (b *Builder) containsMatchState(states []nfa.StateID) bool {
	for _, sid := range states {
		if b.nfa.IsMatch(sid) {
			return true
		}
	}
	return false
}

// CheckEOIMatch reports whether the state set matches at end-of-input,
// resolving pending word-boundary and end-of-text/line assertions first. A
// step-limit error here is treated as no match: by the time end-of-input is
// reached, NextState's own calls into epsilonClosure/moveWithWordContext
// already had every opportunity to surface the same limit as a real error.
func (b *Builder) CheckEOIMatch(states []nfa.StateID, isFromWord bool) bool {
	resolved := b.resolveWordBoundaries(states, isFromWord)
	final, err := b.epsilonClosure(resolved, LookSetForEOI())
	if err != nil {
		return false
	}
	return b.containsMatchState(final)
}
