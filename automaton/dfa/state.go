package dfa

import (
	"fmt"
	"hash/fnv"

	"github.com/syncode-go/dfamask/automaton/nfa"
)

// StateID uniquely identifies a determinized state in the cache.
type StateID uint32

const (
	// InvalidState represents an invalid/uninitialized state ID.
	InvalidState StateID = 0xFFFFFFFF

	// DeadState represents a dead/failure state with no outgoing transitions.
	// Once in this state, the automaton can never reach a match.
	DeadState StateID = 0xFFFFFFFE

	// StartState is always state ID 0, the anchored start.
	StartState StateID = 0
)

// State is a single determinized state: a deterministic byte-keyed
// transition table plus the set of NFA states it represents.
//
// Transitions are keyed by the raw input byte; byte classes are not applied
// here.
type State struct {
	id          StateID
	transitions map[byte]StateID
	isMatch     bool
	nfaStates   []nfa.StateID

	// isFromWord records whether the byte that produced this state was a
	// word byte, needed to resolve \b/\B on the following transition.
	isFromWord bool
}

// NewState creates a new DFA state with the given NFA state set.
func NewState(id StateID, nfaStates []nfa.StateID, isMatch bool, isFromWord bool) *State {
	nfaStatesCopy := make([]nfa.StateID, len(nfaStates))
	copy(nfaStatesCopy, nfaStates)

	return &State{
		id:          id,
		transitions: make(map[byte]StateID, 16),
		isMatch:     isMatch,
		nfaStates:   nfaStatesCopy,
		isFromWord:  isFromWord,
	}
}

// IsFromWord reports whether the byte consumed to reach this state was a
// word byte.
func (s *State) IsFromWord() bool {
	return s.isFromWord
}

// ID returns the state's unique identifier.
func (s *State) ID() StateID {
	return s.id
}

// IsMatch returns true if this is an accepting state.
func (s *State) IsMatch() bool {
	return s.isMatch
}

// Transition returns the next state for the given input byte.
func (s *State) Transition(b byte) (StateID, bool) {
	next, ok := s.transitions[b]
	return next, ok
}

// AddTransition records a transition from this state on input byte b.
func (s *State) AddTransition(b byte, next StateID) {
	s.transitions[b] = next
}

// NFAStates returns the NFA states represented by this state.
func (s *State) NFAStates() []nfa.StateID {
	return s.nfaStates
}

// TransitionCount returns the number of distinct transitions from this state.
func (s *State) TransitionCount() int {
	return len(s.transitions)
}

// String returns a human-readable representation of the state.
func (s *State) String() string {
	return fmt.Sprintf("dfa.State(id=%d, isMatch=%v, transitions=%d)",
		s.id, s.isMatch, len(s.transitions))
}

// StateKey identifies a determinized state by the set of NFA states it
// represents. Two states are equivalent iff their NFA state sets match.
type StateKey uint64

// ComputeStateKey hashes a sorted NFA state set with FNV-1a so that
// equivalent sets (independent of discovery order) collide to the same key.
func ComputeStateKey(nfaStates []nfa.StateID) StateKey {
	if len(nfaStates) == 0 {
		return StateKey(0)
	}

	sorted := make([]nfa.StateID, len(nfaStates))
	copy(sorted, nfaStates)
	sortStateIDs(sorted)

	h := fnv.New64a()
	for _, sid := range sorted {
		_, _ = h.Write([]byte{
			byte(sid), byte(sid >> 8), byte(sid >> 16), byte(sid >> 24),
		})
	}

	return StateKey(h.Sum64())
}

// ComputeStateKeyWithWord is ComputeStateKey perturbed by word context, so
// that two otherwise-identical NFA state sets reached via different
// word/non-word transitions are cached as distinct DFA states.
func ComputeStateKeyWithWord(nfaStates []nfa.StateID, isFromWord bool) StateKey {
	key := ComputeStateKey(nfaStates)
	if isFromWord {
		key = key*1099511628211 ^ 1
	}
	return key
}

// sortStateIDs performs an in-place insertion sort; NFA state sets produced
// by epsilon-closure are small and often nearly sorted already.
func sortStateIDs(states []nfa.StateID) {
	for i := 1; i < len(states); i++ {
		key := states[i]
		j := i - 1
		for j >= 0 && states[j] > key {
			states[j+1] = states[j]
			j--
		}
		states[j+1] = key
	}
}

// StateSet is a deduplicating set of NFA states used while determinizing.
type StateSet struct {
	states map[nfa.StateID]struct{}
}

// NewStateSet creates a new empty state set.
func NewStateSet() *StateSet {
	return &StateSet{states: make(map[nfa.StateID]struct{})}
}

// Add adds an NFA state to the set.
func (ss *StateSet) Add(state nfa.StateID) {
	ss.states[state] = struct{}{}
}

// Contains returns true if the state is in the set.
func (ss *StateSet) Contains(state nfa.StateID) bool {
	_, ok := ss.states[state]
	return ok
}

// Len returns the number of states in the set.
func (ss *StateSet) Len() int {
	return len(ss.states)
}

// ToSlice returns the states as a sorted slice for consistent key hashing.
func (ss *StateSet) ToSlice() []nfa.StateID {
	if len(ss.states) == 0 {
		return nil
	}
	slice := make([]nfa.StateID, 0, len(ss.states))
	for state := range ss.states {
		slice = append(slice, state)
	}
	sortStateIDs(slice)
	return slice
}
