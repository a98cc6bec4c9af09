package nfa

import (
	"fmt"

	"github.com/syncode-go/dfamask/internal/conv"
)

// Builder constructs NFAs incrementally using a low-level API.
// Compiler drives it; tests can also use it directly to build fixtures.
type Builder struct {
	states       []State
	start        StateID
	byteClassSet *ByteClassSet
}

// NewBuilder creates a new NFA builder with default capacity.
func NewBuilder() *Builder {
	return NewBuilderWithCapacity(16)
}

// NewBuilderWithCapacity creates a new NFA builder with specified initial capacity.
func NewBuilderWithCapacity(capacity int) *Builder {
	return &Builder{
		states:       make([]State, 0, capacity),
		start:        InvalidState,
		byteClassSet: NewByteClassSet(),
	}
}

// AddMatch adds a match (accepting) state and returns its ID.
func (b *Builder) AddMatch() StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{id: id, kind: StateMatch})
	return id
}

// AddByteRange adds a state that transitions on a single byte or byte range [lo, hi].
// For a single byte, set lo == hi.
func (b *Builder) AddByteRange(lo, hi byte, next StateID) StateID {
	b.byteClassSet.SetRange(lo, hi)

	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{
		id: id, kind: StateByteRange, lo: lo, hi: hi, next: next,
	})
	return id
}

// AddSparse adds a state with multiple byte range transitions (character class).
func (b *Builder) AddSparse(transitions []Transition) StateID {
	for _, tr := range transitions {
		b.byteClassSet.SetRange(tr.Lo, tr.Hi)
	}

	id := StateID(conv.IntToUint32(len(b.states)))
	trans := make([]Transition, len(transitions))
	copy(trans, transitions)
	b.states = append(b.states, State{id: id, kind: StateSparse, transitions: trans})
	return id
}

// AddSplit adds a state with epsilon transitions to two states (alternation).
func (b *Builder) AddSplit(left, right StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{id: id, kind: StateSplit, left: left, right: right})
	return id
}

// AddQuantifierSplit adds a split for quantifiers (*, +, ?, {m,n}).
// Left is the "continue/repeat" path, right is the "exit" path.
func (b *Builder) AddQuantifierSplit(left, right StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{
		id: id, kind: StateSplit, left: left, right: right, isQuantifierSplit: true,
	})
	return id
}

// AddEpsilon adds a state with a single epsilon transition (no input consumed).
func (b *Builder) AddEpsilon(next StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{id: id, kind: StateEpsilon, next: next})
	return id
}

// AddLook adds a zero-width assertion state.
func (b *Builder) AddLook(look Look, next StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{id: id, kind: StateLook, look: look, next: next})
	return id
}

// Patch updates a state's target. Used during compilation to resolve forward
// references (loops, alternations). Only valid for single-target kinds.
func (b *Builder) Patch(stateID, target StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", StateID: stateID}
	}

	s := &b.states[stateID]
	switch s.kind {
	case StateByteRange, StateEpsilon, StateLook:
		s.next = target
		return nil
	default:
		return &BuildError{
			Message: fmt.Sprintf("cannot patch state of kind %s", s.kind),
			StateID: stateID,
		}
	}
}

// SetStart sets the anchored start state for the NFA.
func (b *Builder) SetStart(start StateID) {
	b.start = start
}

// States returns the current number of states.
func (b *Builder) States() int {
	return len(b.states)
}

// Validate checks that the NFA is well-formed: start state is set and valid,
// and every state reference points within bounds.
func (b *Builder) Validate() error {
	if b.start == InvalidState {
		return &BuildError{Message: "start state not set"}
	}
	if int(b.start) >= len(b.states) {
		return &BuildError{Message: "start state out of bounds", StateID: b.start}
	}

	for i, s := range b.states {
		id := StateID(i)
		switch s.kind {
		case StateByteRange, StateEpsilon, StateLook:
			if s.next != InvalidState && int(s.next) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid next state %d", s.next), StateID: id}
			}
		case StateSplit:
			if s.left != InvalidState && int(s.left) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid left state %d", s.left), StateID: id}
			}
			if s.right != InvalidState && int(s.right) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid right state %d", s.right), StateID: id}
			}
		case StateSparse:
			for j, t := range s.transitions {
				if t.Next != InvalidState && int(t.Next) >= len(b.states) {
					return &BuildError{
						Message: fmt.Sprintf("invalid transition %d target %d", j, t.Next),
						StateID: id,
					}
				}
			}
		}
	}

	return nil
}

// Build finalizes and returns the constructed NFA.
func (b *Builder) Build(opts ...BuildOption) (*NFA, error) {
	// Word bytes get classes of their own: automaton/dfa keys states by
	// whether the last byte was a word byte, so a class must not mix the two.
	for _, r := range [][2]byte{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}} {
		b.byteClassSet.SetRange(r[0], r[1])
	}

	n := &NFA{
		states:      b.states,
		start:       b.start,
		utf8:        true,
		byteClasses: b.byteClassSet.ByteClasses(),
	}

	for _, opt := range opts {
		opt(n)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// BuildOption is a functional option for configuring the built NFA.
type BuildOption func(*NFA)

// WithUTF8 sets whether the NFA respects UTF-8 boundaries.
func WithUTF8(utf8 bool) BuildOption {
	return func(n *NFA) {
		n.utf8 = utf8
	}
}
