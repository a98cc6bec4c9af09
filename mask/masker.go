package mask

import (
	"github.com/syncode-go/dfamask/automaton/dfa"
)

// Masker is the public boundary a host embeds: build once from terminals,
// a vocabulary, and a lookahead depth, then query masks by (state, accept
// sequence) for the rest of the process lifetime.
type Masker struct {
	builder *DFABuilder
	store   *Store
	config  Config
}

// BuildMasker compiles every terminal, enumerates every reachable state and
// every length-alpha accept sequence, and computes the full mask store. It
// is the expensive, one-time construction step; queries against the result
// are O(1) map lookups.
func BuildMasker(terminals []string, vocabulary []string, alpha int) (*Masker, error) {
	return BuildMaskerWithConfig(terminals, vocabulary, DefaultConfig().WithAlpha(alpha))
}

// BuildMaskerWithConfig is BuildMasker with full control over DFA limits,
// strictness, and a mask-size budget.
func BuildMaskerWithConfig(terminals []string, vocabulary []string, cfg Config) (*Masker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	builder := NewDFABuilder(cfg.DFA)
	store, err := BuildStore(builder, terminals, vocabulary, cfg)
	if err != nil {
		return nil, err
	}

	return &Masker{builder: builder, store: store, config: cfg}, nil
}

// StartState returns the anchored start DFAState for terminal, compiling it
// on first use. Hosts use this to seed tracking of a fresh lexical token.
func (m *Masker) StartState(terminal string) (DFAState, error) {
	return m.builder.Build(terminal)
}

// Advance steps state forward by text and returns the resulting DFAState,
// for a host tracking an in-progress lexical token character by character
// (or in whole chunks, when character granularity isn't needed).
func (m *Masker) Advance(state DFAState, text string) DFAState {
	return state.Advance(text)
}

// AdvanceID is Advance expressed over raw state ids rather than a DFAState
// value, for hosts that prefer to carry (terminal, state id) pairs of their
// own rather than this package's DFAState type.
func (m *Masker) AdvanceID(terminal string, stateID dfa.StateID, text string) (dfa.StateID, error) {
	start, err := m.builder.Build(terminal)
	if err != nil {
		return dfa.InvalidState, err
	}
	state := DFAState{TerminalRegex: terminal, DFA: start.DFA, StateID: stateID}
	return state.Advance(text).StateID, nil
}

// Mask looks up the precomputed vocabulary mask for (state, acceptSequence).
// A miss is a programming error per the construction invariant — every key
// reachable via StatesOf and the sequences this masker was built with was
// populated at BuildStore time — so it is surfaced as ErrUnknownKey rather
// than silently computed on demand.
func (m *Masker) Mask(state DFAState, acceptSequence []string) (Mask, error) {
	result, ok := m.store.Lookup(state, acceptSequence)
	if !ok {
		return Mask{}, &Error{
			Kind:     ErrUnknownKey,
			Terminal: state.TerminalRegex,
			Message:  "no mask stored for this (state, accept sequence) key",
		}
	}
	return result, nil
}

// StatesOf returns every DFAState the store covers for terminal, in BFS
// discovery order, so a host can iterate every key this masker answers for.
func (m *Masker) StatesOf(terminal string) []DFAState {
	return m.store.StatesOf(terminal)
}

// Vocabulary returns the vocabulary this masker's masks are indexed
// against.
func (m *Masker) Vocabulary() []string {
	return m.store.Vocabulary()
}

// Config returns the configuration this masker was built with.
func (m *Masker) Config() Config {
	return m.config
}
