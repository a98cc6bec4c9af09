package dfa

import "github.com/syncode-go/dfamask/automaton/nfa"

// DFA is a lazily-determinized, always-anchored automaton for one compiled
// terminal. States are discovered on demand as NextState is called; nothing
// is precomputed beyond the start state.
type DFA struct {
	nfa     *nfa.NFA
	builder *Builder
	cache   *Cache
	config  Config
	states  []*State
}

// Compile builds a lazy DFA over n with default configuration.
func Compile(n *nfa.NFA) (*DFA, error) {
	return CompileWithConfig(n, DefaultConfig())
}

// CompileWithConfig builds a lazy DFA over n, materializing only its start
// state; every other state is determinized the first time it's reached.
func CompileWithConfig(n *nfa.NFA, config Config) (*DFA, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	builder := NewBuilder(n, config.DeterminizationLimit)
	cache := NewCache(config.MaxStates)

	startSet, err := builder.epsilonClosure([]nfa.StateID{n.Start()}, LookSetForStart())
	if err != nil {
		return nil, err
	}
	isMatch := builder.containsMatchState(startSet)
	startState := NewState(StartState, startSet, isMatch, false)

	key := ComputeStateKeyWithWord(startSet, false)
	if _, err := cache.Insert(key, startState); err != nil {
		return nil, &DFAError{Kind: CacheFull, Message: "failed to insert start state", Cause: err}
	}

	d := &DFA{
		nfa:     n,
		builder: builder,
		cache:   cache,
		config:  config,
		states:  make([]*State, 0, config.MaxStates),
	}
	d.registerState(startState)

	return d, nil
}

func (d *DFA) registerState(s *State) {
	for int(s.ID()) >= len(d.states) {
		d.states = append(d.states, nil)
	}
	d.states[s.ID()] = s
}

// Start returns the anchored start state ID.
func (d *DFA) Start() StateID {
	return StartState
}

// State returns the determinized state with the given ID, or nil if it
// hasn't been registered (out of range).
func (d *DFA) State(id StateID) *State {
	if id == InvalidState || id == DeadState || int(id) >= len(d.states) {
		return nil
	}
	return d.states[id]
}

// IsMatch reports whether id is an accepting state.
func (d *DFA) IsMatch(id StateID) bool {
	if s := d.State(id); s != nil {
		return s.IsMatch()
	}
	return false
}

// NextState returns the state reached by consuming byte b from current,
// determinizing it on first visit. Returns DeadState once the automaton can
// never match again, rather than an error — that's a normal terminal
// condition for a rejecting byte, not a failure.
func (d *DFA) NextState(current StateID, b byte) (StateID, error) {
	if current == DeadState {
		return DeadState, nil
	}
	if current == EOIMatchState {
		return EOIMatchState, nil
	}

	state := d.State(current)
	if state == nil {
		return InvalidState, &DFAError{Kind: InvalidConfig, Message: "unknown state ID"}
	}

	if next, ok := state.Transition(b); ok {
		return next, nil
	}

	nextSet, err := d.builder.moveWithWordContext(state.NFAStates(), b, state.IsFromWord())
	if err != nil {
		return InvalidState, err
	}
	if len(nextSet) == 0 {
		state.AddTransition(b, DeadState)
		return DeadState, nil
	}

	isFromWord := isWordByte(b)
	key := ComputeStateKeyWithWord(nextSet, isFromWord)

	cached, ok := d.cache.Get(key)
	if !ok {
		isMatch := d.builder.containsMatchState(nextSet)
		newState := NewState(InvalidState, nextSet, isMatch, isFromWord)

		id, err := d.cache.Insert(key, newState)
		if err != nil {
			if d.cache.ClearCount() >= d.config.MaxCacheClears {
				return InvalidState, &DFAError{Kind: StateLimitExceeded, Message: "state limit exceeded", Cause: ErrStateLimitExceeded}
			}
			d.cache.ClearKeepMemory()
			d.states = d.states[:0]
			id, err = d.cache.Insert(key, newState)
			if err != nil {
				return InvalidState, &DFAError{Kind: CacheCleared, Message: "cache insert failed immediately after a clear", Cause: errCacheCleared}
			}
		}
		newState.id = id
		d.registerState(newState)
		cached = newState
	}

	state.AddTransition(b, cached.ID())
	return cached.ID(), nil
}

// EOIMatchState is the sentinel reached via NextEOIState when end-of-input
// resolves to a match. It has no further transitions: both NextState and
// NextEOIState on it return itself.
const EOIMatchState StateID = 0xFFFFFFFD

// NextEOIState returns the state reached by feeding the virtual end-of-input
// symbol from current, resolving any pending word-boundary or end anchor.
// It returns EOIMatchState if the automaton accepts at end-of-input, or
// DeadState otherwise — both are real, enumerable nodes for state-space
// traversal, not errors.
func (d *DFA) NextEOIState(current StateID) StateID {
	if current == EOIMatchState {
		return EOIMatchState
	}
	if current == DeadState {
		return DeadState
	}
	state := d.State(current)
	if state == nil {
		return DeadState
	}
	if d.builder.CheckEOIMatch(state.NFAStates(), state.IsFromWord()) {
		return EOIMatchState
	}
	return DeadState
}

// IsMatchState reports whether id is an accepting state.
func (d *DFA) IsMatchState(id StateID) bool {
	if id == EOIMatchState {
		return true
	}
	return d.IsMatch(id)
}

// IsDeadState reports whether id can never reach a match.
func (d *DFA) IsDeadState(id StateID) bool {
	return id == DeadState
}

// IsQuitState reports whether id is a "the automaton gave up" sentinel.
// This engine never quits — it always either matches, lives, or dies — so
// this is always false; it exists only so callers can treat dead/quit
// states uniformly through the same classifier surface.
func (d *DFA) IsQuitState(StateID) bool {
	return false
}

// IsSpecialState reports whether id is one of the non-traversable sentinel
// states (dead or the end-of-input match marker) rather than an ordinary
// determinized state with its own NFA state set.
func (d *DFA) IsSpecialState(id StateID) bool {
	return id == DeadState || id == EOIMatchState
}

// ByteClasses returns the underlying NFA's byte equivalence classes, used to
// enumerate one representative byte per class instead of all 256 values.
func (d *DFA) ByteClasses() *nfa.ByteClasses {
	return d.nfa.ByteClasses()
}
