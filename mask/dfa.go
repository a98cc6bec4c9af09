package mask

import (
	"fmt"
	"unicode/utf8"

	"github.com/syncode-go/dfamask/automaton/dfa"
)

// DFAState is a triple (terminal regex, shared DFA, state id). Many
// DFAState values may reference the same compiled DFA; the DFA's lifetime
// is "longest holder," never copied.
//
// Equality and hashing are defined over (TerminalRegex, StateID) only — two
// DFAStates naming the same terminal and state id are the same key even if
// they happen to hold distinct *dfa.DFA pointers (which should never
// actually happen given DFABuilder's cache, but the data model doesn't rely
// on pointer identity to hold).
type DFAState struct {
	TerminalRegex string
	DFA           *dfa.DFA
	StateID       dfa.StateID
}

// Key returns the comparable, DFA-reference-free identity used for map
// lookups and set membership.
func (s DFAState) Key() DFAStateKey {
	return DFAStateKey{TerminalRegex: s.TerminalRegex, StateID: s.StateID}
}

// Equal reports whether s and other share the same (TerminalRegex, StateID)
// identity, ignoring which *dfa.DFA each happens to point at.
func (s DFAState) Equal(other DFAState) bool {
	return s.Key() == other.Key()
}

// String renders the state for test failures and log lines.
func (s DFAState) String() string {
	return fmt.Sprintf("DFAState(%q, state=%d)", s.TerminalRegex, s.StateID)
}

// DFAStateKey is the comparable identity of a DFAState, suitable as a map
// key on its own.
type DFAStateKey struct {
	TerminalRegex string
	StateID       dfa.StateID
}

// IsLive reports whether s is neither dead nor quit: further input could
// still reach a match.
func (s DFAState) IsLive() bool {
	return !s.DFA.IsDeadState(s.StateID) && !s.DFA.IsQuitState(s.StateID)
}

// IsMatch reports whether s is an accepting state.
func (s DFAState) IsMatch() bool {
	return s.DFA.IsMatchState(s.StateID)
}

// Advance feeds text byte by byte and returns the resulting DFAState.
func (s DFAState) Advance(text string) DFAState {
	cur := s.StateID
	for i := 0; i < len(text); i++ {
		next, err := s.DFA.NextState(cur, text[i])
		if err != nil {
			return DFAState{TerminalRegex: s.TerminalRegex, DFA: s.DFA, StateID: dfa.DeadState}
		}
		cur = next
	}
	return DFAState{TerminalRegex: s.TerminalRegex, DFA: s.DFA, StateID: cur}
}

// ConsumeCharacter feeds exactly one Unicode scalar's UTF-8 encoding (1-4
// bytes, in order) and returns the resulting DFAState. Bytes beyond the
// character's encoded length are not fed.
func (s DFAState) ConsumeCharacter(c rune) DFAState {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], c)
	return s.Advance(string(buf[:n]))
}

// States enumerates every state reachable from the anchored start state by
// BFS over the DFA's transition graph: for each discovered state, every
// byte-equivalence-class representative plus the end-of-input transition is
// explored. Dead states are included — they are reachable nodes with their
// own mask-store keys, not a reason to stop exploring.
func (s DFAState) States() []dfa.StateID {
	start := DFAState{TerminalRegex: s.TerminalRegex, DFA: s.DFA, StateID: s.DFA.Start()}

	seen := map[dfa.StateID]struct{}{start.StateID: {}}
	order := []dfa.StateID{start.StateID}
	queue := []dfa.StateID{start.StateID}

	reps := s.DFA.ByteClasses().Representatives()

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, b := range reps {
			next, err := s.DFA.NextState(current, b)
			if err != nil {
				continue
			}
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				order = append(order, next)
				queue = append(queue, next)
			}
		}

		eoi := s.DFA.NextEOIState(current)
		if _, ok := seen[eoi]; !ok {
			seen[eoi] = struct{}{}
			order = append(order, eoi)
			queue = append(queue, eoi)
		}
	}

	return order
}
