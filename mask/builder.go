package mask

import (
	"github.com/projectdiscovery/gologger"

	"github.com/syncode-go/dfamask/automaton/dfa"
	"github.com/syncode-go/dfamask/automaton/nfa"
)

// DFABuilder memoizes regex-to-DFA compilation: each distinct terminal is
// compiled at most once and shared by reference among every DFAState built
// from it. A single instance is intended per mask-store construction.
//
// The cache is exclusively owned by the builder; nothing outside this
// package mutates it directly.
type DFABuilder struct {
	compiler *nfa.Compiler
	config   dfa.Config
	cache    map[string]*dfa.DFA
}

// NewDFABuilder creates a builder that compiles terminals with the given
// per-terminal DFA config.
func NewDFABuilder(config dfa.Config) *DFABuilder {
	return &DFABuilder{
		compiler: nfa.NewCompiler(nfa.DefaultCompilerConfig()),
		config:   config,
		cache:    make(map[string]*dfa.DFA),
	}
}

// Build returns a fresh DFAState positioned at the anchored start state of
// the DFA for regex, reusing a cached compilation if regex has been seen
// before. A compilation failure is a construction error: regex is a
// precondition the caller is expected to have validated upstream, and this
// builder does not attempt to recover from a malformed one.
func (b *DFABuilder) Build(regex string) (DFAState, error) {
	compiled, ok := b.cache[regex]
	if !ok {
		gologger.DefaultLogger.Verbose().Msgf("compiling terminal %q", regex)

		n, err := b.compiler.Compile(regex)
		if err != nil {
			return DFAState{}, wrapCompileError(regex, err)
		}

		compiled, err = dfa.CompileWithConfig(n, b.config)
		if err != nil {
			return DFAState{}, wrapCompileError(regex, err)
		}

		b.cache[regex] = compiled
		gologger.DefaultLogger.Verbose().Msgf("terminal %q compiled", regex)
	}

	return DFAState{TerminalRegex: regex, DFA: compiled, StateID: compiled.Start()}, nil
}

// Len returns how many distinct terminals have been compiled so far.
func (b *DFABuilder) Len() int {
	return len(b.cache)
}
