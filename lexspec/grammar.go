// Package lexspec reads lexer grammars and translates their token patterns
// into automaton states.
//
// A grammar is a TOML document listing lexical contexts, each with its
// tokens in priority order:
//
//	initial = "DEFAULT"
//
//	[[context]]
//	name = "DEFAULT"
//
//	  [[context.token]]
//	  name = "WS"
//	  pattern = '[ \t\r\n]+'
//	  skip = true
//
//	  [[context.token]]
//	  name = "IDENT"
//	  pattern = '[a-zA-Z_][a-zA-Z0-9_]*'
//
// Patterns use the Go regexp syntax (Perl flavour). Tokens are numbered in
// declaration order across the whole grammar; when two tokens match the same
// input the one declared first wins.
package lexspec

import (
	"fmt"
	"regexp/syntax"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
)

// Grammar is a validated lexer grammar.
type Grammar struct {
	// Initial names the context scanning starts in. Default: the first
	// declared context.
	Initial  string         `toml:"initial"`
	Contexts []*ContextDecl `toml:"context"`

	tokens []*TokenDecl
}

// ContextDecl declares one lexical context.
type ContextDecl struct {
	Name   string       `toml:"name"`
	Tokens []*TokenDecl `toml:"token"`
}

// TokenDecl declares one token.
type TokenDecl struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	// Skip drops the matched text instead of reporting a token.
	Skip bool `toml:"skip"`
	// Next switches the scanner to the named context after a match.
	Next       string `toml:"next"`
	IgnoreCase bool   `toml:"ignore_case"`

	ordinal int
	re      *syntax.Regexp
}

// Ordinal returns the grammar-wide priority of the token, 0 being the
// highest.
func (t *TokenDecl) Ordinal() int {
	return t.ordinal
}

// Regexp returns the parsed pattern.
func (t *TokenDecl) Regexp() *syntax.Regexp {
	return t.re
}

// Tokens returns every token of the grammar in ordinal order.
func (g *Grammar) Tokens() []*TokenDecl {
	return g.tokens
}

// Context returns the context called name, nil if none.
func (g *Grammar) Context(name string) *ContextDecl {
	for _, c := range g.Contexts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// LoadFile reads and validates the grammar stored in path.
func LoadFile(path string) (*Grammar, error) {
	g := &Grammar{}
	meta, err := toml.DecodeFile(path, g)
	if err != nil {
		return nil, errors.Annotatef(err, "load grammar %s", path)
	}
	if len(meta.Undecoded()) > 0 {
		return nil, errors.Errorf("unknown keys in grammar file %s: %v", path, meta.Undecoded())
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Parse decodes and validates a grammar from TOML text.
func Parse(data string) (*Grammar, error) {
	g := &Grammar{}
	meta, err := toml.Decode(data, g)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(meta.Undecoded()) > 0 {
		return nil, errors.Errorf("unknown keys in grammar: %v", meta.Undecoded())
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks names and references, parses every pattern and numbers
// the tokens. Grammars built in code must be validated before compiling.
func (g *Grammar) Validate() error {
	if len(g.Contexts) == 0 {
		return &GrammarError{Err: ErrNoContexts}
	}
	contexts := make(map[string]struct{}, len(g.Contexts))
	for _, c := range g.Contexts {
		if c.Name == "" {
			return &GrammarError{Err: ErrMissingName}
		}
		if _, ok := contexts[c.Name]; ok {
			return &GrammarError{Context: c.Name, Err: ErrDuplicateContext}
		}
		contexts[c.Name] = struct{}{}
	}
	if g.Initial == "" {
		g.Initial = g.Contexts[0].Name
	} else if _, ok := contexts[g.Initial]; !ok {
		return &GrammarError{Context: g.Initial, Err: ErrUnknownContext}
	}

	g.tokens = g.tokens[:0]
	names := make(map[string]struct{})
	for _, c := range g.Contexts {
		for _, t := range c.Tokens {
			if t.Name == "" {
				return &GrammarError{Context: c.Name, Err: ErrMissingName}
			}
			if _, ok := names[t.Name]; ok {
				return &GrammarError{Context: c.Name, Token: t.Name, Err: ErrDuplicateToken}
			}
			names[t.Name] = struct{}{}
			if t.Next != "" {
				if _, ok := contexts[t.Next]; !ok {
					return &GrammarError{Context: c.Name, Token: t.Name, Err: ErrUnknownContext}
				}
			}
			re, err := parsePattern(t.Pattern, t.IgnoreCase)
			if err != nil {
				return &GrammarError{Context: c.Name, Token: t.Name, Err: err}
			}
			t.re = re
			t.ordinal = len(g.tokens)
			g.tokens = append(g.tokens, t)
		}
	}
	return nil
}

func parsePattern(pattern string, ignoreCase bool) (*syntax.Regexp, error) {
	flags := syntax.Perl
	if ignoreCase {
		flags |= syntax.FoldCase
	}
	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil, err
	}
	if err := checkSupported(re); err != nil {
		return nil, err
	}
	if matchesEmpty(re) {
		return nil, ErrMatchesEmpty
	}
	return re, nil
}

func checkSupported(re *syntax.Regexp) error {
	switch re.Op {
	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return fmt.Errorf("%w: %s", ErrUnsupported, re)
	}
	for _, sub := range re.Sub {
		if err := checkSupported(sub); err != nil {
			return err
		}
	}
	return nil
}

// matchesEmpty reports whether re accepts the empty string.
func matchesEmpty(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpStar, syntax.OpQuest:
		return true
	case syntax.OpLiteral:
		return len(re.Rune) == 0
	case syntax.OpPlus, syntax.OpCapture:
		return matchesEmpty(re.Sub[0])
	case syntax.OpRepeat:
		return re.Min == 0 || matchesEmpty(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !matchesEmpty(sub) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if matchesEmpty(sub) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
