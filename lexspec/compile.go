package lexspec

import (
	"fmt"
	"regexp/syntax"
	"unicode"

	"github.com/pingcap/errors"
	"go.uber.org/zap"

	"github.com/coregx/lexgen/nfa"
)

// CompilerConfig configures pattern translation.
type CompilerConfig struct {
	// MaxRecursionDepth limits recursion during compilation to prevent stack overflow
	// Default: 100
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxRecursionDepth: 100,
	}
}

// fragment is a compiled sub-pattern: matching starts at start and ends when
// end is reached. end has no outgoing moves until the caller wires it.
type fragment struct {
	start, end *nfa.State
}

// Compiler translates the tokens of a grammar into automaton states of a
// registry, one context per declared lexical context.
type Compiler struct {
	config CompilerConfig
	reg    *nfa.Registry
	tokens []*nfa.Token

	ctx   *nfa.Context
	depth int // current recursion depth
}

// NewCompiler creates a compiler adding states of the validated grammar g to
// reg.
func NewCompiler(g *Grammar, reg *nfa.Registry, config CompilerConfig) *Compiler {
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = 100
	}
	tokens := make([]*nfa.Token, len(g.Tokens()))
	for i, t := range g.Tokens() {
		tokens[i] = &nfa.Token{Name: t.Name, Ordinal: t.Ordinal()}
	}
	return &Compiler{
		config: config,
		reg:    reg,
		tokens: tokens,
	}
}

// Token returns the automaton token of the given ordinal.
func (c *Compiler) Token(ordinal int) *nfa.Token {
	return c.tokens[ordinal]
}

// CompileContext creates the context declared by decl and translates its
// tokens. It returns the context and its initial state, which has an epsilon
// move to the start of every token.
func (c *Compiler) CompileContext(decl *ContextDecl) (*nfa.Context, *nfa.State, error) {
	c.ctx = c.reg.NewContext(decl.Name)
	defer func() { c.ctx = nil }()

	init := c.ctx.NewState()
	for _, t := range decl.Tokens {
		if t.re == nil {
			return nil, nil, errors.Errorf("token %s of context %s was not validated", t.Name, decl.Name)
		}
		c.depth = 0
		f, err := c.compileRegexp(t.re)
		if err != nil {
			return nil, nil, &GrammarError{Context: decl.Name, Token: t.Name, Err: err}
		}
		init.AddEpsilon(f.start)
		f.end.SetFinal(true)
		f.end.SetToken(c.tokens[t.ordinal])
	}
	c.reg.Logger().Debug("translated lexical context",
		zap.String("context", decl.Name),
		zap.Int("tokens", len(decl.Tokens)),
		zap.Int("states", len(c.ctx.States())))
	return c.ctx, init, nil
}

// compileRegexp recursively compiles a syntax.Regexp node.
func (c *Compiler) compileRegexp(re *syntax.Regexp) (fragment, error) {
	c.depth++
	if c.depth > c.config.MaxRecursionDepth {
		return fragment{}, ErrTooComplex
	}
	defer func() { c.depth-- }()

	switch re.Op {
	case syntax.OpLiteral:
		return c.compileLiteral(re.Rune, re.Flags&syntax.FoldCase != 0), nil
	case syntax.OpCharClass:
		return c.compileCharClass(re.Rune), nil
	case syntax.OpAnyChar:
		return c.compileCharClass([]rune{0, unicode.MaxRune}), nil
	case syntax.OpAnyCharNotNL:
		return c.compileCharClass([]rune{0, '\n' - 1, '\n' + 1, unicode.MaxRune}), nil
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileStar(re.Sub[0])
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0])
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0])
	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max)
	case syntax.OpCapture:
		return c.compileRegexp(re.Sub[0])
	case syntax.OpEmptyMatch:
		return c.compileEmptyMatch(), nil
	case syntax.OpNoMatch:
		return fragment{start: c.ctx.NewState(), end: c.ctx.NewState()}, nil
	default:
		return fragment{}, fmt.Errorf("%w: %s", ErrUnsupported, re)
	}
}

// compileLiteral chains one state per rune; with fold set each state also
// accepts the other cases of its rune.
func (c *Compiler) compileLiteral(runes []rune, fold bool) fragment {
	start := c.ctx.NewState()
	cur := start
	for _, r := range runes {
		cur.AddChar(r)
		if fold {
			for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
				cur.AddChar(f)
			}
		}
		next := c.ctx.NewState()
		cur.SetNext(next)
		cur = next
	}
	return fragment{start: start, end: cur}
}

// compileCharClass compiles a class given as [lo, hi] pairs.
func (c *Compiler) compileCharClass(ranges []rune) fragment {
	start := c.ctx.NewState()
	end := c.ctx.NewState()
	for i := 0; i+1 < len(ranges); i += 2 {
		start.AddRange(ranges[i], ranges[i+1])
	}
	if start.HasTransitions() {
		start.SetNext(end)
	}
	return fragment{start: start, end: end}
}

func (c *Compiler) compileConcat(subs []*syntax.Regexp) (fragment, error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch(), nil
	}
	f, err := c.compileRegexp(subs[0])
	if err != nil {
		return fragment{}, err
	}
	for _, sub := range subs[1:] {
		next, err := c.compileRegexp(sub)
		if err != nil {
			return fragment{}, err
		}
		f.end.AddEpsilon(next.start)
		f.end = next.end
	}
	return f, nil
}

func (c *Compiler) compileAlternate(subs []*syntax.Regexp) (fragment, error) {
	start := c.ctx.NewState()
	end := c.ctx.NewState()
	for _, sub := range subs {
		f, err := c.compileRegexp(sub)
		if err != nil {
			return fragment{}, err
		}
		start.AddEpsilon(f.start)
		f.end.AddEpsilon(end)
	}
	return fragment{start: start, end: end}, nil
}

// compileStar compiles a* (zero or more)
func (c *Compiler) compileStar(sub *syntax.Regexp) (fragment, error) {
	f, err := c.compileRegexp(sub)
	if err != nil {
		return fragment{}, err
	}
	start := c.ctx.NewState()
	end := c.ctx.NewState()
	start.AddEpsilon(f.start)
	start.AddEpsilon(end)
	f.end.AddEpsilon(f.start)
	f.end.AddEpsilon(end)
	return fragment{start: start, end: end}, nil
}

// compilePlus compiles a+ (one or more)
func (c *Compiler) compilePlus(sub *syntax.Regexp) (fragment, error) {
	f, err := c.compileRegexp(sub)
	if err != nil {
		return fragment{}, err
	}
	end := c.ctx.NewState()
	f.end.AddEpsilon(f.start)
	f.end.AddEpsilon(end)
	return fragment{start: f.start, end: end}, nil
}

// compileQuest compiles a? (zero or one)
func (c *Compiler) compileQuest(sub *syntax.Regexp) (fragment, error) {
	f, err := c.compileRegexp(sub)
	if err != nil {
		return fragment{}, err
	}
	start := c.ctx.NewState()
	end := c.ctx.NewState()
	start.AddEpsilon(f.start)
	start.AddEpsilon(end)
	f.end.AddEpsilon(end)
	return fragment{start: start, end: end}, nil
}

// compileRepeat compiles a{m,n}: m copies followed by either a star
// (unbounded) or n-m optional copies.
func (c *Compiler) compileRepeat(sub *syntax.Regexp, minCount, maxCount int) (fragment, error) {
	if maxCount != -1 && minCount > maxCount {
		return fragment{}, errors.Errorf("invalid repeat range {%d,%d}", minCount, maxCount)
	}
	var subs []*syntax.Regexp
	for i := 0; i < minCount; i++ {
		subs = append(subs, sub)
	}
	if maxCount == -1 {
		subs = append(subs, &syntax.Regexp{Op: syntax.OpStar, Sub: []*syntax.Regexp{sub}})
	}
	for i := minCount; i < maxCount; i++ {
		subs = append(subs, &syntax.Regexp{Op: syntax.OpQuest, Sub: []*syntax.Regexp{sub}})
	}
	return c.compileConcat(subs)
}

// compileEmptyMatch compiles an epsilon fragment (matches without consuming input)
func (c *Compiler) compileEmptyMatch() fragment {
	s := c.ctx.NewState()
	return fragment{start: s, end: s}
}
