package lexspec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coregx/lexgen/nfa"
)

// compileSingle builds a one-context grammar and returns its closed initial
// state and the compiler.
func compileSingle(t *testing.T, tokens ...*TokenDecl) (*nfa.State, *Compiler) {
	t.Helper()
	g := &Grammar{Contexts: []*ContextDecl{{Name: "DEFAULT", Tokens: tokens}}}
	require.NoError(t, g.Validate())

	comp := NewCompiler(g, nfa.NewRegistry(), DefaultCompilerConfig())
	ctx, init, err := comp.CompileContext(g.Contexts[0])
	require.NoError(t, err)
	require.NoError(t, ctx.Build(init))
	return init, comp
}

// accepted returns the kind matched by exactly the whole input, NoKind if
// none.
func accepted(init *nfa.State, input string) int {
	cur := init.Epsilons()
	kind := nfa.NoKind
	for _, c := range input {
		var next []*nfa.State
		kind = nfa.NoKind
		for _, s := range cur {
			var k int
			next, k = s.MoveFrom(c, next)
			kind = min(kind, k)
		}
		cur = next
	}
	return kind
}

func TestCompile_Patterns(t *testing.T) {
	tests := []struct {
		pattern    string
		ignoreCase bool
		accept     []string
		reject     []string
	}{
		{pattern: "if", accept: []string{"if"}, reject: []string{"i", "iff", "IF"}},
		{pattern: "if", ignoreCase: true, accept: []string{"if", "IF", "iF"}, reject: []string{"f"}},
		{pattern: "[a-c]+", accept: []string{"a", "abcba"}, reject: []string{"", "d", "abd"}},
		{pattern: "ab|cd", accept: []string{"ab", "cd"}, reject: []string{"ad", "abcd"}},
		{pattern: "colou?r", accept: []string{"color", "colour"}, reject: []string{"colouur"}},
		{pattern: "a{2,3}", accept: []string{"aa", "aaa"}, reject: []string{"a", "aaaa"}},
		{pattern: "a{2,}", accept: []string{"aa", "aaaaa"}, reject: []string{"a"}},
		{pattern: "(ab)*c", accept: []string{"c", "abc", "ababc"}, reject: []string{"ab", "abac"}},
		{pattern: "[α-ω]+", accept: []string{"λ", "αβγ"}, reject: []string{"a", "Α"}},
		{pattern: "x.", accept: []string{"xy", "x€", "x😀"}, reject: []string{"x\n", "x"}},
		{pattern: `\p{Han}+`, accept: []string{"漢字"}, reject: []string{"かな"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			init, _ := compileSingle(t, &TokenDecl{Name: "T", Pattern: tt.pattern, IgnoreCase: tt.ignoreCase})
			for _, in := range tt.accept {
				require.Equal(t, 0, accepted(init, in), "accept %q", in)
			}
			for _, in := range tt.reject {
				require.Equal(t, nfa.NoKind, accepted(init, in), "reject %q", in)
			}
		})
	}
}

func TestCompile_DeclarationOrderWins(t *testing.T) {
	init, comp := compileSingle(t,
		&TokenDecl{Name: "IF", Pattern: "if"},
		&TokenDecl{Name: "IDENT", Pattern: "[a-z]+"},
	)
	require.Equal(t, "IF", comp.Token(0).Name)
	require.Equal(t, 0, accepted(init, "if"))
	require.Equal(t, 1, accepted(init, "ifx"))
	require.Equal(t, 1, accepted(init, "i"))
}

func TestCompile_FinalStatesCarryTokens(t *testing.T) {
	g := &Grammar{Contexts: []*ContextDecl{{Name: "DEFAULT", Tokens: []*TokenDecl{
		{Name: "A", Pattern: "a"},
		{Name: "B", Pattern: "b+"},
	}}}}
	require.NoError(t, g.Validate())
	comp := NewCompiler(g, nfa.NewRegistry(), DefaultCompilerConfig())
	ctx, init, err := comp.CompileContext(g.Contexts[0])
	require.NoError(t, err)
	require.Equal(t, 2, init.EpsilonCount())

	finals := 0
	for _, s := range ctx.States() {
		if s.IsFinal() {
			finals++
			require.NotNil(t, s.Token())
			require.Same(t, comp.Token(s.Token().Ordinal), s.Token())
		}
	}
	require.Equal(t, 2, finals)
}

func TestCompile_TooComplex(t *testing.T) {
	g := &Grammar{Contexts: []*ContextDecl{{Name: "DEFAULT", Tokens: []*TokenDecl{
		{Name: "DEEP", Pattern: "((a|b)c)*d"},
	}}}}
	require.NoError(t, g.Validate())

	comp := NewCompiler(g, nfa.NewRegistry(), CompilerConfig{MaxRecursionDepth: 3})
	_, _, err := comp.CompileContext(g.Contexts[0])
	require.ErrorIs(t, err, ErrTooComplex)

	var ge *GrammarError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, "DEEP", ge.Token)
}

func TestCompile_RequiresValidation(t *testing.T) {
	g := &Grammar{Contexts: []*ContextDecl{{Name: "DEFAULT", Tokens: []*TokenDecl{
		{Name: "A", Pattern: "a"},
	}}}}
	comp := NewCompiler(g, nfa.NewRegistry(), DefaultCompilerConfig())
	_, _, err := comp.CompileContext(g.Contexts[0])
	require.Error(t, err)
}

func TestCompile_ContextsShareRegistry(t *testing.T) {
	g, err := LoadFile("testdata/calc.toml")
	require.NoError(t, err)

	reg := nfa.NewRegistry()
	comp := NewCompiler(g, reg, DefaultCompilerConfig())
	for _, decl := range g.Contexts {
		ctx, init, err := comp.CompileContext(decl)
		require.NoError(t, err)
		require.NoError(t, ctx.Build(init))
	}
	require.Len(t, reg.Contexts(), 2)
	require.Equal(t, "COMMENT", reg.Contexts()[1].Name())
	require.Positive(t, reg.Tables().MethodCount())
}
