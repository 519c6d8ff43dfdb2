package nfa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignIndex_OnlyStatesWithTransitions(t *testing.T) {
	ctx := newTestContext(t)
	init := ctx.NewState()
	tok := &Token{Name: "A", Ordinal: 0}
	s, f := addRangeToken(ctx, init, tok, 'a', 'a')

	ctx.OptimizeEpsilonMoves()
	require.NoError(t, ctx.AssignIndices())

	require.Equal(t, -1, init.Index())
	require.Equal(t, 0, s.Index())
	require.Equal(t, -1, f.Index())
	require.Equal(t, []*State{s}, ctx.Indexed())
	require.Same(t, s, ctx.IndexedState(0))
	require.Nil(t, ctx.IndexedState(1))
	require.Nil(t, ctx.IndexedState(-1))
}

func TestAssignIndex_NextIsIndexedFirst(t *testing.T) {
	ctx := newTestContext(t)
	s1 := ctx.NewState()
	s2 := ctx.NewState()
	f := ctx.NewState()
	s1.AddChar('a')
	s1.SetNext(s2)
	s2.AddChar('b')
	s2.SetNext(f)
	f.SetFinal(true)
	f.SetToken(&Token{Name: "AB", Ordinal: 0})

	ctx.OptimizeEpsilonMoves()
	require.NoError(t, s1.AssignIndex())

	require.Equal(t, 0, s2.Index())
	require.Equal(t, 1, s1.Index())
	require.Equal(t, 1, s2.ReferencedBy())

	// no-op once indexed
	require.NoError(t, s1.AssignIndex())
	require.Len(t, ctx.Indexed(), 2)
}

func TestAssignIndex_MaterializesNextSuccessors(t *testing.T) {
	ctx := newTestContext(t)
	init := ctx.NewState()
	tok := &Token{Name: "AB", Ordinal: 0}
	s1, n1 := addRangeToken(ctx, init, tok, 'a', 'a')
	n1.SetFinal(false)
	n1.SetToken(nil)
	s2 := ctx.NewState()
	n2 := ctx.NewState()
	s2.AddChar('b')
	s2.SetNext(n2)
	n2.SetFinal(true)
	n2.SetToken(tok)
	n1.AddEpsilon(s2)

	ctx.OptimizeEpsilonMoves()
	require.NoError(t, ctx.AssignIndices())

	require.Equal(t, 0, s1.Index())
	require.Equal(t, 1, s2.Index())
	arr, ok := ctx.SuccessorArray("{ 1 }")
	require.True(t, ok)
	require.Equal(t, []int{1}, arr)
	require.Equal(t, []*State{s2}, n1.Successors())
	require.Equal(t, NoKind, s1.Kind())
	require.Equal(t, 0, s2.Kind())
}

func TestAssignIndex_UnwiredNext(t *testing.T) {
	ctx := newTestContext(t)
	s := ctx.NewState()
	s.AddChar('a')

	ctx.OptimizeEpsilonMoves()
	err := ctx.AssignIndices()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnwiredNext))

	var be *BuildError
	require.True(t, errors.As(err, &be))
	require.Equal(t, s.ID(), be.StateID)
	require.Equal(t, "DEFAULT", be.Context)
	require.Equal(t, -1, s.Index())
}

func TestAssignIndex_NextCycle(t *testing.T) {
	ctx := newTestContext(t)
	a := ctx.NewState()
	b := ctx.NewState()
	a.AddChar('a')
	b.AddChar('b')
	a.SetNext(b)
	b.SetNext(a)

	ctx.OptimizeEpsilonMoves()
	err := a.AssignIndex()
	require.ErrorIs(t, err, ErrNextCycle)

	self := ctx.NewState()
	self.AddChar('s')
	self.SetNext(self)
	require.ErrorIs(t, self.AssignIndex(), ErrNextCycle)
}

func TestAssignIndex_PlusLoop(t *testing.T) {
	// a+ : s -'a'-> n, n -eps-> s, n final
	ctx := newTestContext(t)
	init := ctx.NewState()
	s := ctx.NewState()
	n := ctx.NewState()
	init.AddEpsilon(s)
	s.AddChar('a')
	s.SetNext(n)
	n.AddEpsilon(s)
	n.SetFinal(true)
	n.SetToken(&Token{Name: "AS", Ordinal: 0})

	require.NoError(t, ctx.Build(init))

	require.Equal(t, 0, s.Index())
	require.Equal(t, []SuccessorSet{{Key: "{ 0 }", Indices: []int{0}}}, ctx.StartSets())
	// once from indexing s (through n), once from the start state
	require.Equal(t, 2, s.ReferencedBy())
	require.Equal(t, 0, s.Kind())
}

func TestAssignIndex_ReentryThroughSuccessors(t *testing.T) {
	// s1 -'a'-> n -'b'-> m, m -eps-> s1: indexing s1 reaches s1 again
	// through the successors of m while s1 is still being indexed.
	ctx := newTestContext(t)
	s1 := ctx.NewState()
	n := ctx.NewState()
	m := ctx.NewState()
	s1.AddChar('a')
	s1.SetNext(n)
	n.AddChar('b')
	n.SetNext(m)
	m.AddEpsilon(s1)
	m.SetFinal(true)
	m.SetToken(&Token{Name: "AB", Ordinal: 0})

	ctx.OptimizeEpsilonMoves()
	require.NoError(t, s1.AssignIndex())

	require.Equal(t, 0, n.Index())
	require.Equal(t, 1, s1.Index())
	arr, ok := ctx.SuccessorArray("{ 0 }")
	require.True(t, ok)
	require.Equal(t, []int{0}, arr)
	arr, ok = ctx.SuccessorArray("{ 1 }")
	require.True(t, ok)
	require.Equal(t, []int{1}, arr)
}

func TestSuccessorSet_SharedArrays(t *testing.T) {
	ctx := newTestContext(t)
	init := ctx.NewState()
	tok := &Token{Name: "T", Ordinal: 0}
	a, na := addRangeToken(ctx, init, tok, 'a', 'a')
	b, nb := addRangeToken(ctx, init, tok, 'b', 'b')
	// both next states continue with a or b
	for _, n := range []*State{na, nb} {
		n.AddEpsilon(a)
		n.AddEpsilon(b)
	}

	require.NoError(t, ctx.Build(init))

	setA, err := na.SuccessorSet()
	require.NoError(t, err)
	setB, err := nb.SuccessorSet()
	require.NoError(t, err)
	start, err := init.SuccessorSet()
	require.NoError(t, err)

	require.Equal(t, "{ 0, 1 }", setA.Key)
	require.Equal(t, setA.Key, setB.Key)
	require.Equal(t, setA.Key, start.Key)
	require.Same(t, &setA.Indices[0], &setB.Indices[0])
	require.Equal(t, 1, ctx.SuccessorArrayCount())
	require.Len(t, ctx.StartSets(), 1)

	refs := a.ReferencedBy()
	peek := na.IndexedSuccessors()
	require.Equal(t, setA.Key, peek.Key)
	require.Same(t, &setA.Indices[0], &peek.Indices[0])
	require.Equal(t, refs, a.ReferencedBy())
	require.True(t, ctx.NewState().IndexedSuccessors().IsEmpty())
}

func TestSuccessorSet_Empty(t *testing.T) {
	ctx := newTestContext(t)
	s := ctx.NewState()
	set, err := s.SuccessorSet()
	require.NoError(t, err)
	require.True(t, set.IsEmpty())
	require.Equal(t, SuccessorSet{}, set)

	require.NoError(t, ctx.AddStartState(s))
	require.NoError(t, ctx.AddStartState(s))
	require.Equal(t, []SuccessorSet{{}}, ctx.StartSets())
}

func TestAddStartState_ForeignState(t *testing.T) {
	reg := NewRegistry()
	a := reg.NewContext("A")
	b := reg.NewContext("B")
	err := a.AddStartState(b.NewState())
	require.ErrorIs(t, err, ErrForeignState)
}

func TestBuild_Deterministic(t *testing.T) {
	build := func() *Registry {
		reg := NewRegistry()
		for _, name := range []string{"DEFAULT", "COMMENT"} {
			ctx := reg.NewContext(name)
			init := ctx.NewState()
			addRangeToken(ctx, init, &Token{Name: "ID", Ordinal: 0}, 'a', 'z')
			addRangeToken(ctx, init, &Token{Name: "GREEK", Ordinal: 1}, 0x391, 0x3a9)
			s, _ := addRangeToken(ctx, init, &Token{Name: "CJK", Ordinal: 2}, 0x4e00, 0x4fff)
			s.AddRange(0x100, 0x1ff)
			require.NoError(t, ctx.Build(init))
		}
		return reg
	}

	r1, r2 := build(), build()
	require.Equal(t, r1.Tables().Vectors(), r2.Tables().Vectors())
	require.Equal(t, r1.Tables().Methods(), r2.Tables().Methods())
	for i, c1 := range r1.Contexts() {
		c2 := r2.Contexts()[i]
		require.Equal(t, c1.StartSets(), c2.StartSets())
		require.Len(t, c2.Indexed(), len(c1.Indexed()))
		for j, s1 := range c1.Indexed() {
			s2 := c2.Indexed()[j]
			require.Equal(t, s1.ID(), s2.ID())
			require.Equal(t, s1.NonASCIIMethod(), s2.NonASCIIMethod())
			require.Equal(t, s1.ASCIIMoves(), s2.ASCIIMoves())
		}
	}
	// the second context reuses every vector and method of the first
	require.Equal(t, 2, r1.Tables().MethodCount())
}
