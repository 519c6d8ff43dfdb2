package nfa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coregx/lexgen/internal/bitvec"
)

func fullVector() bitvec.Vector {
	return bitvec.Vector{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
}

func compress(t *testing.T, ctx *Context, ranges ...Range) *State {
	t.Helper()
	s := ctx.NewState()
	for _, r := range ranges {
		s.AddRange(r.Lo, r.Hi)
	}
	s.GenerateNonASCIIMoves(ctx.Registry().Tables())
	return s
}

func TestGenerateNonASCIIMoves_SingleBlock(t *testing.T) {
	ctx := newTestContext(t)
	s := compress(t, ctx, Range{Lo: 0x100, Hi: 0x1ff})

	require.Equal(t, 0, s.NonASCIIMethod())
	require.Empty(t, s.BlockIndices())
	require.Equal(t, []LowByteEntry{{Block: 1, Vector: 0}}, s.LowByteEntries())
	require.Equal(t, []bitvec.Vector{fullVector()}, ctx.Registry().Tables().Vectors())
}

func TestGenerateNonASCIIMoves_PartialBlock(t *testing.T) {
	ctx := newTestContext(t)
	s := compress(t, ctx, Range{Lo: 0x391, Hi: 0x3a9})

	require.Equal(t, []LowByteEntry{{Block: 3, Vector: 0}}, s.LowByteEntries())
	v := ctx.Registry().Tables().Vector(0)
	require.Equal(t, 0x3a9-0x391+1, v.Count())
	require.True(t, v.Test(0x91))
	require.False(t, v.Test(0x90))
}

func TestGenerateNonASCIIMoves_SharedBlocks(t *testing.T) {
	ctx := newTestContext(t)
	tables := ctx.Registry().Tables()
	s := compress(t, ctx, Range{Lo: 0x100, Hi: 0x1ff}, Range{Lo: 0x300, Hi: 0x3ff})

	// membership of blocks 1 and 3, then their common content
	require.Equal(t, []int{0, 1}, s.BlockIndices())
	require.Empty(t, s.LowByteEntries())
	require.Equal(t, bitvec.Vector{0b1010, 0, 0, 0}, tables.Vector(0))
	require.Equal(t, fullVector(), tables.Vector(1))

	again := compress(t, ctx, Range{Lo: 0x100, Hi: 0x1ff}, Range{Lo: 0x300, Hi: 0x3ff})
	require.Equal(t, 0, again.NonASCIIMethod())
	require.Equal(t, 1, tables.MethodCount())
	require.Len(t, tables.Vectors(), 2)
}

func TestGenerateNonASCIIMoves_SharingDisabled(t *testing.T) {
	ctx := newTestContext(t, WithBlockSharing(false))
	s := compress(t, ctx, Range{Lo: 0x100, Hi: 0x1ff}, Range{Lo: 0x300, Hi: 0x3ff})

	require.Empty(t, s.BlockIndices())
	require.Equal(t, []LowByteEntry{{Block: 1, Vector: 0}, {Block: 3, Vector: 0}}, s.LowByteEntries())
	require.Len(t, ctx.Registry().Tables().Vectors(), 1)
}

func TestGenerateNonASCIIMoves_VectorsReusedAcrossStates(t *testing.T) {
	ctx := newTestContext(t)
	tables := ctx.Registry().Tables()
	a := compress(t, ctx, Range{Lo: 0x100, Hi: 0x1ff})
	b := compress(t, ctx, Range{Lo: 0x100, Hi: 0x1ff}, Range{Lo: 0x300, Hi: 0x3ff})

	require.Equal(t, []LowByteEntry{{Block: 1, Vector: 0}}, a.LowByteEntries())
	require.Equal(t, []int{1, 0}, b.BlockIndices())
	require.Equal(t, 0, a.NonASCIIMethod())
	require.Equal(t, 1, b.NonASCIIMethod())
	require.Len(t, tables.Vectors(), 2)
}

func TestGenerateNonASCIIMoves_Supplementary(t *testing.T) {
	ctx := newTestContext(t)
	tables := ctx.Registry().Tables()
	s := compress(t, ctx, Range{Lo: 0x10000, Hi: 0x100ff})

	require.Equal(t, []LowByteEntry{{Block: 256, Vector: 0}}, s.LowByteEntries())
	require.True(t, tables.MethodContains(s.NonASCIIMethod(), 0x10080))
	require.False(t, tables.MethodContains(s.NonASCIIMethod(), 0x100))
	require.False(t, tables.MethodContains(s.NonASCIIMethod(), 0x10100))
}

func TestGenerateNonASCIIMoves_NoRanges(t *testing.T) {
	ctx := newTestContext(t)
	s := ctx.NewState()
	s.AddRange('a', 'z')
	s.GenerateNonASCIIMoves(ctx.Registry().Tables())

	require.Equal(t, -1, s.NonASCIIMethod())
	require.Nil(t, s.BlockIndices())
	require.Equal(t, 0, ctx.Registry().Tables().MethodCount())
}

func TestTables_MethodContainsOutOfRange(t *testing.T) {
	ctx := newTestContext(t)
	s := compress(t, ctx, Range{Lo: 0x80, Hi: 0xff})
	tables := ctx.Registry().Tables()

	require.True(t, tables.MethodContains(s.NonASCIIMethod(), 0x80))
	require.False(t, tables.MethodContains(s.NonASCIIMethod(), 'a'))
	require.False(t, tables.MethodContains(-1, 0x80))
	require.False(t, tables.MethodContains(5, 0x80))
}

func TestTables_RoundTrip(t *testing.T) {
	ranges := []Range{
		{Lo: 0x80, Hi: 0x85},
		{Lo: 0x391, Hi: 0x3a9},
		{Lo: 0x4e00, Hi: 0x9fff},
		{Lo: 0xac00, Hi: 0xac10},
		{Lo: 0x1f600, Hi: 0x1f64f},
	}
	samples := []rune{0x80, 0x85, 0x86, 0x390, 0x391, 0x3a9, 0x4dff, 0x4e00, 0x7000, 0x9fff,
		0xa000, 0xac00, 0xac10, 0xac11, 0x1f5ff, 0x1f600, 0x1f64f, 0x1f650}

	for _, sharing := range []bool{true, false} {
		ctx := newTestContext(t, WithBlockSharing(sharing))
		tables := ctx.Registry().Tables()
		s := compress(t, ctx, ranges...)

		require.True(t, sameBits(s.nonASCIISet(), tables.Expand(s.NonASCIIMethod())), "sharing=%v", sharing)
		for _, c := range samples {
			require.Equal(t, s.CanMove(c), tables.MethodContains(s.NonASCIIMethod(), c), "sharing=%v c=%#x", sharing, c)
		}
		if sharing {
			require.NotEmpty(t, s.BlockIndices())
		} else {
			require.Empty(t, s.BlockIndices())
		}
	}
}
