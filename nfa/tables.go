package nfa

import (
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/coregx/lexgen/internal/bitvec"
)

// bmpBlocks is the number of 256-codepoint blocks of the Basic Multilingual
// Plane. Only these blocks take part in block sharing, since a group is
// described by a 256-bit membership vector.
const bmpBlocks = 256

// Tables holds the grammar-wide non-ASCII compression tables: every distinct
// 256-bit vector and every distinct dispatch method. Both are append-only;
// an index, once handed out, is stable for the rest of the run.
type Tables struct {
	vectorIndex map[bitvec.Vector]int
	vectors     []bitvec.Vector

	// methods holds the canonical state of each dispatch method
	methods []*State

	blockSharing bool
}

// MethodSignature is the compressed form shared by every state using one
// dispatch method.
type MethodSignature struct {
	LowByte []LowByteEntry `json:"lowByte"`
	// Blocks holds (membership vector, content vector) index pairs.
	Blocks []int `json:"blocks"`
}

// NewTables creates empty tables with block sharing enabled.
func NewTables() *Tables {
	return &Tables{
		vectorIndex:  make(map[bitvec.Vector]int),
		blockSharing: true,
	}
}

// Vectors returns the distinct bit vectors in index order.
func (t *Tables) Vectors() []bitvec.Vector {
	return t.vectors
}

// Vector returns the bit vector with the given index.
func (t *Tables) Vector(index int) bitvec.Vector {
	return t.vectors[index]
}

// MethodCount returns the number of distinct dispatch methods.
func (t *Tables) MethodCount() int {
	return len(t.methods)
}

// Method returns the signature of the given dispatch method.
func (t *Tables) Method(method int) MethodSignature {
	s := t.methods[method]
	return MethodSignature{LowByte: s.lowByte, Blocks: s.blockIndices}
}

// Methods returns every dispatch method signature in index order.
func (t *Tables) Methods() []MethodSignature {
	out := make([]MethodSignature, len(t.methods))
	for i := range t.methods {
		out[i] = t.Method(i)
	}
	return out
}

// intern returns the index of v, registering it if it is new.
func (t *Tables) intern(v bitvec.Vector) int {
	if idx, ok := t.vectorIndex[v]; ok {
		return idx
	}
	idx := len(t.vectors)
	t.vectors = append(t.vectors, v)
	t.vectorIndex[v] = idx
	return idx
}

// MethodContains reports whether the non-ASCII codepoint c is accepted by the
// given dispatch method, decoding it the way a generated lexer does.
func (t *Tables) MethodContains(method int, c rune) bool {
	if method < 0 || method >= len(t.methods) || c < asciiLimit {
		return false
	}
	return t.Method(method).Contains(t.vectors, c)
}

// Contains decodes the signature against the vector table.
func (m MethodSignature) Contains(vectors []bitvec.Vector, c rune) bool {
	block, low := int(c>>8), uint8(c&0xff)
	for _, e := range m.LowByte {
		if e.Block == block {
			v := vectors[e.Vector]
			return v.Test(low)
		}
	}
	if block >= bmpBlocks {
		return false
	}
	for i := 0; i+1 < len(m.Blocks); i += 2 {
		members, content := vectors[m.Blocks[i]], vectors[m.Blocks[i+1]]
		if members.Test(uint8(block)) && content.Test(low) {
			return true
		}
	}
	return false
}

// Expand rebuilds the full non-ASCII codepoint set of a dispatch method.
func (t *Tables) Expand(method int) *bitset.BitSet {
	out := bitset.New(0)
	m := t.Method(method)
	for i := 0; i+1 < len(m.Blocks); i += 2 {
		members, content := t.vectors[m.Blocks[i]], t.vectors[m.Blocks[i+1]]
		for b := 0; b < bmpBlocks; b++ {
			if members.Test(uint8(b)) {
				content.Expand(out, b)
			}
		}
	}
	for _, e := range m.LowByte {
		t.vectors[e.Vector].Expand(out, e.Block)
	}
	return out
}

// nonASCIISet expands the ranges of the state into a bitset.
func (s *State) nonASCIISet() *bitset.BitSet {
	if len(s.ranges) == 0 {
		return bitset.New(0)
	}
	bs := bitset.New(uint(s.ranges[len(s.ranges)-1].Hi) + 1)
	for _, r := range s.ranges {
		for c := r.Lo; c <= r.Hi; c++ {
			bs.Set(uint(c))
		}
	}
	return bs
}

// GenerateNonASCIIMoves compresses the non-ASCII ranges of the state into t
// and assigns the state its dispatch method. States without non-ASCII ranges
// are left alone.
//
// The ranges are cut into 256-codepoint blocks. Blocks of the BMP with
// identical content are grouped: each group registers a membership vector
// (which blocks) followed by a content vector (which low bytes). Remaining
// non-empty blocks become low-byte entries. Finally the state reuses the
// method of the first registered state with the same compressed form, or
// registers a new one.
func (s *State) GenerateNonASCIIMoves(t *Tables) {
	if len(s.ranges) == 0 || s.nonASCIIMethod != -1 {
		return
	}
	blocks := bitvec.Blocks(s.nonASCIISet(), bmpBlocks)

	superfluous := bitset.New(uint(len(blocks)))
	s.blockIndices = []int{}
	s.lowByte = []LowByteEntry{}

	if t.blockSharing {
		for i := 0; i < bmpBlocks; i++ {
			if blocks[i].IsEmpty() {
				superfluous.Set(uint(i))
			}
			if superfluous.Test(uint(i)) {
				continue
			}
			var common bitvec.Vector
			for j := i + 1; j < bmpBlocks; j++ {
				if superfluous.Test(uint(j)) || blocks[j] != blocks[i] {
					continue
				}
				superfluous.Set(uint(j))
				if common.IsEmpty() {
					superfluous.Set(uint(i))
					common.Set(uint8(i))
				}
				common.Set(uint8(j))
			}
			if !common.IsEmpty() {
				s.blockIndices = append(s.blockIndices, t.intern(common), t.intern(blocks[i]))
			}
		}
	}

	for i, block := range blocks {
		if superfluous.Test(uint(i)) || block.IsEmpty() {
			continue
		}
		s.lowByte = append(s.lowByte, LowByteEntry{Block: i, Vector: t.intern(block)})
	}

	s.assignMethod(t)
}

func (s *State) assignMethod(t *Tables) {
	for i, canon := range t.methods {
		if slices.Equal(s.lowByte, canon.lowByte) && slices.Equal(s.blockIndices, canon.blockIndices) {
			s.nonASCIIMethod = i
			return
		}
	}
	s.nonASCIIMethod = len(t.methods)
	t.methods = append(t.methods, s)
}
