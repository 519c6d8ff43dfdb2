// Package bitvec provides the fixed 256-bit vector used as the unit of
// non-ASCII transition compression.
//
// One Vector describes either the low-byte content of a 256-codepoint block
// or the membership of block numbers in a shared group. Vector is a plain
// comparable array so it can key a map directly.
package bitvec

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Width is the number of bits in a Vector (one block of codepoints).
const Width = 256

// Vector is a 256-bit set stored as four little-endian 64-bit words.
type Vector [4]uint64

// Set sets bit i.
func (v *Vector) Set(i uint8) {
	v[i>>6] |= 1 << (i & 63)
}

// Test reports whether bit i is set.
func (v *Vector) Test(i uint8) bool {
	return v[i>>6]&(1<<(i&63)) != 0
}

// IsEmpty reports whether no bit is set.
func (v Vector) IsEmpty() bool {
	return v[0]|v[1]|v[2]|v[3] == 0
}

// Count returns the number of set bits.
func (v Vector) Count() int {
	return bits.OnesCount64(v[0]) + bits.OnesCount64(v[1]) +
		bits.OnesCount64(v[2]) + bits.OnesCount64(v[3])
}

// Words returns the vector as a slice of four words.
func (v Vector) Words() []uint64 {
	return []uint64{v[0], v[1], v[2], v[3]}
}

// String renders the vector as a brace-enclosed list of hex words, the form
// used for bit vector literals in generated lexers.
func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, w := range v {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%x", w)
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalText renders the vector the way String does.
func (v Vector) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Blocks splits bs into 256-bit blocks. The result has at least minBlocks
// entries and grows to cover the highest set bit.
func Blocks(bs *bitset.BitSet, minBlocks int) []Vector {
	n := minBlocks
	if l := int(bs.Len()); (l+Width-1)/Width > n {
		n = (l + Width - 1) / Width
	}
	blocks := make([]Vector, n)
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		blocks[i/Width].Set(uint8(i % Width))
	}
	return blocks
}

// Expand sets, in dst, every bit of v offset by block*256.
func (v Vector) Expand(dst *bitset.BitSet, block int) {
	base := uint(block) * Width
	for w, word := range v {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			dst.Set(base + uint(w*64+b))
			word &= word - 1
		}
	}
}
