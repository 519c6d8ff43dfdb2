package lexgen

import (
	"fmt"

	"github.com/coregx/lexgen/internal/bitvec"
	"github.com/coregx/lexgen/nfa"
)

// NoKind marks a state whose move accepts no token.
const NoKind = -1

// NoSet marks an empty successor set reference.
const NoSet = -1

// BitVector is a 256-bit vector of the grammar-wide vector table. It
// marshals as the bit vector literal used by generated lexers.
type BitVector = bitvec.Vector

// Method is the compressed non-ASCII dispatch method shared by states with
// identical non-ASCII moves.
type Method = nfa.MethodSignature

// ASCIIMoves is the 128-bit set of ASCII characters a state moves on, as two
// 64-bit words.
type ASCIIMoves [2]uint64

// Test reports whether c is in the set.
func (m ASCIIMoves) Test(c rune) bool {
	if c < 0 || c >= 128 {
		return false
	}
	return m[c>>6]&(1<<(c&63)) != 0
}

// MarshalText renders the set as a two-word literal.
func (m ASCIIMoves) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("{0x%x, 0x%x}", m[0], m[1])), nil
}

// Output is the emission-ready result of a generation run. It is immutable
// once returned by Generate and may be shared between goroutines.
type Output struct {
	// Initial names the context scanning starts in.
	Initial  string          `json:"initial"`
	Contexts []ContextTables `json:"contexts"`
	// BitVectors and Methods are shared by every context and referenced by
	// index from the state tables.
	BitVectors []BitVector `json:"bitVectors"`
	Methods    []Method    `json:"methods"`
	Tokens     []TokenInfo `json:"tokens"`
}

// TokenInfo describes a token by ordinal.
type TokenInfo struct {
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Context string `json:"context"`
	Skip    bool   `json:"skip,omitempty"`
	Next    string `json:"next,omitempty"`
}

// ContextTables holds the tables of one lexical context.
type ContextTables struct {
	Name string `json:"name"`
	// States lists the indexed states; States[i].Index == i.
	States []StateTables `json:"states"`
	// SuccessorSets holds the distinct successor index arrays in order of
	// first use.
	SuccessorSets [][]int `json:"successorSets"`
	// StartSets references the successor sets scanning starts from, NoSet
	// standing for an empty set.
	StartSets []int `json:"startSets"`
}

// StateTables is the emission form of one indexed state.
type StateTables struct {
	Index int `json:"index"`
	// ASCII is nil when the state has no ASCII moves.
	ASCII *ASCIIMoves `json:"ascii,omitempty"`
	// NonASCIIMethod indexes Output.Methods, -1 when the state has no
	// non-ASCII moves.
	NonASCIIMethod int `json:"nonAsciiMethod"`
	// Next indexes the SuccessorSets of the context, NoSet when the state
	// continues nowhere.
	Next int `json:"next"`
	// Kind is the ordinal of the token matched by a move, NoKind if none.
	Kind         int `json:"kind"`
	ReferencedBy int `json:"referencedBy"`
}

// ContextIndex returns the position of the named context, -1 if none.
func (o *Output) ContextIndex(name string) int {
	for i := range o.Contexts {
		if o.Contexts[i].Name == name {
			return i
		}
	}
	return -1
}

// CanMove reports whether st moves on c, decoding the non-ASCII dispatch
// method the way a generated lexer does.
func (o *Output) CanMove(st *StateTables, c rune) bool {
	if c < 128 {
		return st.ASCII != nil && st.ASCII.Test(c)
	}
	if st.NonASCIIMethod < 0 || st.NonASCIIMethod >= len(o.Methods) {
		return false
	}
	return o.Methods[st.NonASCIIMethod].Contains(o.BitVectors, c)
}

// newContextTables collects the tables of a built context.
func newContextTables(ctx *nfa.Context) ContextTables {
	ct := ContextTables{Name: ctx.Name()}
	sets := make(map[string]int)
	ref := func(set nfa.SuccessorSet) int {
		if set.IsEmpty() {
			return NoSet
		}
		if i, ok := sets[set.Key]; ok {
			return i
		}
		i := len(ct.SuccessorSets)
		sets[set.Key] = i
		ct.SuccessorSets = append(ct.SuccessorSets, set.Indices)
		return i
	}

	ct.States = make([]StateTables, 0, len(ctx.Indexed()))
	for _, s := range ctx.Indexed() {
		st := StateTables{
			Index:          s.Index(),
			NonASCIIMethod: s.NonASCIIMethod(),
			Next:           ref(s.Next().IndexedSuccessors()),
			Kind:           NoKind,
			ReferencedBy:   s.ReferencedBy(),
		}
		if s.HasASCIIMoves() {
			moves := ASCIIMoves(s.ASCIIMoves())
			st.ASCII = &moves
		}
		if k := s.Kind(); k != nfa.NoKind {
			st.Kind = k
		}
		ct.States = append(ct.States, st)
	}
	for _, set := range ctx.StartSets() {
		ct.StartSets = append(ct.StartSets, ref(set))
	}
	return ct
}
