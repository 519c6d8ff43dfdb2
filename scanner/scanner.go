// Package scanner tokenizes text with the tables produced by lexgen.Generate.
//
// It reads nothing but the Output tables: the start sets, the per-state ASCII
// and non-ASCII moves, the successor sets and the token kinds. Matching is
// longest-match; among tokens matching the same longest prefix the one with
// the smallest ordinal wins.
//
// A Scanner is not safe for concurrent use, but any number of scanners may
// share one Output.
package scanner

import (
	"io"
	"unicode/utf8"

	"github.com/pingcap/errors"

	"github.com/coregx/lexgen"
	"github.com/coregx/lexgen/internal/conv"
	"github.com/coregx/lexgen/internal/sparse"
)

// ErrNoMatch is returned when no token of the current context matches the
// input at the current position.
var ErrNoMatch = errors.New("no token matches the input")

// Token is one scanned token.
type Token struct {
	Kind    int
	Name    string
	Text    string
	Context string
	// Offset is the byte offset of the token in the input.
	Offset int
	// Line and Column are 1-based; Column counts runes.
	Line   int
	Column int
}

// Scanner splits an input string into tokens.
type Scanner struct {
	out *lexgen.Output
	src string

	pos  int
	line int
	col  int
	ctx  int

	// cur and next hold the indexed states alive before and after the
	// current character.
	cur  *sparse.SparseSet
	next *sparse.SparseSet
}

// New creates a scanner over src, starting in the initial context of out.
func New(out *lexgen.Output, src string) *Scanner {
	capacity := 0
	for i := range out.Contexts {
		capacity = max(capacity, len(out.Contexts[i].States))
	}
	return &Scanner{
		out:  out,
		src:  src,
		line: 1,
		col:  1,
		ctx:  out.ContextIndex(out.Initial),
		cur:  sparse.NewSparseSet(conv.IntToUint32(capacity)),
		next: sparse.NewSparseSet(conv.IntToUint32(capacity)),
	}
}

// Context returns the name of the current lexical context.
func (s *Scanner) Context() string {
	if s.ctx < 0 {
		return ""
	}
	return s.out.Contexts[s.ctx].Name
}

// Next returns the next non-skipped token, or io.EOF at the end of input.
func (s *Scanner) Next() (Token, error) {
	for {
		if s.pos >= len(s.src) {
			return Token{}, io.EOF
		}
		if s.ctx < 0 {
			return Token{}, errors.Errorf("initial context %s has no tables", s.out.Initial)
		}
		kind, end := s.match()
		if kind == lexgen.NoKind {
			r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
			return Token{}, errors.Annotatef(ErrNoMatch, "%q at %d:%d in context %s",
				r, s.line, s.col, s.Context())
		}

		info := s.out.Tokens[kind]
		tok := Token{
			Kind:    kind,
			Name:    info.Name,
			Text:    s.src[s.pos:end],
			Context: s.Context(),
			Offset:  s.pos,
			Line:    s.line,
			Column:  s.col,
		}
		s.advance(end)
		if info.Next != "" {
			s.ctx = s.out.ContextIndex(info.Next)
		}
		if !info.Skip {
			return tok, nil
		}
	}
}

// All scans the remaining input.
func (s *Scanner) All() ([]Token, error) {
	var toks []Token
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
}

// match runs the automaton of the current context from the current position
// and returns the kind and end offset of the longest match, or NoKind.
func (s *Scanner) match() (kind, end int) {
	ct := &s.out.Contexts[s.ctx]
	kind, end = lexgen.NoKind, s.pos

	s.cur.Clear()
	for _, set := range ct.StartSets {
		if set == lexgen.NoSet {
			continue
		}
		for _, i := range ct.SuccessorSets[set] {
			s.cur.Insert(conv.IntToUint32(i))
		}
	}

	for i := s.pos; i < len(s.src) && !s.cur.IsEmpty(); {
		c, size := utf8.DecodeRuneInString(s.src[i:])
		i += size

		s.next.Clear()
		best := lexgen.NoKind
		for _, idx := range s.cur.Values() {
			st := &ct.States[idx]
			if !s.out.CanMove(st, c) {
				continue
			}
			if st.Kind != lexgen.NoKind && (best == lexgen.NoKind || st.Kind < best) {
				best = st.Kind
			}
			if st.Next != lexgen.NoSet {
				for _, j := range ct.SuccessorSets[st.Next] {
					s.next.Insert(conv.IntToUint32(j))
				}
			}
		}
		if best != lexgen.NoKind {
			kind, end = best, i
		}
		s.cur, s.next = s.next, s.cur
	}
	return kind, end
}

func (s *Scanner) advance(end int) {
	for _, r := range s.src[s.pos:end] {
		if r == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
	}
	s.pos = end
}
