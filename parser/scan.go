package parser

import (
	"strings"
	"unicode"

	"github.com/ales-tsurko/colly-go/collyerr"
)

// scanner walks source text by rune, building Node trees as it goes. It
// has no lookahead buffer beyond peek/peekAt; every grammar rule is tried
// by saving the position, attempting the match, and restoring on failure
// (standard PEG backtracking).
type scanner struct {
	src []rune
	pos int
}

func newScanner(source string) *scanner {
	return &scanner{src: []rune(source)}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(offset int) rune {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *scanner) advance() rune {
	r := s.src[s.pos]
	s.pos++
	return r
}

func (s *scanner) save() int {
	return s.pos
}

func (s *scanner) restore(mark int) {
	s.pos = mark
}

// skipHSpace consumes spaces and tabs (not newlines): the separator
// between BeatEvents (and between chord/parenthesis voices), and generally
// insignificant whitespace between expression tokens.
func (s *scanner) skipHSpace() {
	for !s.eof() && (s.peek() == ' ' || s.peek() == '\t') {
		s.pos++
	}
}

// skipHSpaceRequired consumes at least one space/tab, erroring if none is
// present.
func (s *scanner) skipHSpaceRequired() error {
	start := s.pos
	s.skipHSpace()
	if s.pos == start {
		return s.errorf("expected whitespace")
	}
	return nil
}

func (s *scanner) matchRune(r rune) bool {
	if s.peek() == r {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) matchString(str string) bool {
	runes := []rune(str)
	if s.pos+len(runes) > len(s.src) {
		return false
	}
	for i, r := range runes {
		if s.src[s.pos+i] != r {
			return false
		}
	}
	s.pos += len(runes)
	return true
}

func (s *scanner) errorf(msg string) error {
	return &collyerr.ParseError{Msg: msg, Span: collyerr.Span{Start: s.pos, End: s.pos}}
}

func (s *scanner) errorfAt(start int, msg string) error {
	return &collyerr.ParseError{Msg: msg, Span: collyerr.Span{Start: start, End: s.pos}}
}

func isHexPitchDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// leaf builds a leaf Node covering [start, s.pos) with the scanned text.
func (s *scanner) leaf(rule Rule, start int) *Node {
	return &Node{Rule: rule, Span: Span{Start: start, End: s.pos}, Text: string(s.src[start:s.pos])}
}

// node builds an interior Node covering [start, s.pos) with children.
func (s *scanner) node(rule Rule, start int, children ...*Node) *Node {
	return &Node{Rule: rule, Span: Span{Start: start, End: s.pos}, Children: children}
}

func trimmed(text string) string {
	return strings.TrimSpace(text)
}
