// Package completion implements a grammar-agnostic, ANTLR-based SQL
// auto-completion engine: given a parser, a caret position and a cache of
// schema object names, it returns a ranked, deduplicated list of
// completion entries valid at that caret.
package completion

import "github.com/antlr4-go/antlr/v4"

// Scanner is a bidirectional cursor over a pre-tokenized ANTLR token
// stream. It never fails: movement past either end clamps to that
// boundary and leaves the scanner positioned on the first/last token.
type Scanner struct {
	input  *antlr.CommonTokenStream
	index  int
	tokens []antlr.Token
}

// NewScanner fills the token stream (forcing the lexer to run to
// completion) and positions the scanner on the first token.
func NewScanner(input *antlr.CommonTokenStream) *Scanner {
	input.Fill()
	return &Scanner{
		input:  input,
		index:  0,
		tokens: input.GetAllTokens(),
	}
}

func (s *Scanner) TokenIndex() int {
	return s.index
}

// TokenChannel returns the channel of the token at the current position.
// Non-zero means hidden (whitespace, comments).
func (s *Scanner) TokenChannel() int {
	if s.index >= len(s.tokens) {
		return antlr.TokenDefaultChannel
	}
	return s.tokens[s.index].GetChannel()
}

// Save snapshots the current position and returns a closure that restores
// it. Preferred over manual Push/Pop pairs (see "Deviations and
// justifications" in DESIGN.md): a deferred restore runs on every return
// path, so an early return cannot leave the position unrestored.
func (s *Scanner) Save() func() {
	saved := s.index
	return func() {
		s.index = saved
	}
}

// LookBack reports the token type immediately before the current position
// without moving it, or antlr.TokenInvalidType at the start of the stream.
func (s *Scanner) LookBack(skipHidden bool) int {
	index := s.index
	for index > 0 {
		index--
		if s.tokens[index].GetChannel() == antlr.TokenDefaultChannel || !skipHidden {
			return s.tokens[index].GetTokenType()
		}
	}

	return antlr.TokenInvalidType
}

// step moves the cursor by delta (+1 or -1), optionally skipping
// hidden-channel tokens along the way, and reports whether it landed on a
// token rather than running off either end. On failure the cursor is left
// on the last token it did manage to reach, matching Next/Previous below.
func (s *Scanner) step(delta int, skipHidden bool) bool {
	for {
		next := s.index + delta
		if next < 0 || next >= len(s.tokens) {
			return false
		}
		s.index = next
		if !skipHidden || s.tokens[s.index].GetChannel() == antlr.TokenDefaultChannel {
			return true
		}
	}
}

func (s *Scanner) Previous(skipHidden bool) bool {
	return s.step(-1, skipHidden)
}

func (s *Scanner) TokenType() int {
	return s.tokens[s.index].GetTokenType()
}

func (s *Scanner) SkipTokenSequence(list []int) bool {
	if s.index >= len(s.tokens) {
		return false
	}

	for _, token := range list {
		if s.tokens[s.index].GetTokenType() != token {
			return false
		}

		s.index++
		for s.index < len(s.tokens) && s.tokens[s.index].GetChannel() != antlr.TokenDefaultChannel {
			s.index++
		}

		if s.index >= len(s.tokens) {
			return false
		}
	}
	return true
}

func (s *Scanner) TokenText() string {
	return s.tokens[s.index].GetText()
}

func (s *Scanner) Next(skipHidden bool) bool {
	return s.step(1, skipHidden)
}

func (s *Scanner) Is(tokenType int) bool {
	return s.tokens[s.index].GetTokenType() == tokenType
}

func (s *Scanner) Seek(index int) {
	if index < len(s.tokens) {
		s.index = index
	}
}

func (s *Scanner) TokenSubText() string {
	cs := s.tokens[s.index].GetTokenSource().GetInputStream()
	return cs.GetText(s.tokens[s.index].GetStart(), cs.Size()-1)
}

func (s *Scanner) AdvanceToPosition(line, offset int) bool {
	if len(s.tokens) == 0 {
		return false
	}

	i := 0
	for ; i < len(s.tokens); i++ {
		run := s.tokens[i]
		tokenLine := run.GetLine()
		if tokenLine >= line {
			tokenOffset := run.GetColumn()
			tokenLength := run.GetStop() - run.GetStart() + 1
			if tokenLine == line && tokenOffset <= offset && offset < tokenOffset+tokenLength {
				s.index = i
				break
			}

			if tokenLine > line || tokenOffset > offset {
				if i == 0 {
					return false
				}

				s.index = i - 1
				break
			}
		}
	}

	if i == len(s.tokens) {
		s.index = i - 1
	}

	return true
}
