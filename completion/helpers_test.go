package completion

import (
	"strings"

	"github.com/antlr4-go/antlr/v4"
	mysql "github.com/bytebase/mysql-parser"
)

// catchCaret extracts the `|` marker from a test fixture, returning the
// marker-free text plus the (1-based line, 0-based column) position it
// occupied — ANTLR's own convention, the layout Scanner.AdvanceToPosition
// expects directly. Request.CaretLine is documented as 0-based instead
// (spec.md §6), so callers driving GetCodeCompletionList through Request
// must subtract one from the line this returns; callers that poke the
// Scanner directly (as the qualifier/reference/scanner tests do) use it
// unmodified. Grounded on the teacher's catchCaret helper.
func catchCaret(s string) (text string, line int, column int) {
	line = 1
	column = 0
	for _, r := range s {
		if r == '|' {
			return strings.Replace(s, "|", "", 1), line, column
		}
		if r == '\n' {
			line++
			column = 0
			continue
		}
		column++
	}
	return s, line, column
}

// newTestParser tokenizes text and returns a ready MySQLParser plus its
// backing token stream, mirroring the construction in the teacher's
// completer_test.go.
func newTestParser(text string) (*mysql.MySQLParser, *antlr.CommonTokenStream) {
	input := antlr.NewInputStream(text)
	lexer := mysql.NewMySQLLexer(input)
	tokens := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)
	parser := mysql.NewMySQLParser(tokens)
	return parser, tokens
}
