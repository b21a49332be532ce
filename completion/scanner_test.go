package completion

import (
	"testing"

	"github.com/antlr4-go/antlr/v4"
	"github.com/stretchr/testify/require"
)

func TestScannerAdvanceAndSave(t *testing.T) {
	_, tokens := newTestParser("SELECT * FROM t1")
	scanner := NewScanner(tokens)

	require.True(t, scanner.Next(true)) // *
	require.True(t, scanner.Next(true)) // FROM

	restore := scanner.Save()
	require.True(t, scanner.Next(true)) // t1
	require.Equal(t, "t1", scanner.TokenText())

	restore()
	require.Equal(t, "FROM", scanner.TokenText())
}

func TestScannerClampsAtBoundaries(t *testing.T) {
	_, tokens := newTestParser("SELECT 1")
	scanner := NewScanner(tokens)

	require.False(t, scanner.Previous(true))
	for scanner.Next(true) {
	}
	require.False(t, scanner.Next(true))
}

func TestScannerAdvanceToPosition(t *testing.T) {
	text, line, column := catchCaret("SELECT * FROM |")
	_, tokens := newTestParser(text)
	scanner := NewScanner(tokens)

	require.True(t, scanner.AdvanceToPosition(line, column))
	require.Equal(t, antlr.TokenEOF, scanner.TokenType())
}
