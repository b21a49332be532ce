package completion

import (
	"strings"
	"testing"

	mysql "github.com/bytebase/mysql-parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSynonymsKnownEntries(t *testing.T) {
	table := DefaultSynonyms()

	assert.Equal(t, []string{"CHARACTER"}, table.Alternates(mysql.MySQLLexerCHAR_SYMBOL))
	assert.ElementsMatch(t, []string{"CURRENT_TIMESTAMP", "LOCALTIME", "LOCALTIMESTAMP"},
		table.Alternates(mysql.MySQLLexerNOW_SYMBOL))
	assert.Nil(t, table.Alternates(mysql.MySQLLexerSELECT_SYMBOL))
}

func TestRegisterSynonymDedupCaseInsensitive(t *testing.T) {
	table := NewEmptySynonymTable()
	table.RegisterSynonym(mysql.MySQLLexerCHAR_SYMBOL, "CHARACTER")
	table.RegisterSynonym(mysql.MySQLLexerCHAR_SYMBOL, "character")
	table.RegisterSynonym(mysql.MySQLLexerCHAR_SYMBOL, "CHAR2")

	assert.Equal(t, []string{"CHARACTER", "CHAR2"}, table.Alternates(mysql.MySQLLexerCHAR_SYMBOL))
}

func TestLoadSynonymsReplacesTable(t *testing.T) {
	table := DefaultSynonyms()
	require.NotEmpty(t, table.Alternates(mysql.MySQLLexerCHAR_SYMBOL))

	doc := strings.NewReader(`
100: ["FOO", "BAR"]
`)
	require.NoError(t, table.LoadSynonyms(doc))

	assert.Nil(t, table.Alternates(mysql.MySQLLexerCHAR_SYMBOL), "LoadSynonyms replaces, doesn't merge")
	assert.Equal(t, []string{"FOO", "BAR"}, table.Alternates(100))
}

func TestAlternatesReturnsACopy(t *testing.T) {
	table := NewEmptySynonymTable()
	table.RegisterSynonym(1, "A")

	got := table.Alternates(1)
	got[0] = "MUTATED"

	assert.Equal(t, []string{"A"}, table.Alternates(1))
}
