package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractAtStart(t *testing.T, text string) []TableReference {
	t.Helper()
	_, tokens := newTestParser(text)
	scanner := NewScanner(tokens)
	noCaret := len(tokens.GetAllTokens()) + 1
	return extractReferences(scanner, MySQLGrammar(), noCaret)
}

func extractAtCaret(t *testing.T, text string) []TableReference {
	t.Helper()
	source, line, column := catchCaret(text)
	_, tokens := newTestParser(source)
	scanner := NewScanner(tokens)
	require.True(t, scanner.AdvanceToPosition(line, column))
	caretTokenIndex := scanner.TokenIndex()
	scanner.Seek(0)
	return extractReferences(scanner, MySQLGrammar(), caretTokenIndex)
}

func TestExtractReferencesSimple(t *testing.T) {
	refs := extractAtStart(t, "SELECT * FROM t1")
	require.Len(t, refs, 1)
	assert.Equal(t, "t1", refs[0].Table)
	assert.Empty(t, refs[0].Alias)
}

func TestExtractReferencesWithAliasAndSchema(t *testing.T) {
	refs := extractAtStart(t, "SELECT * FROM db1.t1 AS a, t2 b")
	require.Len(t, refs, 2)

	assert.Equal(t, "db1", refs[0].Schema)
	assert.Equal(t, "t1", refs[0].Table)
	assert.Equal(t, "a", refs[0].Alias)
	assert.Equal(t, "a", refs[0].DisplayName())

	assert.Equal(t, "t2", refs[1].Table)
	assert.Equal(t, "b", refs[1].Alias)
}

func TestExtractReferencesJoins(t *testing.T) {
	refs := extractAtStart(t, "SELECT * FROM t1 INNER JOIN t2 ON t1.id = t2.id LEFT JOIN t3 t3a ON 1=1")
	require.Len(t, refs, 3)
	assert.Equal(t, "t1", refs[0].Table)
	assert.Equal(t, "t2", refs[1].Table)
	assert.Equal(t, "t3", refs[2].Table)
	assert.Equal(t, "t3a", refs[2].Alias)
}

func TestExtractReferencesSubselect(t *testing.T) {
	refs := extractAtStart(t, "SELECT * FROM (SELECT * FROM t1) AS derived")
	require.Len(t, refs, 1)
	assert.Equal(t, "derived", refs[0].Alias)
}

func TestSameReferenceIsCaseInsensitive(t *testing.T) {
	a := TableReference{Schema: "DB1", Table: "T1", Alias: "A"}
	b := TableReference{Schema: "db1", Table: "t1", Alias: "a"}
	assert.True(t, sameReference(a, b))
}

func TestExtractReferencesCaretBeforeFromClauseStillSeesIt(t *testing.T) {
	refs := extractAtCaret(t, "SELECT |* FROM t1")
	require.Len(t, refs, 1)
	assert.Equal(t, "t1", refs[0].Table)
}

func TestExtractReferencesCaretInsideSubselectSeesItsOwnTables(t *testing.T) {
	refs := extractAtCaret(t, "SELECT * FROM t1 WHERE x IN (SELECT | FROM t2)")
	require.Len(t, refs, 2)
	assert.Equal(t, "t1", refs[0].Table)
	assert.Equal(t, "t2", refs[1].Table)
}

func TestExtractReferencesCaretOutsideSubselectDoesNotSeeItsTables(t *testing.T) {
	refs := extractAtCaret(t, "SELECT * FROM t1 WHERE x IN (SELECT * FROM t2) AND |")
	require.Len(t, refs, 1)
	assert.Equal(t, "t1", refs[0].Table)
}

func TestExtractTriggerTargetTableFindsOnTable(t *testing.T) {
	_, tokens := newTestParser("CREATE TRIGGER tr BEFORE INSERT ON t1 FOR EACH ROW SET NEW.a = 1")
	scanner := NewScanner(tokens)

	ref, ok := extractTriggerTargetTable(scanner, MySQLGrammar())
	require.True(t, ok)
	assert.Equal(t, "t1", ref.Table)
	assert.Empty(t, ref.Schema)
	assert.Empty(t, ref.Alias)
}

func TestExtractTriggerTargetTableWithSchemaQualifiedTable(t *testing.T) {
	_, tokens := newTestParser("CREATE TRIGGER tr AFTER UPDATE ON db1.t1 FOR EACH ROW SET NEW.a = 1")
	scanner := NewScanner(tokens)

	ref, ok := extractTriggerTargetTable(scanner, MySQLGrammar())
	require.True(t, ok)
	assert.Equal(t, "db1", ref.Schema)
	assert.Equal(t, "t1", ref.Table)
}

func TestExtractTriggerTargetTableRejectsNonTriggerStatements(t *testing.T) {
	_, tokens := newTestParser("SELECT * FROM t1")
	scanner := NewScanner(tokens)

	_, ok := extractTriggerTargetTable(scanner, MySQLGrammar())
	assert.False(t, ok)
}
