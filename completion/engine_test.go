package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsInt(t *testing.T) {
	assert.True(t, containsInt([]int{1, 2, 3}, 2))
	assert.False(t, containsInt([]int{1, 2, 3}, 4))
	assert.False(t, containsInt(nil, 1))
}

func TestIntSliceEqual(t *testing.T) {
	assert.True(t, intSliceEqual([]int{1, 2}, []int{1, 2}))
	assert.False(t, intSliceEqual([]int{1, 2}, []int{1, 3}))
	assert.False(t, intSliceEqual([]int{1, 2}, []int{1}))
	assert.True(t, intSliceEqual(nil, nil))
}

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, []int{1, 2}, commonPrefix([]int{1, 2, 3}, []int{1, 2, 4}))
	assert.Equal(t, []int{}, commonPrefix([]int{1}, []int{2}))
	assert.Equal(t, []int{1, 2}, commonPrefix([]int{1, 2}, []int{1, 2, 3}))
}

func TestNewCodeCompletionCoreStartsEmpty(t *testing.T) {
	parser, _ := newTestParser("SELECT 1")
	core := NewCodeCompletionCore(parser)

	require.NotNil(t, core.IgnoredTokens)
	require.NotNil(t, core.PreferredRules)
	assert.Empty(t, core.IgnoredTokens)
	assert.Empty(t, core.PreferredRules)
}

// TestCollectCandidatesReachesCaretWithoutPanicking exercises the full ATN
// walk end to end: a bare SELECT statement up to an empty caret position
// must terminate and report at least one candidate, whatever the exact
// grammar shape turns out to prefer at that point.
func TestCollectCandidatesReachesCaretWithoutPanicking(t *testing.T) {
	text, line, column := catchCaret("SELECT |")
	parser, tokens := newTestParser(text)
	scanner := NewScanner(tokens)
	require.True(t, scanner.AdvanceToPosition(line, column))

	grammar := MySQLGrammar()
	core := NewCodeCompletionCore(parser)
	core.IgnoredTokens = grammar.IgnoredTokens
	core.PreferredRules = grammar.PreferredRules

	candidates := core.CollectCandidates(scanner.TokenIndex(), nil)

	require.NotNil(t, candidates)
	assert.True(t, len(candidates.Tokens)+len(candidates.Rules) > 0)
}
