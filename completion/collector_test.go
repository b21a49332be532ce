package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCandidateCollectorConfiguresEngineFromGrammar(t *testing.T) {
	parser, _ := newTestParser("SELECT 1")
	grammar := MySQLGrammar()

	collector := NewCandidateCollector(parser, grammar)

	require.NotNil(t, collector.engine)
	assert.Equal(t, grammar.IgnoredTokens, collector.engine.IgnoredTokens)
	assert.Equal(t, grammar.PreferredRules, collector.engine.PreferredRules)
}

func TestCollectFoldsSecondaryNotTokenIntoPrimary(t *testing.T) {
	grammar := MySQLGrammar()
	collector := &CandidateCollector{
		grammar: grammar,
		engine:  &CodeCompletionCore{},
	}

	collected := &CandidatesCollection{
		Tokens: map[int][]int{
			grammar.SecondaryNotToken: {1, 2},
		},
		Rules: map[int][]int{},
	}

	// Exercise the folding logic in isolation, bypassing the ATN walk:
	// CandidatesCollection is a plain value the engine hands back, so we
	// can drive Collect's post-processing directly against a hand-built one.
	collector.foldSecondaryNot(collected)

	assert.Equal(t, []int{1, 2}, collected.Tokens[grammar.NotToken])
	_, hasSecondary := collected.Tokens[grammar.SecondaryNotToken]
	assert.False(t, hasSecondary)
}
