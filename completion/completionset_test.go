package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionSetDedupCaseInsensitive(t *testing.T) {
	set := newCompletionSet(KindTable)
	set.add("Users")
	set.add("users")
	set.add("USERS")
	set.add("Orders")

	assert.Equal(t, 2, set.len())
}

func TestCompletionSetSortsCaseInsensitively(t *testing.T) {
	set := newCompletionSet(KindKeyword)
	set.addAll([]string{"select", "FROM", "where", "Order"})

	entries := set.entriesSorted()
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
		assert.Equal(t, KindKeyword, e.Kind)
	}

	assert.Equal(t, []string{"FROM", "Order", "select", "where"}, texts)
}

func TestCompletionSetIgnoresEmptyText(t *testing.T) {
	set := newCompletionSet(KindSchema)
	set.add("")
	assert.Equal(t, 0, set.len())
}
