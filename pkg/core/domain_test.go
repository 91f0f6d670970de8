package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/core"
)

func TestNewDateRange_SwapsReversedBounds(t *testing.T) {
	a := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r := core.NewDateRange(a, b)
	assert.Equal(t, b, r.Start)
	assert.Equal(t, a, r.End)
}

func TestDateRange_ContainsIsInclusive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 23, 59, 59, 999_000_000, time.UTC)
	r := core.NewDateRange(start, end)

	assert.True(t, r.Contains(start))
	assert.True(t, r.Contains(end))
	assert.False(t, r.Contains(start.Add(-time.Millisecond)))
	assert.False(t, r.Contains(end.Add(time.Millisecond)))
}

func TestParseSearchScope(t *testing.T) {
	for _, s := range []core.SearchScope{core.ScopeAll, core.ScopeTitle, core.ScopeContent, core.ScopeTag} {
		got, err := core.ParseSearchScope(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := core.ParseSearchScope("TITLE")
	require.NoError(t, err)
	assert.Equal(t, core.ScopeTitle, got)

	_, err = core.ParseSearchScope("body")
	assert.Error(t, err)
}

func TestParseDateFilterType(t *testing.T) {
	got, err := core.ParseDateFilterType("this-week")
	require.NoError(t, err)
	assert.Equal(t, core.FilterThisWeek, got)

	got, err = core.ParseDateFilterType("CUSTOM")
	require.NoError(t, err)
	assert.Equal(t, core.FilterCustom, got)

	_, err = core.ParseDateFilterType("last_decade")
	assert.Error(t, err)
}

func TestNote_CloneDoesNotShareSlices(t *testing.T) {
	n := core.Note{ID: "1", Tags: []string{"a"}, Images: []core.ImageRef{{FileName: "x.jpg"}}}
	c := n.Clone()
	c.Tags[0] = "b"
	c.Images[0].FileName = "y.jpg"

	assert.Equal(t, "a", n.Tags[0])
	assert.Equal(t, "x.jpg", n.Images[0].FileName)
	assert.True(t, n.HasImages())
}
