package reportcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	key := Key(TagReports, "team", "abc", "20260301_20260307")
	assert.Equal(t, "reports:team:abc:20260301_20260307", key)
}

func TestSetGet(t *testing.T) {
	c := New()

	_, ok := c.Get("reports:missing")
	assert.False(t, ok)

	c.Set("reports:team:a", 42)
	got, ok := c.Get("reports:team:a")
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestInvalidateTag(t *testing.T) {
	c := New()
	c.Set(Key(TagReports, "team", "a"), 1)
	c.Set(Key(TagReports, "group", "b"), 2)
	c.Set(Key("other", "c"), 3)

	removed := c.InvalidateTag(TagReports)
	assert.Equal(t, 2, removed)

	_, ok := c.Get(Key(TagReports, "team", "a"))
	assert.False(t, ok)
	_, ok = c.Get(Key(TagReports, "group", "b"))
	assert.False(t, ok)

	// Other tags survive.
	got, ok := c.Get(Key("other", "c"))
	require.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestFormatRange(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20260301_20260307", FormatRange(from, to))
}
