package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromptPreview(t *testing.T) {
	assert.Equal(t, "a b c", PromptPreview("  a\n b\r\n  c "))
	assert.Equal(t, "", PromptPreview("   "))

	long := make([]rune, 600)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, []rune(PromptPreview(string(long))), 500)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello", 10))
	assert.Equal(t, "hell…", TruncateRunes("hello world", 5))
	assert.Equal(t, "…", TruncateRunes("hello", 1))
	assert.Equal(t, "", TruncateRunes("hello", 0))
}

func TestWrappedLineCount(t *testing.T) {
	assert.Equal(t, 1, WrappedLineCount("", 10))
	assert.Equal(t, 1, WrappedLineCount("short", 10))
	assert.Equal(t, 2, WrappedLineCount("a\nb", 10))
	assert.Equal(t, 3, WrappedLineCount("0123456789012345678901", 10))
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", RelativeTime(now))
	assert.Equal(t, "1 min ago", RelativeTime(now.Add(-90*time.Second)))
	assert.Equal(t, "2 hrs ago", RelativeTime(now.Add(-2*time.Hour)))
	assert.Equal(t, "1 day ago", RelativeTime(now.Add(-25*time.Hour)))
	assert.Equal(t, "2 weeks ago", RelativeTime(now.Add(-15*24*time.Hour)))
}

func TestFindModel(t *testing.T) {
	available := []string{"m1:latest", "m2:latest"}

	idx, ok := FindModel(available, "m2:latest")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = FindModel(available, "ghost:latest")
	assert.False(t, ok)
}
