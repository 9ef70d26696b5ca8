package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerSplitsIntoWindows(t *testing.T) {
	c := NewChunker(2, 0)
	text := "One. Two. Three. Four. Five."

	chunks := c.Split("notes.txt", text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Three. Four.", chunks[1].Text)
	assert.Equal(t, "Five.", chunks[2].Text)
	for i, ch := range chunks {
		assert.Equal(t, "notes.txt", ch.Source)
		assert.Equal(t, i, ch.Seq)
	}
}

func TestChunkerOverlap(t *testing.T) {
	c := NewChunker(3, 1)
	text := "A. B. C. D. E."

	chunks := c.Split("doc.md", text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "A. B. C.", chunks[0].Text)
	// Overlap of one sentence carries C into the next window.
	assert.Equal(t, "C. D. E.", chunks[1].Text)
}

func TestChunkerNoPunctuation(t *testing.T) {
	c := NewChunker(5, 1)
	chunks := c.Split("raw.txt", "no sentence punctuation at all")
	require.Len(t, chunks, 1)
	assert.Equal(t, "no sentence punctuation at all", chunks[0].Text)
}

func TestChunkerBlankText(t *testing.T) {
	c := NewChunker(5, 1)
	assert.Empty(t, c.Split("empty.txt", "   \n\t "))
}

func TestChunkerClampsBadConfig(t *testing.T) {
	c := NewChunker(0, 10)
	text := strings.Repeat("Sentence. ", 12)
	chunks := c.Split("s.txt", text)
	// Defaults to 5 sentences per chunk with overlap clamped below it,
	// so the split must terminate and cover all sentences.
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].Text, "Sentence.")
}
