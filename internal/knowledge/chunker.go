package knowledge

import (
	"regexp"
	"strings"
)

// Chunk is one retrievable unit of an indexed document.
type Chunk struct {
	Source string // file path the text came from
	Seq    int    // position within the source
	Text   string
}

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

var sentenceSplitter = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// Chunker splits extracted text into overlapping sentence windows.
type Chunker struct {
	sentencesPerChunk int
	overlapSentences  int
}

func NewChunker(sentencesPerChunk, overlapSentences int) *Chunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &Chunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
	}
}

// Split chunks the text of one source document. Text without sentence
// punctuation becomes a single chunk; blank text produces none.
func (c *Chunker) Split(source, text string) []Chunk {
	sentences := sentenceSplitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []Chunk
	i := 0
	seq := 0
	for i < len(sentences) {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, Chunk{
			Source: source,
			Seq:    seq,
			Text:   strings.Join(sentences[i:end], " "),
		})
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
		seq++
	}
	return chunks
}
