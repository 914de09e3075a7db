// Package chunker splits extracted document text into bounded-size,
// sentence-aligned segments for embedding.
package chunker

import (
	"strings"
)

// Chunk splits text into an ordered sequence of chunks. Sentences are
// delimited by '.', '!' or '?' followed by whitespace (or end of input) and
// accumulated greedily: a sentence is appended to the current chunk while
// the joined length stays within targetSize, otherwise the chunk is flushed
// and the sentence starts a new one. A single sentence longer than
// targetSize becomes its own oversized chunk; content is never truncated or
// dropped.
//
// Chunk is a pure function: identical inputs always yield the identical
// sequence, and joining the chunks with a single space reconstructs the
// input up to the whitespace used to join sentences.
func Chunk(text string, targetSize int) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() == 0 {
			current.WriteString(sentence)
			continue
		}

		// +1 for the joining space
		if current.Len()+1+len(sentence) <= targetSize {
			current.WriteByte(' ')
			current.WriteString(sentence)
			continue
		}

		chunks = append(chunks, current.String())
		current.Reset()
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitSentences cuts text at boundary punctuation followed by whitespace.
// The punctuation stays attached to its sentence; surrounding whitespace is
// trimmed.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		if !isBoundary(text[i]) {
			continue
		}
		// Boundary only if followed by whitespace or end of text
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}

		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	// Trailing text without closing punctuation is still a sentence
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func isBoundary(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
