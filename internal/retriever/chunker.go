// Package retriever implements hybrid document retrieval: chunk indexing,
// semantic and keyword search over the same corpus, score merging, and
// second-pass reranking.
package retriever

import (
	"regexp"
	"strings"

	"smart-tutor-go/internal/model"

	"github.com/google/uuid"
)

var sentenceSplitter = regexp.MustCompile(`(?s).*?[.!?。？！]\s*`)

// SplitDocument splits a document into overlapping chunks of roughly
// chunkSize runes. Boundaries prefer paragraphs, then sentences, then raw
// character windows; the overlap keeps context alive across chunk edges.
func SplitDocument(sourceName, text string, chunkSize, chunkOverlap int) []model.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}

	units := splitUnits(text, chunkSize)

	var chunks []model.Chunk
	var current []unit
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		var b strings.Builder
		for _, u := range current {
			b.WriteString(u.text)
		}
		body := strings.TrimSpace(b.String())
		if body == "" {
			current = nil
			currentLen = 0
			return
		}
		chunks = append(chunks, model.Chunk{
			ID:   uuid.NewString(),
			Text: body,
			Metadata: model.ChunkMetadata{
				SourceName: sourceName,
				Offset:     current[0].offset,
			},
		})
		// carry the tail of the chunk into the next one
		var tail []unit
		tailLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if tailLen+current[i].length > chunkOverlap {
				break
			}
			tail = append([]unit{current[i]}, tail...)
			tailLen += current[i].length
		}
		current = tail
		currentLen = tailLen
	}

	for _, u := range units {
		if currentLen > 0 && currentLen+u.length > chunkSize {
			flush()
		}
		current = append(current, u)
		currentLen += u.length
	}
	if currentLen > 0 {
		// emit the remainder without carrying an overlap tail
		var b strings.Builder
		for _, u := range current {
			b.WriteString(u.text)
		}
		if body := strings.TrimSpace(b.String()); body != "" {
			last := model.Chunk{
				ID:   uuid.NewString(),
				Text: body,
				Metadata: model.ChunkMetadata{
					SourceName: sourceName,
					Offset:     current[0].offset,
				},
			}
			// the remainder may be exactly the overlap tail of the
			// previous chunk; skip it in that case
			if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1].Text, body) {
				chunks = append(chunks, last)
			}
		}
	}
	return chunks
}

type unit struct {
	text   string
	offset int // rune offset within the source document
	length int // rune count
}

// splitUnits breaks text into pieces no longer than maxLen runes, splitting
// at paragraph boundaries first, sentences next, characters last.
func splitUnits(text string, maxLen int) []unit {
	var units []unit
	offset := 0
	for _, para := range strings.SplitAfter(text, "\n\n") {
		paraLen := len([]rune(para))
		if paraLen == 0 {
			continue
		}
		if paraLen <= maxLen {
			units = append(units, unit{text: para, offset: offset, length: paraLen})
			offset += paraLen
			continue
		}
		// paragraph too large: split into sentences
		for _, sent := range splitSentences(para) {
			sentLen := len([]rune(sent))
			if sentLen <= maxLen {
				units = append(units, unit{text: sent, offset: offset, length: sentLen})
				offset += sentLen
				continue
			}
			// sentence still too large: hard character windows
			runes := []rune(sent)
			for i := 0; i < len(runes); i += maxLen {
				end := i + maxLen
				if end > len(runes) {
					end = len(runes)
				}
				units = append(units, unit{text: string(runes[i:end]), offset: offset + i, length: end - i})
			}
			offset += sentLen
		}
	}
	return units
}

func splitSentences(text string) []string {
	matches := sentenceSplitter.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	consumed := 0
	for _, m := range matches {
		consumed += len(m)
	}
	if consumed < len(text) {
		matches = append(matches, text[consumed:])
	}
	return matches
}

// Tokenize lowercases the text and splits it into letter/digit terms. The
// same tokenizer is used for queries and chunk bodies.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	return tokenPattern.FindAllString(lower, -1)
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)
