package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"sitechat/internal/domain"
)

var sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// SentenceChunker splits text into windows of sentences with overlap.
// Blank lines are treated as hard boundaries so headings stay separate.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 3
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, block := range splitBlocks(document.Content) {
		for _, text := range c.window(sentences(block)) {
			idx := len(chunks)
			chunks = append(chunks, domain.Chunk{
				DocumentID: document.ID,
				ChunkID:    document.ID + ":" + strconv.Itoa(idx),
				Text:       text,
				Index:      idx,
			})
		}
	}
	return chunks, nil
}

func (c *SentenceChunker) window(sents []string) []string {
	var out []string
	i := 0
	for i < len(sents) {
		end := i + c.sentencesPerChunk
		if end > len(sents) {
			end = len(sents)
		}
		out = append(out, strings.Join(sents[i:end], " "))
		if end == len(sents) {
			break
		}
		i = end - c.overlapSentences
	}
	return out
}

func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []string
	for _, b := range strings.Split(text, "\n\n") {
		b = strings.Join(strings.Fields(b), " ")
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func sentences(block string) []string {
	found := sentencePattern.FindAllStringIndex(block, -1)
	var out []string
	last := 0
	for _, loc := range found {
		if s := strings.TrimSpace(block[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	// trailing text without terminal punctuation
	if tail := strings.TrimSpace(block[last:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
