package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(DefaultSplitterConfig())

	chunks := s.SplitText("a short paragraph that fits in one chunk")

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short paragraph that fits in one chunk", chunks[0])
}

func TestSplitter_EmptyAndWhitespaceText(t *testing.T) {
	s := NewSplitter(DefaultSplitterConfig())

	assert.Nil(t, s.SplitText(""))
	assert.Nil(t, s.SplitText("   \n\n \t "))
}

func TestSplitter_ChunksNeverExceedSize(t *testing.T) {
	s := NewSplitter(DefaultSplitterConfig())

	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog. ")
	}

	chunks := s.SplitText(sb.String())

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 500, "chunk %d too long", i)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplitter_PrefersParagraphBoundaries(t *testing.T) {
	s := NewSplitter(SplitterConfig{
		ChunkSize:    60,
		ChunkOverlap: 10,
		Separators:   []string{"\n\n", "\n", " ", ""},
	})

	text := "First paragraph of the document.\n\nSecond paragraph of the document."

	chunks := s.SplitText(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, "First paragraph of the document.", chunks[0])
	assert.Equal(t, "Second paragraph of the document.", chunks[1])
}

func TestSplitter_OverlapCarriesTrailingText(t *testing.T) {
	s := NewSplitter(SplitterConfig{
		ChunkSize:    30,
		ChunkOverlap: 12,
		Separators:   []string{"\n\n", "\n", " ", ""},
	})

	chunks := s.SplitText("alpha beta gamma delta epsilon zeta eta theta")

	require.Greater(t, len(chunks), 1)
	// Each chunk after the first starts with words already seen at the end
	// of its predecessor.
	for i := 1; i < len(chunks); i++ {
		firstWord := strings.Fields(chunks[i])[0]
		assert.Contains(t, chunks[i-1], firstWord,
			"chunk %d should overlap with chunk %d", i, i-1)
	}
}

func TestSplitter_LongUnbrokenRunFallsBackToCharacters(t *testing.T) {
	s := NewSplitter(SplitterConfig{
		ChunkSize:    50,
		ChunkOverlap: 5,
		Separators:   []string{"\n\n", "\n", " ", ""},
	})

	chunks := s.SplitText(strings.Repeat("x", 180))

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}
	joined := strings.Join(chunks, "")
	assert.Contains(t, joined, strings.Repeat("x", 50))
}

func TestSplitter_Deterministic(t *testing.T) {
	s := NewSplitter(DefaultSplitterConfig())

	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("Sentence number with some filler words to pad things out.\n")
		if i%7 == 0 {
			sb.WriteString("\n")
		}
	}

	first := s.SplitText(sb.String())
	second := s.SplitText(sb.String())

	assert.Equal(t, first, second)
}

func TestSplitter_SplitPagesTagsMetadata(t *testing.T) {
	s := NewSplitter(DefaultSplitterConfig())

	pages := []domain.PageText{
		{Number: 1, Text: "content of the first page"},
		{Number: 2, Text: ""},
		{Number: 3, Text: "content of the third page"},
	}

	chunks := s.SplitPages("doc-123", pages)

	require.Len(t, chunks, 2)
	assert.Equal(t, "doc-123", chunks[0].DocumentID)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 3, chunks[1].Page)
	assert.Equal(t, 1, chunks[1].Ordinal)
}

func TestSplitter_SplitPagesOrdinalsSpanPages(t *testing.T) {
	s := NewSplitter(SplitterConfig{
		ChunkSize:    40,
		ChunkOverlap: 5,
		Separators:   []string{"\n\n", "\n", " ", ""},
	})

	pages := []domain.PageText{
		{Number: 1, Text: "one two three four five six seven eight nine ten eleven twelve"},
		{Number: 2, Text: "more text on the second page goes here for splitting"},
	}

	chunks := s.SplitPages("doc-456", pages)

	require.Greater(t, len(chunks), 2)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
	}
}

func TestNewSplitter_SanitizesConfig(t *testing.T) {
	s := NewSplitter(SplitterConfig{ChunkSize: -1})
	assert.Equal(t, 500, s.cfg.ChunkSize)

	s = NewSplitter(SplitterConfig{ChunkSize: 100, ChunkOverlap: 200})
	assert.Equal(t, 50, s.cfg.ChunkOverlap)
}
