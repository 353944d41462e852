package service

import (
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/docchat/internal/domain"
)

// SplitterConfig controls how extracted page text is cut into chunks.
type SplitterConfig struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// DefaultSplitterConfig provides the chunking defaults used at ingestion.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize:    500,
		ChunkOverlap: 100,
		Separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// Splitter cuts text into size-bounded, overlapping chunks by recursively
// trying a priority-ordered list of separators: paragraph break first, then
// line break, then space, then a per-character fallback. Splitting is pure
// string work, so identical input always yields identical boundaries.
type Splitter struct {
	cfg SplitterConfig
}

func NewSplitter(cfg SplitterConfig) *Splitter {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultSplitterConfig()
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 2
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSplitterConfig().Separators
	}
	return &Splitter{cfg: cfg}
}

// SplitPages splits each page's text and tags every chunk with the document
// ID, its page of origin, and a document-wide ordinal. Pages with no
// extractable text contribute no chunks.
func (s *Splitter) SplitPages(documentID string, pages []domain.PageText) []domain.Chunk {
	var chunks []domain.Chunk
	ordinal := 0
	for _, page := range pages {
		for _, text := range s.SplitText(page.Text) {
			chunks = append(chunks, domain.Chunk{
				DocumentID: documentID,
				Page:       page.Number,
				Ordinal:    ordinal,
				Text:       text,
			})
			ordinal++
		}
	}
	return chunks
}

// SplitText splits a single text into chunks of at most ChunkSize characters
// with ChunkOverlap characters of overlap between consecutive chunks. Empty
// chunks are dropped.
func (s *Splitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.cfg.Separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var pending []string
	for _, piece := range splits {
		if runeLen(piece) < s.cfg.ChunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, s.merge(pending, separator)...)
			pending = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, s.merge(pending, separator)...)
	}
	return final
}

// merge greedily joins pieces back together up to ChunkSize, carrying the
// trailing ChunkOverlap characters of each emitted chunk into the next one.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)

	var docs []string
	var current []string
	total := 0

	joinLen := func(extra int) int {
		n := total + extra
		if len(current) > 0 {
			n += sepLen
		}
		return n
	}

	for _, piece := range pieces {
		pieceLen := runeLen(piece)
		if joinLen(pieceLen) > s.cfg.ChunkSize && len(current) > 0 {
			if doc := joinPieces(current, separator); doc != "" {
				docs = append(docs, doc)
			}
			// Slide the window forward until the carried overlap fits
			for total > s.cfg.ChunkOverlap || (joinLen(pieceLen) > s.cfg.ChunkSize && total > 0) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += pieceLen
	}

	if doc := joinPieces(current, separator); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func joinPieces(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

func splitOn(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = strings.Split(text, "")
	} else {
		parts = strings.Split(text, separator)
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
