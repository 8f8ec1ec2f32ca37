package chunker

import (
	"strings"

	"github.com/futig/rag-backend/internal/entity"
)

const (
	// boundaryLookahead is how far past the nominal window end we search
	// for a sentence terminator or line break before cutting.
	boundaryLookahead = 50

	// minChunkLength is the threshold below which a chunk is treated as
	// noise (trailing whitespace, stray fragments) and dropped.
	minChunkLength = 20

	defaultChunkSize = 1000
	defaultOverlap   = 100
)

// WindowChunker splits text into fixed-size chunks with overlap,
// preferring to cut at a nearby sentence boundary. All offsets are in
// runes so multi-byte text is never split mid-character.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

// NewWindowChunker builds a chunker with the given window size and
// overlap. An overlap equal to or larger than the window is clamped:
// left unbounded it would stall the window and the chunker would never
// terminate.
func NewWindowChunker(chunkSize, overlap int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &WindowChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Chunk splits the document into ordered chunks. Identical input always
// yields an identical chunk sequence.
func (c *WindowChunker) Chunk(doc entity.Document) []entity.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []entity.Chunk
	idx := 0
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = adjustBoundary(runes, end)
		}

		text := strings.TrimSpace(string(runes[start:end]))
		if len([]rune(text)) > minChunkLength {
			chunks = append(chunks, entity.Chunk{
				Text:       text,
				Source:     doc.Source,
				ChunkIndex: idx,
			})
			idx++
		}

		if end >= len(runes) {
			break
		}

		// The next window begins overlap runes before the previous end.
		// A boundary adjustment can shrink the emitted chunk enough that
		// end-overlap lands at or before the current start; the window
		// must still move strictly forward or the loop never terminates.
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// adjustBoundary returns the cut position for a window nominally ending
// at end: the position just after the nearest sentence terminator or
// line break within the lookahead, or end itself when none is found.
func adjustBoundary(runes []rune, end int) int {
	limit := end + boundaryLookahead
	if limit > len(runes) {
		limit = len(runes)
	}
	for i := end; i < limit; i++ {
		if isBoundary(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isBoundary(r rune) bool {
	switch r {
	case '\n', '.', '!', '?':
		return true
	}
	return false
}
