package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/futig/rag-backend/internal/chunker"
	"github.com/futig/rag-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	batchCalls int
	err        error
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{float64(i), 1}
	}
	return vectors, nil
}

type fakeStore struct {
	ensured    int
	dimension  int
	upserts    int
	lastUpsert []entity.IndexRecord
}

func (f *fakeStore) EnsureCollection(ctx context.Context, dimension int) error {
	f.ensured++
	f.dimension = dimension
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, records []entity.IndexRecord) error {
	f.upserts++
	f.lastUpsert = records
	return nil
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestUsecase(docsDir string, embedder *fakeEmbedder, store *fakeStore) *Usecase {
	return NewUsecase(chunker.NewWindowChunker(80, 10), embedder, store, docsDir, zap.NewNop())
}

func TestRunIngestsCorpus(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "frontend.md", strings.Repeat("We use the Next.js App Router for every page. ", 10))
	writeDoc(t, dir, "deploy.txt", strings.Repeat("Deployments go through the staging cluster first. ", 10))

	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	uc := newTestUsecase(dir, embedder, store)

	report, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Greater(t, report.Chunks, 2)
	assert.Equal(t, 1, embedder.batchCalls, "all chunks embed in one batch call")
	assert.Equal(t, 1, store.ensured)
	assert.Equal(t, 2, store.dimension)
	assert.Equal(t, 1, store.upserts)
	assert.Len(t, store.lastUpsert, report.Chunks)
}

func TestRunDerivesStableRecordIDs(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "auth.md", strings.Repeat("Authentication uses signed JWT tokens. ", 12))

	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	uc := newTestUsecase(dir, embedder, store)

	_, err := uc.Run(context.Background())
	require.NoError(t, err)
	firstIDs := recordIDs(store.lastUpsert)
	require.NotEmpty(t, firstIDs)
	assert.Equal(t, "auth.md-chunk-0", firstIDs[0])

	// Re-ingesting the unchanged corpus overwrites the same records.
	_, err = uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstIDs, recordIDs(store.lastUpsert))
}

func TestRunAbortsOnEmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "notes.txt", strings.Repeat("Plenty of text that will definitely chunk. ", 10))

	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	store := &fakeStore{}
	uc := newTestUsecase(dir, embedder, store)

	_, err := uc.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, store.upserts, "a partial corpus must never be written")
}

func TestRunEmptyCorpusIsNoOp(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	uc := newTestUsecase(t.TempDir(), embedder, store)

	report, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Documents)
	assert.Zero(t, embedder.batchCalls)
	assert.Zero(t, store.upserts)
}

func TestRunSkipsNonTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "diagram.png", "binary-ish payload")
	writeDoc(t, dir, "readme.md", strings.Repeat("The service exposes a small REST API. ", 10))

	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	uc := newTestUsecase(dir, embedder, store)

	report, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	for _, id := range recordIDs(store.lastUpsert) {
		assert.True(t, strings.HasPrefix(id, "readme.md-chunk-"))
	}
}

func recordIDs(records []entity.IndexRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
