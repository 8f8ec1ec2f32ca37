package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// textExtensions are the file types treated as corpus documents.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".rst":      true,
	".text":     true,
}

// Report summarizes one ingestion run.
type Report struct {
	Documents int
	Chunks    int
}

// Usecase implements the ingestion pipeline: scan the corpus directory,
// chunk every document, embed all chunks in a single batch call, and
// upsert one record per chunk into the vector index.
type Usecase struct {
	chunker  Chunker
	embedder EmbeddingConnector
	store    VectorStoreConnector
	docsDir  string
	logger   *zap.Logger
}

func NewUsecase(
	chunker Chunker,
	embedder EmbeddingConnector,
	store VectorStoreConnector,
	docsDir string,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		docsDir:  docsDir,
		logger:   logger,
	}
}

// RecordID derives the stable index record id for a chunk. Re-ingesting
// an unchanged document yields the same ids, so the upsert is idempotent.
func RecordID(source string, chunkIndex int) string {
	return fmt.Sprintf("%s-chunk-%d", source, chunkIndex)
}

// Run executes one full ingestion pass. An embedding failure aborts the
// whole run so the index never holds a partial corpus. An empty corpus
// directory is a diagnostic no-op, not an error.
func (uc *Usecase) Run(ctx context.Context) (*Report, error) {
	docs, err := uc.loadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	if len(docs) == 0 {
		ctxzap.Warn(ctx, "no documents found, nothing to ingest",
			zap.String("docs_dir", uc.docsDir),
		)
		return &Report{}, nil
	}

	var chunks []entity.Chunk
	for _, doc := range docs {
		docChunks := uc.chunker.Chunk(doc)
		ctxzap.Info(ctx, "document chunked",
			zap.String("source", doc.Source),
			zap.Int("chunk_count", len(docChunks)),
		)
		chunks = append(chunks, docChunks...)
	}

	if len(chunks) == 0 {
		ctxzap.Warn(ctx, "documents produced no indexable chunks",
			zap.Int("document_count", len(docs)),
		)
		return &Report{Documents: len(docs)}, nil
	}

	// One batch call for the whole corpus to minimize round trips.
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	if err := uc.store.EnsureCollection(ctx, len(vectors[0])); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	records := make([]entity.IndexRecord, len(chunks))
	for i, ch := range chunks {
		records[i] = entity.IndexRecord{
			ID:     RecordID(ch.Source, ch.ChunkIndex),
			Vector: vectors[i],
			Metadata: entity.RecordMetadata{
				Text:       ch.Text,
				Source:     ch.Source,
				ChunkIndex: ch.ChunkIndex,
			},
		}
	}

	if err := uc.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("upsert records: %w", err)
	}

	report := &Report{Documents: len(docs), Chunks: len(chunks)}
	ctxzap.Info(ctx, "ingestion completed",
		zap.Int("document_count", report.Documents),
		zap.Int("chunk_count", report.Chunks),
	)

	return report, nil
}

// loadDocuments reads every text-like file directly under the corpus
// directory. The file name becomes the document source.
func (uc *Usecase) loadDocuments(ctx context.Context) ([]entity.Document, error) {
	entries, err := os.ReadDir(uc.docsDir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir %s: %w", uc.docsDir, err)
	}

	var docs []entity.Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !textExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			ctxzap.Debug(ctx, "skipping non-text file", zap.String("file", e.Name()))
			continue
		}

		data, err := os.ReadFile(filepath.Join(uc.docsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", e.Name(), err)
		}

		docs = append(docs, entity.Document{
			Source: e.Name(),
			Text:   string(data),
		})
	}
	return docs, nil
}
