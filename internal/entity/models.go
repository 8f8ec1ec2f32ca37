package entity

// Document is a raw corpus file loaded for ingestion.
type Document struct {
	Source string
	Text   string
}

// Chunk is a bounded slice of a document, the unit of indexing and retrieval.
type Chunk struct {
	Text       string
	Source     string
	ChunkIndex int
}

// IndexRecord is one point persisted in the vector index.
// ID is derived deterministically from source and chunk index so that
// re-ingesting an unchanged document overwrites the same record.
type IndexRecord struct {
	ID       string
	Vector   []float64
	Metadata RecordMetadata
}

// RecordMetadata is the payload stored alongside every vector.
type RecordMetadata struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

// RetrievalMatch is one ranked result of a similarity query.
type RetrievalMatch struct {
	Text   string
	Source string
	Score  float64
}

// ChatTurn is a single stateless question/answer exchange.
type ChatTurn struct {
	Question string
	Answer   string
}
