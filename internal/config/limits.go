package config

const (
	// MaxChatTitleLength is the maximum length for chat titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxChatTitleLength = 255

	// MaxFilenameLength is the maximum length for uploaded filenames.
	// Same bound as chat titles for consistency.
	MaxFilenameLength = 255

	// MaxUploadBytes is the maximum accepted upload size (20MB).
	// Large enough for typical PDFs and word-processor files while
	// keeping extraction memory bounded.
	MaxUploadBytes = 20 << 20

	// MaxMessageLength is the maximum length for a user chat message.
	MaxMessageLength = 8192

	// DefaultChunkTargetSize is the target size in bytes for one chunk
	// of extracted text. A single sentence longer than this becomes its
	// own oversized chunk.
	DefaultChunkTargetSize = 1000

	// DefaultEmbeddingDim is the dimensionality of embedding vectors.
	// Must match the embedding model's output dimensionality and the
	// vector column width in the chunks table.
	DefaultEmbeddingDim = 1536

	// DefaultMatchThreshold is the minimum cosine similarity for a chunk
	// to be included in retrieval results.
	DefaultMatchThreshold = 0.7

	// DefaultMatchCount is the maximum number of chunks returned per
	// retrieval query.
	DefaultMatchCount = 5

	// EmbeddingBatchConcurrency bounds concurrent embedding requests
	// when embedding the chunks of one document.
	EmbeddingBatchConcurrency = 4
)
