package document

// Document represents a knowledge source that can be chunked and indexed.
type Document struct {
	Source   string         `json:"source"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chunk is a bounded span of a document prepared for embedding.
type Chunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Index  int    `json:"index"`
}

// Passage is a retrieved chunk with its relevance score. Passages are
// immutable once produced by a retriever; downstream stages compare them for
// deduplication by exact Text equality, never by source or score.
type Passage struct {
	Text       string  `json:"text"`
	Source     string  `json:"source_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
