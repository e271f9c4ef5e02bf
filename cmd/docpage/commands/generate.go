package commands

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/nanoid"
)

// generate builds n sample documents. Sequential ids make reseeding
// idempotent; random ids add new documents on every run.
func generate(n int, randomIDs bool, now time.Time) []document.Document {
	docs := make([]document.Document, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("doc-%05d", i)
		if randomIDs {
			id = nanoid.Lower(12)
		}
		docs = append(docs, document.New(id, map[string]any{
			"title":      fmt.Sprintf("Document %d", i),
			"rank":       int64(i % 10),
			"score":      float64(n-i) / float64(n),
			"created_at": now.Add(time.Duration(i) * time.Second).UTC(),
		}))
	}
	return docs
}

// seed writes docs in chunks of size batch and returns how many were written.
func seed(ctx context.Context, b *Backend, docs []document.Document, batch int) (int, error) {
	if batch <= 0 {
		batch = len(docs)
	}
	written := 0
	for chunk := range slices.Chunk(docs, max(batch, 1)) {
		if err := b.Put(ctx, chunk...); err != nil {
			return written, fmt.Errorf("seeding %s source: %w", b.Kind, err)
		}
		written += len(chunk)
	}
	return written, nil
}
