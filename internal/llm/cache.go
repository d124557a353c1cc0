package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"journal-rag/internal/contextutil"
	"journal-rag/internal/storage"
)

// CachedEmbedder stores vectors produced by another Embedder in a bbolt file,
// keyed by the SHA-256 of the text. Each model and dimension pair gets its own
// bucket, so switching models never returns stale vectors.
type CachedEmbedder struct {
	next   Embedder
	db     *bbolt.DB
	bucket []byte
	hits   atomic.Int64
	misses atomic.Int64
}

// OpenCachedEmbedder opens (or creates) the cache file at path in front of next.
func OpenCachedEmbedder(path string, next Embedder) (*CachedEmbedder, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	bucket := []byte(fmt.Sprintf("%s/%d", next.ModelName(), next.Dimensions()))
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create embedding cache bucket: %w", err)
	}

	return &CachedEmbedder{next: next, db: db, bucket: bucket}, nil
}

// Dimensions delegates to the wrapped embedder.
func (c *CachedEmbedder) Dimensions() int {
	return c.next.Dimensions()
}

// ModelName delegates to the wrapped embedder.
func (c *CachedEmbedder) ModelName() string {
	return c.next.ModelName()
}

// Stats returns the cache hit and miss counts since the cache was opened.
func (c *CachedEmbedder) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close closes the cache file. The wrapped embedder is left open.
func (c *CachedEmbedder) Close() error {
	return c.db.Close()
}

// Embed serves cached vectors and embeds only the misses, in one call.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	dims := c.next.Dimensions()
	out := make([][]float32, len(texts))
	keys := make([][]byte, len(texts))
	for i, text := range texts {
		sum := sha256.Sum256([]byte(text))
		keys[i] = sum[:]
	}

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		for i, key := range keys {
			if raw := b.Get(key); raw != nil {
				if vec, ok := storage.DecodeEmbedding(raw); ok && len(vec) == dims {
					out[i] = vec
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding cache: %w", err)
	}

	var (
		missIdx   []int
		missTexts []string
	)
	for i, vec := range out {
		if vec == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	c.hits.Add(int64(len(texts) - len(missIdx)))
	c.misses.Add(int64(len(missIdx)))

	if len(missIdx) == 0 {
		return out, nil
	}

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = fresh[j]
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		for j, i := range missIdx {
			if len(fresh[j]) != dims {
				continue
			}
			if err := b.Put(keys[i], storage.EncodeEmbedding(fresh[j])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The vectors are still valid; only persistence failed.
		logger.WarnContext(ctx, "failed to write embedding cache", "error", err)
	}

	return out, nil
}
