// document.go provides a Valkey-backed cache of document rows keyed by ID.
// The relational store stays the source of truth: every committed mutation
// invalidates the cached row, and cache errors degrade to a miss.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/models"
)

const (
	// documentKeyPrefix is the Valkey key prefix for cached documents.
	documentKeyPrefix = "doc:"

	// DefaultDocumentTTL is how long a document row stays cached.
	DefaultDocumentTTL = 5 * time.Minute
)

// DocumentCache caches document rows in Valkey.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentCache creates a document cache backed by the given Valkey client.
func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	if ttl == 0 {
		ttl = DefaultDocumentTTL
	}
	return &DocumentCache{client: client, ttl: ttl}
}

// Get retrieves a cached document by ID. Returns nil on miss or decode error.
func (dc *DocumentCache) Get(ctx context.Context, id uuid.UUID) *models.Document {
	val, err := dc.client.Get(ctx, documentKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		slog.Warn("document cache get error", "id", id, "error", err)
		return nil
	}

	var d models.Document
	if err := json.Unmarshal(val, &d); err != nil {
		slog.Warn("document cache decode error", "id", id, "error", err)
		dc.Invalidate(ctx, id)
		return nil
	}
	slog.Debug("document cache hit", "id", id)
	return &d
}

// Set stores a document row with the configured TTL.
func (dc *DocumentCache) Set(ctx context.Context, d *models.Document) {
	val, err := json.Marshal(d)
	if err != nil {
		slog.Warn("document cache encode error", "id", d.ID, "error", err)
		return
	}
	if err := dc.client.Set(ctx, documentKeyPrefix+d.ID.String(), val, dc.ttl).Err(); err != nil {
		slog.Warn("document cache set error", "id", d.ID, "error", err)
	}
}

// Invalidate removes a document from the cache.
func (dc *DocumentCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := dc.client.Del(ctx, documentKeyPrefix+id.String()).Err(); err != nil {
		slog.Warn("document cache invalidate error", "id", id, "error", err)
	}
	slog.Debug("document cache invalidated", "id", id)
}
