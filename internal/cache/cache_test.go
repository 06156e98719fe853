package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/models"
)

// testClient connects to a local Valkey instance, skipping the test when
// none is reachable.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping integration test: valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDocumentCacheRoundTrip(t *testing.T) {
	client := testClient(t)
	dc := NewDocumentCache(client, time.Minute)
	ctx := context.Background()

	doc := &models.Document{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Cached Title",
		Body:    "cached body",
		Status:  models.StatusDraft,
	}
	t.Cleanup(func() { dc.Invalidate(ctx, doc.ID) })

	if got := dc.Get(ctx, doc.ID); got != nil {
		t.Fatal("expected miss before set")
	}

	dc.Set(ctx, doc)

	got := dc.Get(ctx, doc.ID)
	if got == nil {
		t.Fatal("expected hit after set")
	}
	if got.Title != doc.Title || got.OwnerID != doc.OwnerID {
		t.Errorf("cached document mismatch: got %+v", got)
	}
}

func TestDocumentCacheInvalidate(t *testing.T) {
	client := testClient(t)
	dc := NewDocumentCache(client, time.Minute)
	ctx := context.Background()

	doc := &models.Document{ID: uuid.New(), Title: "Gone Soon"}
	dc.Set(ctx, doc)
	dc.Invalidate(ctx, doc.ID)

	if got := dc.Get(ctx, doc.ID); got != nil {
		t.Error("expected miss after invalidate")
	}
}
