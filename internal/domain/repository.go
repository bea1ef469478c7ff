package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own serialization.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository loads the full product catalog from its source
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// AssistantClient talks to the remote chat completion endpoint
type AssistantClient interface {
	Complete(ctx context.Context, request *AssistantRequest) (*AssistantReply, error)
}
