package garment

import (
	"context"
	"io"
)

// Repository persists wardrobe items.
type Repository interface {
	Create(ctx context.Context, item Item) (Item, error)
	List(ctx context.Context) ([]Item, error)
	ListByCategory(ctx context.Context, category Category) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, bool, error)
	Update(ctx context.Context, id int64, sem Semantics) (Item, bool, error)
	Delete(ctx context.Context, id int64) (Item, bool, error)
}

// ImageStorage abstracts blob storage for processed garment images.
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredImage, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredImage captures persisted blob metadata.
type StoredImage struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}
