package repo

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	StorageTypeFilesystem = "filesystem"
	StorageTypeBlob       = "blob"
)

// Storage persists repo snapshots, implementations are safe for concurrent use
type Storage interface {
	// Write stores data by key, existing data is replaced
	Write(ctx context.Context, key string, data []byte) error
	// Read returns os.ErrNotExist for unknown keys
	Read(ctx context.Context, key string) ([]byte, error)
	// List returns the keys with the given prefix, newest first
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete ignores unknown keys
	Delete(ctx context.Context, key string) error
	Close() error
}

// blobProviders by url scheme
var blobProviders = map[string]string{
	"gs":     "Google Cloud Storage",
	"s3":     "AWS S3",
	"azblob": "Azure Blob Storage",
	"mem":    "in memory",
}

// NewStorage creates the snapshot storage by type, blob buckets are opened by url
// i.e. "gs://my-bucket", "s3://my-bucket?region=eu-central-1" or "azblob://my-container"
func NewStorage(ctx context.Context, l *zap.Logger, storageType, dir, bucketURL, prefix string) (Storage, error) {
	l = l.Named("storage")
	if storageType != StorageTypeBlob && (bucketURL != "" || prefix != "") {
		l.Warn("blob storage is configured but not used",
			zap.String("type", storageType),
			zap.String("bucket", bucketURL),
			zap.String("prefix", prefix),
		)
	}

	switch storageType {
	case StorageTypeBlob:
		provider, ok := BlobProvider(bucketURL)
		if !ok {
			return nil, errors.Errorf("unsupported blob bucket url %q", bucketURL)
		}
		l.Info("using blob storage",
			zap.String("bucket", bucketURL),
			zap.String("prefix", prefix),
			zap.String("provider", provider),
		)
		return NewBlobStorage(ctx, bucketURL, prefix)
	case StorageTypeFilesystem, "":
		l.Info("using filesystem storage", zap.String("dir", dir))
		return NewFilesystemStorage(dir)
	default:
		return nil, errors.Errorf("unknown storage type %q", storageType)
	}
}

// BlobProvider returns the provider name for a bucket url
func BlobProvider(bucketURL string) (string, bool) {
	scheme, _, ok := strings.Cut(bucketURL, "://")
	if !ok {
		return "", false
	}
	provider, ok := blobProviders[scheme]
	return provider, ok
}
