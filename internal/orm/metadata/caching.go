package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/cache"
	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
)

// CachingFactory serves metadata from a cache and fills it from an inner
// factory. Errors are never cached.
type CachingFactory struct {
	inner  Factory
	cache  cache.Cache
	logger *zap.Logger
}

// NewCachingFactory wraps a factory with a cache
func NewCachingFactory(inner Factory, c cache.Cache, logger *zap.Logger) *CachingFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingFactory{inner: inner, cache: c, logger: logger}
}

// CreateEmptyMetadata implements Factory
func (f *CachingFactory) CreateEmptyMetadata() *EntityMetadata {
	return f.inner.CreateEmptyMetadata()
}

// CreateMetadata implements Factory
func (f *CachingFactory) CreateMetadata(ref any) (*EntityMetadata, error) {
	return f.CreateMetadataContext(context.Background(), ref)
}

// CreateMetadataContext is CreateMetadata with a context for the cache calls
func (f *CachingFactory) CreateMetadataContext(ctx context.Context, ref any) (*EntityMetadata, error) {
	key, err := f.keyFor(ref)
	if err != nil {
		return nil, err
	}

	data, err := f.cache.Get(ctx, key)
	switch {
	case err == nil:
		var meta EntityMetadata
		if err := json.Unmarshal(data, &meta); err == nil {
			f.logger.Debug("metadata cache hit", zap.String("key", key))
			return &meta, nil
		}
		f.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !cache.IsMiss(err):
		f.logger.Warn("metadata cache unavailable", zap.String("key", key), zap.Error(err))
	}

	meta, err := f.inner.CreateMetadata(ref)
	if err != nil {
		return nil, err
	}

	f.store(ctx, key, meta)
	return meta, nil
}

// Preload creates and caches the metadata of every reference
func (f *CachingFactory) Preload(ctx context.Context, refs ...any) error {
	for _, ref := range refs {
		key, err := f.keyFor(ref)
		if err != nil {
			return err
		}
		meta, err := f.inner.CreateMetadata(ref)
		if err != nil {
			return fmt.Errorf("preloading %s: %w", key, err)
		}
		f.store(ctx, key, meta)
	}
	return nil
}

// Invalidate drops the cached metadata of a reference
func (f *CachingFactory) Invalidate(ctx context.Context, ref any) error {
	key, err := f.keyFor(ref)
	if err != nil {
		return err
	}
	return f.cache.Delete(ctx, key)
}

// keyFor returns the cache key of a reference: its qualified class name, or
// the name as given when it cannot be described. Polymorphic roots get a digest of their discriminator
// appended, so changing a configured override misses the old entries.
func (f *CachingFactory) keyFor(ref any) (string, error) {
	name, err := introspect.NameOf(ref)
	if err != nil {
		return "", err
	}

	source, ok := f.inner.(interface{ Classes() ClassProvider })
	if !ok {
		return name, nil
	}
	class, err := source.Classes().Describe(ref)
	if err != nil {
		return name, nil
	}
	if class.Discriminator == nil {
		return class.Name, nil
	}

	data, err := json.Marshal(class.Discriminator)
	if err != nil {
		return "", fmt.Errorf("encoding discriminator of %s: %w", name, err)
	}
	sum := sha256.Sum256(data)
	return class.Name + "#" + hex.EncodeToString(sum[:6]), nil
}

func (f *CachingFactory) store(ctx context.Context, key string, meta *EntityMetadata) {
	data, err := json.Marshal(meta)
	if err != nil {
		f.logger.Warn("encoding metadata", zap.String("key", key), zap.Error(err))
		return
	}
	if err := f.cache.Set(ctx, key, data, 0); err != nil {
		f.logger.Warn("caching metadata", zap.String("key", key), zap.Error(err))
	}
}
