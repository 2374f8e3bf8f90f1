package config

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/systemmap/pkg/cache"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/source"
	"github.com/matzehuels/systemmap/pkg/source/mdoc"
	"github.com/matzehuels/systemmap/pkg/source/mongo"
	"github.com/matzehuels/systemmap/pkg/source/sqlite"
	"github.com/matzehuels/systemmap/pkg/source/static"
)

// OpenSource opens the configured source. The returned close function
// releases connections and is never nil.
func (c SourceConfig) OpenSource(ctx context.Context, logger *log.Logger) (source.Source, func() error, error) {
	noop := func() error { return nil }
	switch c.Kind {
	case SourceStatic:
		src, err := static.NewFile(c.Path)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case SourceMdoc:
		return mdoc.New(c.Path, logger), noop, nil
	case SourceSQLite:
		store, err := sqlite.Open(ctx, c.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case SourceMongo:
		store, err := mongo.Connect(ctx, mongo.Options{
			URI:        c.URI,
			Database:   c.Database,
			Collection: c.Collection,
			Timeout:    c.Timeout.Duration,
		})
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return store.Close(ctx)
		}
		return store, closeFn, nil
	}
	return nil, noop, errs.New(errs.ErrCodeInvalidConfig, "unknown source kind %q", c.Kind)
}

// OpenCache opens the configured cache backend. A redis cache that cannot
// be reached is reported as [cache.ErrUnavailable].
func (c CacheConfig) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Kind {
	case "", CacheNone:
		return cache.NewNullCache(), nil
	case CacheFile:
		dir := c.Dir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
			Prefix:   c.Prefix,
		})
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown cache kind %q", c.Kind)
}

// Writer is a source that can be rewritten wholesale by the import command.
type Writer interface {
	Replace(ctx context.Context, records []source.Record) error
}

// OpenWriter opens the configured source for writing. Only the sqlite and
// mongo kinds are writable.
func (c SourceConfig) OpenWriter(ctx context.Context) (Writer, func() error, error) {
	switch c.Kind {
	case SourceSQLite, SourceMongo:
		src, closeFn, err := c.OpenSource(ctx, nil)
		if err != nil {
			return nil, closeFn, err
		}
		return src.(Writer), closeFn, nil
	}
	return nil, func() error { return nil }, errs.New(errs.ErrCodeUnsupported, "%s sources are read-only", c.Kind)
}
