// Package mongo reads content nodes from a MongoDB collection.
//
// Each document is one node; its _id is the node id and "parent" holds the
// parent id. Field names match the JSON tree format.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/systemmap/pkg/cache"
	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/source"
)

// Options configures [Connect].
type Options struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
	Backoff    cache.Backoff
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.URI == "" {
		o.URI = "mongodb://localhost:27017"
	}
	if o.Database == "" {
		o.Database = "systemmap"
	}
	if o.Collection == "" {
		o.Collection = "nodes"
	}
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Backoff.Attempts == 0 {
		o.Backoff = cache.DefaultBackoff
	}
}

// Store is a MongoDB-backed node collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	opts   Options
}

// Connect dials MongoDB and pings it, retrying while the server is
// unreachable.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	opts.SetDefaults()
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "connect %s", opts.Database)
	}

	err = cache.RetryWithBackoff(ctx, opts.Backoff, func() error {
		return cache.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "ping %s", opts.Database)
	}

	return &Store{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
		opts:   opts,
	}, nil
}

func (s *Store) Name() string { return "mongo:" + s.opts.Database + "/" + s.opts.Collection }

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Load reads the collection and links the tree.
func (s *Store) Load(ctx context.Context) (*content.Node, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return source.BuildTree(records)
}

// Records returns every document ordered by _id.
func (s *Store) Records(ctx context.Context) ([]source.Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "find nodes")
	}
	var records []source.Record
	if err := cur.All(ctx, &records); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidContent, err, "decode nodes")
	}
	return records, nil
}

// Replace swaps the collection contents for records.
func (s *Store) Replace(ctx context.Context, records []source.Record) error {
	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return errs.Wrap(errs.ErrCodeSourceUnavailable, err, "clear nodes")
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = r
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return errs.Wrap(errs.ErrCodeSourceUnavailable, err, "insert nodes")
	}
	return nil
}
