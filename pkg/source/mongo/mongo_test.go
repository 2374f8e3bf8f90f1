package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/systemmap/pkg/cache"
	"github.com/matzehuels/systemmap/pkg/source"
	"github.com/matzehuels/systemmap/pkg/tree"
)

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	assert.Equal(t, "mongodb://localhost:27017", o.URI)
	assert.Equal(t, "systemmap", o.Database)
	assert.Equal(t, "nodes", o.Collection)
	assert.Equal(t, 10*time.Second, o.Timeout)
	assert.Equal(t, cache.DefaultBackoff, o.Backoff)

	custom := Options{Database: "portfolio", Backoff: cache.Backoff{Attempts: 1}}
	custom.SetDefaults()
	assert.Equal(t, "portfolio", custom.Database)
	assert.Equal(t, 1, custom.Backoff.Attempts)
}

func TestStore(t *testing.T) {
	uri := os.Getenv("SYSTEMMAP_TEST_MONGO")
	if uri == "" {
		t.Skip("SYSTEMMAP_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, Options{URI: uri, Database: "systemmap_test", Collection: "nodes"})
	require.NoError(t, err)
	defer s.Close(ctx)

	require.NoError(t, s.Replace(ctx, []source.Record{
		{ID: "system-map", Type: "category", Title: "System Map"},
		{ID: "about", Type: "article", Title: "About", ParentID: "system-map"},
	}))

	root, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "system-map", root.ID)
	assert.NotNil(t, tree.FindNode(root, "about"))
}
