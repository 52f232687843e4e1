//go:build integration

package engine_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/escat/internal/client"
	"github.com/dm/escat/internal/engine"
	"github.com/dm/escat/internal/staging"
	"github.com/dm/escat/internal/transform"
)

// esClient creates a DefaultClient from $ES_URI or skips the test if unset.
func esClient(t *testing.T) client.ESClient {
	t.Helper()
	uri := os.Getenv("ES_URI")
	if uri == "" {
		t.Skip("ES_URI not set; skipping integration test")
	}
	c, err := client.NewDefaultClient(client.ClientConfig{
		BaseURL:        uri,
		RequestTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	return c
}

// TestLiveCluster_Collectors runs every collector against $ES_URI and
// verifies that the cluster record is populated.
func TestLiveCluster_Collectors(t *testing.T) {
	c := esClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clusters, stats := engine.NewClusterCollector(engine.Options{}, nil).Collect(ctx, c)
	require.Len(t, clusters, 1)
	assert.Equal(t, 1, stats.TotalRecordCount)
	assert.NotEqual(t, "unknown", clusters[0].ClusterName, "cluster name should be reported")
	assert.NotEqual(t, "unknown", clusters[0].ClusterVersion, "version should be reported")
	assert.Greater(t, clusters[0].NodeCount, 0, "should have at least 1 node")

	indices, _ := engine.NewIndexCollector(engine.Options{}, nil).Collect(ctx, c)
	for _, idx := range indices {
		assert.False(t, strings.HasPrefix(idx.IndexName, "."), "system index %q returned", idx.IndexName)
	}

	mappings, _ := engine.NewMappingCollector(engine.Options{}, nil).Collect(ctx, c)
	assert.LessOrEqual(t, len(mappings), engine.MaxPerIndexRequests)
}

// TestLiveCluster_FullRun runs the whole pipeline into a temp directory.
func TestLiveCluster_FullRun(t *testing.T) {
	c := esClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store := staging.NewStore(t.TempDir(), nil)
	r := engine.NewRunner(engine.RunnerConfig{
		Client:                  c,
		Store:                   store,
		Transformer:             transform.New(store, nil),
		ConnectionQualifiedName: "default/es",
		RunID:                   "integration",
	})
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Entities(), 1, "at least the cluster entity is expected")
	assert.FileExists(t, res.TransformedPath)
}

// TestLiveCluster_HTTPSWithInsecure skips unless ES_URI is https://.
// Verifies that InsecureSkipVerify=true allows connecting to a self-signed cert ES.
func TestLiveCluster_HTTPSWithInsecure(t *testing.T) {
	uri := os.Getenv("ES_URI")
	if uri == "" {
		t.Skip("ES_URI not set; skipping integration test")
	}
	if !strings.HasPrefix(uri, "https://") {
		t.Skip("ES_URI is not https://; skipping TLS insecure test")
	}

	c, err := client.NewDefaultClient(client.ClientConfig{
		BaseURL:            uri,
		InsecureSkipVerify: true,
		RequestTimeout:     10 * time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root, err := c.GetRoot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, root.ClusterName, "cluster name should not be empty with insecure TLS")
}
