package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/dm/escat/internal/client"
	"github.com/dm/escat/internal/schema"
)

// MockESClient implements client.ESClient for testing. Nil function fields
// fall back to a small healthy cluster with one "test-index".
type MockESClient struct {
	RootFn       func(ctx context.Context) (*client.RootInfo, error)
	HealthFn     func(ctx context.Context) (*client.ClusterHealth, error)
	NodesFn      func(ctx context.Context) ([]client.NodeInfo, error)
	IndicesFn    func(ctx context.Context) ([]client.IndexInfo, error)
	IndexNamesFn func(ctx context.Context) ([]string, error)
	MappingFn    func(ctx context.Context, index string) (*client.IndexMappingResponse, error)
	SettingsFn   func(ctx context.Context, index string) (*client.IndexSettingsResponse, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockESClient) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (m *MockESClient) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockESClient) GetRoot(ctx context.Context) (*client.RootInfo, error) {
	m.record("GetRoot")
	if m.RootFn != nil {
		return m.RootFn(ctx)
	}
	root := &client.RootInfo{Name: "node1", ClusterName: "test"}
	root.Version.Number = "8.11.0"
	return root, nil
}

func (m *MockESClient) GetClusterHealth(ctx context.Context) (*client.ClusterHealth, error) {
	m.record("GetClusterHealth")
	if m.HealthFn != nil {
		return m.HealthFn(ctx)
	}
	return &client.ClusterHealth{ClusterName: "test", Status: "green", NumberOfNodes: 1}, nil
}

func (m *MockESClient) GetNodes(ctx context.Context) ([]client.NodeInfo, error) {
	m.record("GetNodes")
	if m.NodesFn != nil {
		return m.NodesFn(ctx)
	}
	return []client.NodeInfo{{Name: "node1", IP: "127.0.0.1", NodeRole: "master"}}, nil
}

func (m *MockESClient) GetIndices(ctx context.Context) ([]client.IndexInfo, error) {
	m.record("GetIndices")
	if m.IndicesFn != nil {
		return m.IndicesFn(ctx)
	}
	return []client.IndexInfo{{Index: "test-index", DocsCount: "1", StoreSize: "1kb", CreationDate: "2024-01-01T00:00:00.000Z"}}, nil
}

func (m *MockESClient) ListIndexNames(ctx context.Context) ([]string, error) {
	m.record("ListIndexNames")
	if m.IndexNamesFn != nil {
		return m.IndexNamesFn(ctx)
	}
	return []string{"test-index"}, nil
}

func (m *MockESClient) GetMapping(ctx context.Context, index string) (*client.IndexMappingResponse, error) {
	m.record("GetMapping")
	if m.MappingFn != nil {
		return m.MappingFn(ctx, index)
	}
	return mappingFor(index, schema.Field{Name: "message", Type: "text"}), nil
}

func (m *MockESClient) GetSettings(ctx context.Context, index string) (*client.IndexSettingsResponse, error) {
	m.record("GetSettings")
	if m.SettingsFn != nil {
		return m.SettingsFn(ctx, index)
	}
	return &client.IndexSettingsResponse{
		index: {Settings: map[string]any{"index": map[string]any{"number_of_shards": "1"}}},
	}, nil
}

func (m *MockESClient) Ping(ctx context.Context) error {
	return nil
}

func (m *MockESClient) BaseURL() string {
	return "http://mock:9200"
}

func mappingFor(index string, fields ...schema.Field) *client.IndexMappingResponse {
	return &client.IndexMappingResponse{
		index: {Mappings: schema.Mapping{Properties: schema.Properties(fields)}},
	}
}

var errMockFailure = errors.New("mock failure")
