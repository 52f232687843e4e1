package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	endpointRoot          = "/"
	endpointClusterHealth = "/_cluster/health"
	endpointNodes         = "/_cat/nodes?format=json"
	endpointIndices       = "/_cat/indices?format=json&h=index,docs.count,store.size,creation.date.string"
	endpointIndexNames    = "/_cat/indices?format=json&h=index"
)

// GetRoot fetches cluster name and version from the API root.
func (c *DefaultClient) GetRoot(ctx context.Context) (*RootInfo, error) {
	body, err := c.doGet(ctx, "root", endpointRoot)
	if err != nil {
		return nil, fmt.Errorf("GetRoot: %w", err)
	}

	var result RootInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetRoot decode: %w", err)
	}
	return &result, nil
}

// GetClusterHealth fetches cluster health from /_cluster/health.
func (c *DefaultClient) GetClusterHealth(ctx context.Context) (*ClusterHealth, error) {
	body, err := c.doGet(ctx, "cluster_health", endpointClusterHealth)
	if err != nil {
		return nil, fmt.Errorf("GetClusterHealth: %w", err)
	}

	var result ClusterHealth
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetClusterHealth decode: %w", err)
	}
	return &result, nil
}

// GetNodes fetches the list of nodes from /_cat/nodes.
func (c *DefaultClient) GetNodes(ctx context.Context) ([]NodeInfo, error) {
	body, err := c.doGet(ctx, "nodes", endpointNodes)
	if err != nil {
		return nil, fmt.Errorf("GetNodes: %w", err)
	}

	var result []NodeInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetNodes decode: %w", err)
	}
	return result, nil
}

// GetIndices fetches name, document count, store size and creation date of
// every index from /_cat/indices, in the order the cluster lists them.
func (c *DefaultClient) GetIndices(ctx context.Context) ([]IndexInfo, error) {
	body, err := c.doGet(ctx, "indices", endpointIndices)
	if err != nil {
		return nil, fmt.Errorf("GetIndices: %w", err)
	}

	var result []IndexInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetIndices decode: %w", err)
	}
	return result, nil
}

// ListIndexNames fetches only the index column of /_cat/indices.
func (c *DefaultClient) ListIndexNames(ctx context.Context) ([]string, error) {
	body, err := c.doGet(ctx, "index_names", endpointIndexNames)
	if err != nil {
		return nil, fmt.Errorf("ListIndexNames: %w", err)
	}

	var rows []struct {
		Index string `json:"index"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("ListIndexNames decode: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Index)
	}
	return names, nil
}

// GetMapping fetches the mapping of a single index from /{index}/_mapping.
func (c *DefaultClient) GetMapping(ctx context.Context, index string) (*IndexMappingResponse, error) {
	if index == "" {
		return nil, fmt.Errorf("GetMapping: index name must not be empty")
	}
	body, err := c.doGet(ctx, "mapping", "/"+url.PathEscape(index)+"/_mapping")
	if err != nil {
		return nil, fmt.Errorf("GetMapping: %w", err)
	}

	var result IndexMappingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetMapping decode: %w", err)
	}
	return &result, nil
}

// GetSettings fetches the settings of a single index from /{index}/_settings.
// Settings reported with flat dotted keys are expanded into nested maps so
// that both response styles produce the same shape.
func (c *DefaultClient) GetSettings(ctx context.Context, index string) (*IndexSettingsResponse, error) {
	if index == "" {
		return nil, fmt.Errorf("GetSettings: index name must not be empty")
	}
	body, err := c.doGet(ctx, "settings", "/"+url.PathEscape(index)+"/_settings")
	if err != nil {
		return nil, fmt.Errorf("GetSettings: %w", err)
	}

	var result IndexSettingsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetSettings decode: %w", err)
	}
	for name, entry := range result {
		if hasDottedKey(entry.Settings) {
			entry.Settings = buildNestedMap(entry.Settings)
			result[name] = entry
		}
	}
	return &result, nil
}

func hasDottedKey(m map[string]any) bool {
	for k := range m {
		if strings.Contains(k, ".") {
			return true
		}
	}
	return false
}
