package client

import "github.com/dm/escat/internal/schema"

// RootInfo represents the response from the API root (/).
type RootInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// ClusterHealth represents the response from /_cluster/health.
type ClusterHealth struct {
	ClusterName       string `json:"cluster_name"`
	Status            string `json:"status"`
	NumberOfNodes     int    `json:"number_of_nodes"`
	NumberOfDataNodes int    `json:"number_of_data_nodes"`
	ActiveShards      int    `json:"active_shards"`
	UnassignedShards  int    `json:"unassigned_shards"`
}

// NodeInfo represents a single node entry from /_cat/nodes.
type NodeInfo struct {
	NodeRole string `json:"node.role"`
	Name     string `json:"name"`
	IP       string `json:"ip"`
}

// IndexInfo represents a single index entry from /_cat/indices. All values
// are strings as the cat API reports them.
type IndexInfo struct {
	Index        string `json:"index"`
	DocsCount    string `json:"docs.count"`
	StoreSize    string `json:"store.size"`
	CreationDate string `json:"creation.date.string"`
}

// IndexMappingResponse is the body of GET /{index}/_mapping, keyed by index name.
type IndexMappingResponse map[string]IndexMappingEntry

// IndexMappingEntry holds the mapping of one index.
type IndexMappingEntry struct {
	Mappings schema.Mapping `json:"mappings"`
}

// IndexSettingsResponse is the body of GET /{index}/_settings, keyed by index name.
type IndexSettingsResponse map[string]IndexSettingsEntry

// IndexSettingsEntry holds the settings of one index.
type IndexSettingsEntry struct {
	Settings map[string]any `json:"settings"`
}
