package model

// EntityType discriminates the variants of CatalogEntity.
type EntityType string

const (
	EntityCluster EntityType = "CLUSTER"
	EntityIndex   EntityType = "INDEX"
	EntityField   EntityType = "FIELD"
)

// StatusActive is the only status the transformer assigns.
const StatusActive = "ACTIVE"

// CatalogEntity is one transformed record ready for catalog ingestion.
// Attributes and CustomAttributes hold the variant-specific structs below.
type CatalogEntity struct {
	TypeName         EntityType `json:"typeName"`
	Attributes       Attributes `json:"attributes"`
	CustomAttributes any        `json:"customAttributes"`
	Status           string     `json:"status"`
}

// Attributes is implemented by ClusterAttributes, IndexAttributes and FieldAttributes.
type Attributes interface {
	Base() BaseAttributes
}

// BaseAttributes are shared by every entity type.
type BaseAttributes struct {
	Name                    string `json:"name"`
	QualifiedName           string `json:"qualifiedName"`
	ConnectionQualifiedName string `json:"connectionQualifiedName"`
}

// Base returns the shared attributes.
func (b BaseAttributes) Base() BaseAttributes { return b }

type ClusterAttributes struct {
	BaseAttributes
	ClusterName    string `json:"clusterName"`
	ClusterVersion string `json:"clusterVersion"`
	ClusterStatus  string `json:"clusterStatus"`
	NumberOfNodes  int    `json:"numberOfNodes"`
	TotalIndices   int    `json:"totalIndices"`
	TotalDocuments int64  `json:"totalDocuments"`
}

type ClusterCustomAttributes struct {
	ClusterOwner   string   `json:"cluster_owner"`
	ClusterTags    []string `json:"cluster_tags"`
	TotalSizeBytes int64    `json:"total_size_bytes"`
	ActiveIndices  int      `json:"active_indices"`
	EmptyIndices   int      `json:"empty_indices"`
}

type IndexAttributes struct {
	BaseAttributes
	IndexName     string `json:"indexName"`
	DocumentCount int64  `json:"documentCount"`
	SizeBytes     int64  `json:"sizeBytes"`
	CreationDate  string `json:"creationDate"`
}

type IndexCustomAttributes struct {
	ExtractionTimestamp string `json:"extraction_timestamp"`
}

type FieldAttributes struct {
	BaseAttributes
	IndexQualifiedName string `json:"indexQualifiedName"`
	FieldName          string `json:"fieldName"`
	FieldType          string `json:"fieldType"`
	Analyzer           string `json:"analyzer"`
	Indexed            bool   `json:"indexed"`
	Stored             bool   `json:"stored"`
	Nested             bool   `json:"nested"`
	HasMultiFields     bool   `json:"hasMultiFields"`
}

type FieldCustomAttributes struct {
	IndexName           string `json:"index_name"`
	FieldCount          int    `json:"field_count"`
	ExtractionTimestamp string `json:"extraction_timestamp"`
}
