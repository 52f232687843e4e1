package model

import "encoding/json"

// Unknown is the placeholder stored for string attributes the cluster did not report.
const Unknown = "unknown"

// ClusterSnapshot is the staged record produced by the cluster stage.
type ClusterSnapshot struct {
	ClusterName         string   `json:"cluster_name"`
	ClusterVersion      string   `json:"cluster_version"`
	ClusterHealth       string   `json:"cluster_health"`
	NodeCount           int      `json:"node_count"`
	TotalIndices        int      `json:"total_indices"`
	TotalDocuments      int64    `json:"total_documents"`
	TotalSizeBytes      int64    `json:"total_size_bytes"`
	ActiveIndices       int      `json:"active_indices"`
	EmptyIndices        int      `json:"empty_indices"`
	ClusterOwner        string   `json:"cluster_owner"`
	ClusterTags         []string `json:"cluster_tags"`
	ExtractionTimestamp string   `json:"extraction_timestamp,omitempty"`
}

// UnmarshalJSON applies the placeholder defaults for keys absent from the record.
func (c *ClusterSnapshot) UnmarshalJSON(b []byte) error {
	type plain ClusterSnapshot
	p := plain{
		ClusterName:    Unknown,
		ClusterVersion: Unknown,
		ClusterHealth:  Unknown,
		ClusterOwner:   "Unknown",
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.ClusterTags == nil {
		p.ClusterTags = []string{}
	}
	*c = ClusterSnapshot(p)
	return nil
}

// IndexSnapshot is one staged record produced by the indices stage.
type IndexSnapshot struct {
	IndexName           string `json:"index_name"`
	DocumentCount       int64  `json:"document_count"`
	SizeBytes           int64  `json:"size_bytes"`
	CreationDate        string `json:"creation_date"`
	ExtractionTimestamp string `json:"extraction_timestamp,omitempty"`
}

// UnmarshalJSON applies the placeholder defaults for keys absent from the record.
func (i *IndexSnapshot) UnmarshalJSON(b []byte) error {
	type plain IndexSnapshot
	p := plain{IndexName: Unknown, CreationDate: Unknown}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*i = IndexSnapshot(p)
	return nil
}

// FieldDescriptor describes one field of an index mapping. FieldName is the
// dot-joined path from the mapping root, e.g. "address.city".
type FieldDescriptor struct {
	FieldName      string `json:"field_name"`
	FieldType      string `json:"field_type"`
	Analyzer       string `json:"analyzer"`
	Indexed        bool   `json:"indexed"`
	Stored         bool   `json:"stored"`
	Nested         bool   `json:"nested"`
	HasMultiFields bool   `json:"has_multi_fields,omitempty"`
}

// UnmarshalJSON applies the mapping defaults for keys absent from the record.
func (f *FieldDescriptor) UnmarshalJSON(b []byte) error {
	type plain FieldDescriptor
	p := plain{
		FieldName: Unknown,
		FieldType: Unknown,
		Analyzer:  "standard",
		Indexed:   true,
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*f = FieldDescriptor(p)
	return nil
}

// IndexMapping is the staged summary of one index's mapping.
type IndexMapping struct {
	IndexName           string            `json:"index_name"`
	FieldCount          int               `json:"field_count"`
	Fields              []FieldDescriptor `json:"fields"`
	ExtractionTimestamp string            `json:"extraction_timestamp,omitempty"`
}

// UnmarshalJSON applies the placeholder defaults for keys absent from the record.
func (m *IndexMapping) UnmarshalJSON(b []byte) error {
	type plain IndexMapping
	p := plain{IndexName: Unknown}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = IndexMapping(p)
	return nil
}

// IndexSettings holds the raw settings of one index, keyed by setting group.
type IndexSettings struct {
	IndexName           string         `json:"index_name"`
	Settings            map[string]any `json:"settings"`
	ExtractionTimestamp string         `json:"extraction_timestamp,omitempty"`
}
