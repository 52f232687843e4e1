package model

// Stats reports the outcome of one stage for progress reporting.
type Stats struct {
	Typename         string `json:"typename"`
	TotalRecordCount int    `json:"total_record_count"`
	ChunkCount       int    `json:"chunk_count"`
	// FailedItemCount counts per-index calls or records that were skipped.
	FailedItemCount int `json:"failed_item_count,omitempty"`
}

// EmptyStats returns the zero-count stats used when a stage produced nothing.
func EmptyStats(typename string) Stats {
	return Stats{Typename: typename}
}
