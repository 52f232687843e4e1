package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dm/escat/internal/client"
	"github.com/dm/escat/internal/format"
	"github.com/dm/escat/internal/model"
	"github.com/dm/escat/internal/schema"
)

// MaxPerIndexRequests caps the per-index mapping and settings calls made in
// one run. Indices beyond the cap, in listing order, are not fetched.
const MaxPerIndexRequests = 10

// Stage typenames, used for artifact names and stats.
const (
	TypeCluster  = "cluster"
	TypeIndices  = "indices"
	TypeMappings = "mappings"
	TypeSettings = "settings"
)

// Options configures the collectors.
type Options struct {
	// IncludeSystemIndices keeps indices whose name starts with "." in the
	// indices stage. Mapping and settings collection always skips them.
	IncludeSystemIndices bool
	Owner                string
	Tags                 []string
	// Now stamps extraction_timestamp. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) timestamp() string {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(time.RFC3339)
}

func isSystemIndex(name string) bool {
	return strings.HasPrefix(name, ".")
}

func discard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// ClusterCollector builds the single cluster record from the API root, health,
// node listing and index listing. Only the root call is required.
type ClusterCollector struct {
	opts   Options
	logger *slog.Logger
}

// NewClusterCollector returns a ClusterCollector. A nil logger discards output.
func NewClusterCollector(opts Options, logger *slog.Logger) *ClusterCollector {
	return &ClusterCollector{opts: opts, logger: discard(logger)}
}

// Collect returns zero or one cluster records.
func (c *ClusterCollector) Collect(ctx context.Context, es client.ESClient) ([]model.ClusterSnapshot, model.Stats) {
	root, err := es.GetRoot(ctx)
	if err != nil {
		c.logger.Error("cluster root request failed", "url", es.BaseURL(), "error", err)
		return nil, model.EmptyStats(TypeCluster)
	}

	snap := model.ClusterSnapshot{
		ClusterName:         orUnknown(root.ClusterName),
		ClusterVersion:      orUnknown(root.Version.Number),
		ClusterHealth:       model.Unknown,
		ClusterOwner:        c.opts.Owner,
		ClusterTags:         c.opts.Tags,
		ExtractionTimestamp: c.opts.timestamp(),
	}
	if snap.ClusterOwner == "" {
		snap.ClusterOwner = "Unknown"
	}
	if snap.ClusterTags == nil {
		snap.ClusterTags = []string{}
	}
	failed := 0

	if health, err := es.GetClusterHealth(ctx); err != nil {
		failed++
		c.logger.Warn("cluster health unavailable", "error", err)
	} else {
		snap.ClusterHealth = orUnknown(health.Status)
	}

	if nodes, err := es.GetNodes(ctx); err != nil {
		failed++
		c.logger.Warn("node listing unavailable", "error", err)
	} else {
		snap.NodeCount = len(nodes)
	}

	if indices, err := es.GetIndices(ctx); err != nil {
		failed++
		c.logger.Warn("index listing unavailable, cluster totals left at zero", "error", err)
	} else {
		c.addTotals(&snap, indices)
	}

	c.logger.Info("collected cluster metadata",
		"cluster", snap.ClusterName,
		"version", snap.ClusterVersion,
		"indices", snap.TotalIndices,
		"documents", snap.TotalDocuments,
	)
	return []model.ClusterSnapshot{snap}, model.Stats{
		Typename:         TypeCluster,
		TotalRecordCount: 1,
		ChunkCount:       1,
		FailedItemCount:  failed,
	}
}

// addTotals sums over every listed index, system indices included.
func (c *ClusterCollector) addTotals(snap *model.ClusterSnapshot, indices []client.IndexInfo) {
	snap.TotalIndices = len(indices)
	for _, idx := range indices {
		docs, err := strconv.ParseInt(idx.DocsCount, 10, 64)
		if err != nil || docs < 0 {
			docs = 0
		}
		snap.TotalDocuments += docs
		if docs > 0 {
			snap.ActiveIndices++
		} else {
			snap.EmptyIndices++
		}
		size, err := format.ParseSize(idx.StoreSize)
		if err != nil {
			c.logger.Debug("unparseable store size in cluster totals", "index", idx.Index, "error", err)
		}
		snap.TotalSizeBytes += size
	}
}

// IndexCollector lists indices with their document count, size and creation date.
type IndexCollector struct {
	opts   Options
	logger *slog.Logger
}

// NewIndexCollector returns an IndexCollector. A nil logger discards output.
func NewIndexCollector(opts Options, logger *slog.Logger) *IndexCollector {
	return &IndexCollector{opts: opts, logger: discard(logger)}
}

// Collect returns one record per retained index in listing order.
func (c *IndexCollector) Collect(ctx context.Context, es client.ESClient) ([]model.IndexSnapshot, model.Stats) {
	indices, err := es.GetIndices(ctx)
	if err != nil {
		c.logger.Error("index listing request failed", "url", es.BaseURL(), "error", err)
		return nil, model.EmptyStats(TypeIndices)
	}

	ts := c.opts.timestamp()
	out := make([]model.IndexSnapshot, 0, len(indices))
	failed := 0
	for _, idx := range indices {
		name := orUnknown(idx.Index)
		if !c.opts.IncludeSystemIndices && isSystemIndex(name) {
			c.logger.Debug("skipping system index", "index", name)
			continue
		}

		docs, err := strconv.ParseInt(strings.TrimSpace(idx.DocsCount), 10, 64)
		if err != nil {
			if idx.DocsCount != "" {
				failed++
				c.logger.Warn("non-numeric docs.count, using 0", "index", name, "value", idx.DocsCount)
			}
			docs = 0
		}
		size, err := format.ParseSize(idx.StoreSize)
		if err != nil {
			failed++
			c.logger.Warn("unparseable store.size, using 0", "index", name, "error", err)
		}

		out = append(out, model.IndexSnapshot{
			IndexName:           name,
			DocumentCount:       docs,
			SizeBytes:           size,
			CreationDate:        orUnknown(idx.CreationDate),
			ExtractionTimestamp: ts,
		})
	}

	c.logger.Info("collected indices", "listed", len(indices), "retained", len(out))
	return out, model.Stats{
		Typename:         TypeIndices,
		TotalRecordCount: len(out),
		ChunkCount:       1,
		FailedItemCount:  failed,
	}
}

// MappingCollector fetches and flattens the mapping of each non-system index,
// up to MaxPerIndexRequests indices.
type MappingCollector struct {
	opts   Options
	logger *slog.Logger
}

// NewMappingCollector returns a MappingCollector. A nil logger discards output.
func NewMappingCollector(opts Options, logger *slog.Logger) *MappingCollector {
	return &MappingCollector{opts: opts, logger: discard(logger)}
}

// Collect returns one mapping summary per index fetched successfully.
func (c *MappingCollector) Collect(ctx context.Context, es client.ESClient) ([]model.IndexMapping, model.Stats) {
	names, ok := listTargets(ctx, es, c.logger, TypeMappings)
	if !ok {
		return nil, model.EmptyStats(TypeMappings)
	}

	ts := c.opts.timestamp()
	out := make([]model.IndexMapping, 0, len(names))
	failed := 0
	for _, name := range names {
		resp, err := es.GetMapping(ctx, name)
		if err != nil {
			failed++
			c.logger.Warn("failed to fetch mapping", "index", name, "error", err)
			continue
		}
		entry, found := (*resp)[name]
		if !found {
			failed++
			c.logger.Warn("mapping response does not contain the index", "index", name)
			continue
		}
		fields := schema.Flatten(entry.Mappings.Properties)
		out = append(out, model.IndexMapping{
			IndexName:           name,
			FieldCount:          len(fields),
			Fields:              fields,
			ExtractionTimestamp: ts,
		})
	}

	c.logger.Info("collected mappings", "indices", len(out), "failed", failed)
	return out, model.Stats{
		Typename:         TypeMappings,
		TotalRecordCount: len(out),
		ChunkCount:       1,
		FailedItemCount:  failed,
	}
}

// SettingsCollector fetches the raw settings of each non-system index, up to
// MaxPerIndexRequests indices.
type SettingsCollector struct {
	opts   Options
	logger *slog.Logger
}

// NewSettingsCollector returns a SettingsCollector. A nil logger discards output.
func NewSettingsCollector(opts Options, logger *slog.Logger) *SettingsCollector {
	return &SettingsCollector{opts: opts, logger: discard(logger)}
}

// Collect returns one settings record per index fetched successfully.
func (c *SettingsCollector) Collect(ctx context.Context, es client.ESClient) ([]model.IndexSettings, model.Stats) {
	names, ok := listTargets(ctx, es, c.logger, TypeSettings)
	if !ok {
		return nil, model.EmptyStats(TypeSettings)
	}

	ts := c.opts.timestamp()
	out := make([]model.IndexSettings, 0, len(names))
	failed := 0
	for _, name := range names {
		resp, err := es.GetSettings(ctx, name)
		if err != nil {
			failed++
			c.logger.Warn("failed to fetch settings", "index", name, "error", err)
			continue
		}
		entry, found := (*resp)[name]
		if !found {
			failed++
			c.logger.Warn("settings response does not contain the index", "index", name)
			continue
		}
		settings := entry.Settings
		if settings == nil {
			settings = map[string]any{}
		}
		out = append(out, model.IndexSettings{
			IndexName:           name,
			Settings:            settings,
			ExtractionTimestamp: ts,
		})
	}

	c.logger.Info("collected settings", "indices", len(out), "failed", failed)
	return out, model.Stats{
		Typename:         TypeSettings,
		TotalRecordCount: len(out),
		ChunkCount:       1,
		FailedItemCount:  failed,
	}
}

// listTargets lists index names, drops system indices and applies the
// per-index request cap. ok is false when the listing itself failed.
func listTargets(ctx context.Context, es client.ESClient, logger *slog.Logger, stage string) (names []string, ok bool) {
	all, err := es.ListIndexNames(ctx)
	if err != nil {
		logger.Error("index listing request failed", "stage", stage, "url", es.BaseURL(), "error", err)
		return nil, false
	}
	for _, name := range all {
		if name == "" || isSystemIndex(name) {
			continue
		}
		names = append(names, name)
	}
	if len(names) > MaxPerIndexRequests {
		logger.Debug("per-index request cap reached", "stage", stage, "eligible", len(names), "fetched", MaxPerIndexRequests)
		names = names[:MaxPerIndexRequests]
	}
	return names, true
}

func orUnknown(s string) string {
	if s == "" {
		return model.Unknown
	}
	return s
}
