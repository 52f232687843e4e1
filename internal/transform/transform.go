// Package transform maps staged cluster, index and mapping records into
// catalog entities with hierarchical qualified names.
package transform

import (
	"context"
	"log/slog"

	"github.com/dm/escat/internal/model"
	"github.com/dm/escat/internal/staging"
)

// EntityObserver is told how many entities of each type a transform produced.
type EntityObserver interface {
	ObserveEntities(typ model.EntityType, n int)
}

// Transformer reads a run's staged artifacts and emits catalog entities.
type Transformer struct {
	store    *staging.Store
	logger   *slog.Logger
	observer EntityObserver
}

// New returns a Transformer reading from store. A nil logger discards output.
func New(store *staging.Store, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transformer{store: store, logger: logger}
}

// SetObserver registers an optional entity-count observer.
func (t *Transformer) SetObserver(o EntityObserver) {
	t.observer = o
}

// ClusterQualifiedName returns "{connection}/{cluster}".
func ClusterQualifiedName(connection, cluster string) string {
	return connection + "/" + cluster
}

// IndexQualifiedName returns "{connection}/{index}".
func IndexQualifiedName(connection, index string) string {
	return connection + "/" + index
}

// FieldQualifiedName returns "{connection}/{index}/{field}". The field's
// dotted path is kept as is.
func FieldQualifiedName(connection, index, field string) string {
	return connection + "/" + index + "/" + field
}

// Transform returns all CLUSTER, then INDEX, then FIELD entities found in
// the store. Unreadable artifacts are logged and skipped.
func (t *Transformer) Transform(ctx context.Context, connectionQN string) []model.CatalogEntity {
	clusters := readStage[model.ClusterSnapshot](t, staging.NamespaceCluster)
	indices := readStage[model.IndexSnapshot](t, staging.NamespaceIndices)
	mappings := readStage[model.IndexMapping](t, staging.NamespaceMappings)

	out := make([]model.CatalogEntity, 0, len(clusters)+len(indices))
	for _, c := range clusters {
		out = append(out, clusterEntity(connectionQN, c))
	}
	known := make(map[string]bool, len(indices))
	for _, idx := range indices {
		known[idx.IndexName] = true
		out = append(out, indexEntity(connectionQN, idx))
	}

	warned := make(map[string]bool)
	fields := 0
	for _, m := range mappings {
		if !known[m.IndexName] && !warned[m.IndexName] {
			warned[m.IndexName] = true
			t.logger.Warn("fields emitted for index without an index record", "index", m.IndexName)
		}
		for _, f := range m.Fields {
			out = append(out, fieldEntity(connectionQN, m, f))
			fields++
		}
	}

	if t.observer != nil {
		t.observer.ObserveEntities(model.EntityCluster, len(clusters))
		t.observer.ObserveEntities(model.EntityIndex, len(indices))
		t.observer.ObserveEntities(model.EntityField, fields)
	}
	t.logger.Info("transformed entities",
		"clusters", len(clusters),
		"indices", len(indices),
		"fields", fields,
	)
	return out
}

// Run transforms the store's contents and writes the consolidated artifact
// for runID. Only the final write can fail.
func (t *Transformer) Run(ctx context.Context, connectionQN, runID string) (string, model.Stats, error) {
	entities := t.Transform(ctx, connectionQN)
	path, err := t.store.WriteTransformed(runID, entities)
	if err != nil {
		return "", model.EmptyStats("transform"), err
	}
	return path, model.Stats{
		Typename:         "transform",
		TotalRecordCount: len(entities),
		ChunkCount:       1,
	}, nil
}

func readStage[T any](t *Transformer, ns staging.Namespace) []T {
	records, errs := staging.ReadAll[T](t.store, ns)
	for _, err := range errs {
		t.logger.Warn("skipping staged artifact", "namespace", string(ns), "error", err)
	}
	return records
}

func clusterEntity(conn string, c model.ClusterSnapshot) model.CatalogEntity {
	tags := c.ClusterTags
	if tags == nil {
		tags = []string{}
	}
	return model.CatalogEntity{
		TypeName: model.EntityCluster,
		Attributes: model.ClusterAttributes{
			BaseAttributes: model.BaseAttributes{
				Name:                    c.ClusterName,
				QualifiedName:           ClusterQualifiedName(conn, c.ClusterName),
				ConnectionQualifiedName: conn,
			},
			ClusterName:    c.ClusterName,
			ClusterVersion: c.ClusterVersion,
			ClusterStatus:  c.ClusterHealth,
			NumberOfNodes:  c.NodeCount,
			TotalIndices:   c.TotalIndices,
			TotalDocuments: c.TotalDocuments,
		},
		CustomAttributes: model.ClusterCustomAttributes{
			ClusterOwner:   c.ClusterOwner,
			ClusterTags:    tags,
			TotalSizeBytes: c.TotalSizeBytes,
			ActiveIndices:  c.ActiveIndices,
			EmptyIndices:   c.EmptyIndices,
		},
		Status: model.StatusActive,
	}
}

func indexEntity(conn string, idx model.IndexSnapshot) model.CatalogEntity {
	return model.CatalogEntity{
		TypeName: model.EntityIndex,
		Attributes: model.IndexAttributes{
			BaseAttributes: model.BaseAttributes{
				Name:                    idx.IndexName,
				QualifiedName:           IndexQualifiedName(conn, idx.IndexName),
				ConnectionQualifiedName: conn,
			},
			IndexName:     idx.IndexName,
			DocumentCount: idx.DocumentCount,
			SizeBytes:     idx.SizeBytes,
			CreationDate:  idx.CreationDate,
		},
		CustomAttributes: model.IndexCustomAttributes{
			ExtractionTimestamp: idx.ExtractionTimestamp,
		},
		Status: model.StatusActive,
	}
}

func fieldEntity(conn string, m model.IndexMapping, f model.FieldDescriptor) model.CatalogEntity {
	return model.CatalogEntity{
		TypeName: model.EntityField,
		Attributes: model.FieldAttributes{
			BaseAttributes: model.BaseAttributes{
				Name:                    f.FieldName,
				QualifiedName:           FieldQualifiedName(conn, m.IndexName, f.FieldName),
				ConnectionQualifiedName: conn,
			},
			IndexQualifiedName: IndexQualifiedName(conn, m.IndexName),
			FieldName:          f.FieldName,
			FieldType:          f.FieldType,
			Analyzer:           f.Analyzer,
			Indexed:            f.Indexed,
			Stored:             f.Stored,
			Nested:             f.Nested,
			HasMultiFields:     f.HasMultiFields,
		},
		CustomAttributes: model.FieldCustomAttributes{
			IndexName:           m.IndexName,
			FieldCount:          m.FieldCount,
			ExtractionTimestamp: m.ExtractionTimestamp,
		},
		Status: model.StatusActive,
	}
}
