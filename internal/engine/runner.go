package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dm/escat/internal/client"
	"github.com/dm/escat/internal/model"
	"github.com/dm/escat/internal/staging"
	"github.com/dm/escat/internal/transform"
)

// Stage identifies one unit of pipeline work.
type Stage string

const (
	StageCluster   Stage = TypeCluster
	StageIndices   Stage = TypeIndices
	StageMappings  Stage = TypeMappings
	StageSettings  Stage = TypeSettings
	StageTransform Stage = "transform"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageCluster, StageIndices, StageMappings, StageSettings, StageTransform}

// ParseStage converts a stage name into a Stage.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// StageRecorder receives the outcome of every completed stage.
type StageRecorder interface {
	ObserveStage(stage string, stats model.Stats, elapsed time.Duration)
}

// Event reports stage progress. Started events carry only Stage.
type Event struct {
	Stage   Stage
	Done    bool
	Stats   model.Stats
	Path    string
	Elapsed time.Duration
	Err     error
}

// StageResult is the outcome of a single stage.
type StageResult struct {
	Stage   Stage
	Stats   model.Stats
	Path    string
	Elapsed time.Duration
}

// RunResult is the outcome of a full run.
type RunResult struct {
	RunID           string
	Stages          []StageResult
	TransformedPath string
}

// Entities returns the number of transformed entities.
func (r *RunResult) Entities() int {
	for _, s := range r.Stages {
		if s.Stage == StageTransform {
			return s.Stats.TotalRecordCount
		}
	}
	return 0
}

// RunnerConfig wires the Runner's collaborators.
type RunnerConfig struct {
	Client                  client.ESClient
	Store                   *staging.Store
	Transformer             *transform.Transformer
	Options                 Options
	ConnectionQualifiedName string
	RunID                   string
	Logger                  *slog.Logger
	// Recorder and Progress are optional.
	Recorder StageRecorder
	Progress func(Event)
}

// Runner executes stages one at a time against a single run root.
type Runner struct {
	cfg    RunnerConfig
	logger *slog.Logger

	cluster  *ClusterCollector
	indices  *IndexCollector
	mappings *MappingCollector
	settings *SettingsCollector
}

// NewRunner constructs a Runner. Client, Store and Transformer are required.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := discard(cfg.Logger)
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		cluster:  NewClusterCollector(cfg.Options, logger.With("stage", TypeCluster)),
		indices:  NewIndexCollector(cfg.Options, logger.With("stage", TypeIndices)),
		mappings: NewMappingCollector(cfg.Options, logger.With("stage", TypeMappings)),
		settings: NewSettingsCollector(cfg.Options, logger.With("stage", TypeSettings)),
	}
}

// Run executes every collector stage in order and then the transform.
// Only staging I/O failures and cancellation abort the run.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	res := &RunResult{RunID: r.cfg.RunID}
	for _, st := range Stages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sr, err := r.RunStage(ctx, st)
		if err != nil {
			return res, err
		}
		res.Stages = append(res.Stages, sr)
		if st == StageTransform {
			res.TransformedPath = sr.Path
		}
	}
	r.logger.Info("run complete",
		"run_id", res.RunID,
		"entities", res.Entities(),
		"output", res.TransformedPath,
	)
	return res, nil
}

// RunStage executes one stage. Collector stages write an artifact only when
// their primary listing succeeded.
func (r *Runner) RunStage(ctx context.Context, stage Stage) (StageResult, error) {
	r.emit(Event{Stage: stage})
	start := time.Now()

	var (
		stats   model.Stats
		records any
		path    string
		err     error
	)
	switch stage {
	case StageCluster:
		records, stats = r.cluster.Collect(ctx, r.cfg.Client)
	case StageIndices:
		records, stats = r.indices.Collect(ctx, r.cfg.Client)
	case StageMappings:
		records, stats = r.mappings.Collect(ctx, r.cfg.Client)
	case StageSettings:
		records, stats = r.settings.Collect(ctx, r.cfg.Client)
	case StageTransform:
		path, stats, err = r.cfg.Transformer.Run(ctx, r.cfg.ConnectionQualifiedName, r.cfg.RunID)
	default:
		return StageResult{}, fmt.Errorf("RunStage: unknown stage %q", stage)
	}

	if err == nil && stage != StageTransform {
		if stats.ChunkCount > 0 {
			path, err = r.cfg.Store.Write(namespaceFor(stage), string(stage), records)
		} else {
			r.logger.Warn("stage produced no records", "stage", string(stage))
		}
	}

	elapsed := time.Since(start)
	r.emit(Event{Stage: stage, Done: true, Stats: stats, Path: path, Elapsed: elapsed, Err: err})
	if err != nil {
		return StageResult{}, fmt.Errorf("RunStage %s: %w", stage, err)
	}
	if r.cfg.Recorder != nil {
		r.cfg.Recorder.ObserveStage(string(stage), stats, elapsed)
	}
	r.logger.Info("stage complete",
		"stage", string(stage),
		"records", stats.TotalRecordCount,
		"failed_items", stats.FailedItemCount,
		"path", path,
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return StageResult{Stage: stage, Stats: stats, Path: path, Elapsed: elapsed}, nil
}

func (r *Runner) emit(ev Event) {
	if r.cfg.Progress != nil {
		r.cfg.Progress(ev)
	}
}

func namespaceFor(stage Stage) staging.Namespace {
	switch stage {
	case StageCluster:
		return staging.NamespaceCluster
	case StageIndices:
		return staging.NamespaceIndices
	case StageMappings:
		return staging.NamespaceMappings
	default:
		return staging.NamespaceSettings
	}
}
