// Package staging persists each stage's raw output as timestamped JSON
// artifacts under a run root and reads them back for transformation.
package staging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Namespace is the stage directory, relative to the run root.
type Namespace string

const (
	NamespaceCluster     Namespace = "raw/cluster"
	NamespaceIndices     Namespace = "raw/indices"
	NamespaceMappings    Namespace = "raw/mappings"
	NamespaceSettings    Namespace = "raw/settings"
	NamespaceTransformed Namespace = "transformed"
)

// timestampLayout is ISO-8601 with microseconds; colons are replaced before use.
const timestampLayout = "2006-01-02T15:04:05.000000"

// maxCollisionSuffix bounds the "_N" suffixes tried when two writes in the
// same namespace share a timestamp.
const maxCollisionSuffix = 1000

// Store writes and reads artifacts under a single run root directory.
type Store struct {
	root   string
	now    func() time.Time
	logger *slog.Logger
}

// NewStore returns a Store rooted at root. The directory is created lazily
// on first write. A nil logger discards output.
func NewStore(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		root:   root,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the clock used to name artifacts. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Root returns the run root directory.
func (s *Store) Root() string {
	return s.root
}

// Write persists records as {root}/{ns}/{typename}_{timestamp}.json and
// returns the artifact path. A single struct or map is stored as a one-element
// list so that every artifact holds a JSON array; nil is stored as [].
// Existing artifacts are never overwritten.
func (s *Store) Write(ns Namespace, typename string, records any) (string, error) {
	data, err := json.MarshalIndent(asList(records), "", "  ")
	if err != nil {
		return "", fmt.Errorf("staging: encode %s: %w", typename, err)
	}
	data = append(data, '\n')

	dir := filepath.Join(s.root, filepath.FromSlash(string(ns)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("staging: create %s: %w", dir, err)
	}

	base := typename + "_" + Timestamp(s.now())
	path, err := createExclusive(dir, base, data)
	if err != nil {
		return "", fmt.Errorf("staging: write %s: %w", typename, err)
	}
	s.logger.Debug("artifact written", "namespace", string(ns), "path", path, "bytes", len(data))
	return path, nil
}

// WriteTransformed writes the consolidated entity list for a run as
// {root}/transformed/all_transformed_{runID}.json, replacing any previous
// artifact with the same run id.
func (s *Store) WriteTransformed(runID string, entities any) (string, error) {
	if runID == "" {
		return "", errors.New("staging: run id must not be empty")
	}
	data, err := json.MarshalIndent(asList(entities), "", "  ")
	if err != nil {
		return "", fmt.Errorf("staging: encode transformed: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Join(s.root, string(NamespaceTransformed))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("staging: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, "all_transformed_"+runID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("staging: write transformed: %w", err)
	}
	return path, nil
}

// Artifacts returns every *.json file under the run root whose parent
// directory ends with ns, sorted by path. Artifacts from retried stages and
// from nested run roots are all included. A missing root yields no artifacts.
func (s *Store) Artifacts(ns Namespace) ([]string, error) {
	suffix := "/" + string(ns)
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		dir := "/" + filepath.ToSlash(filepath.Dir(path))
		if strings.HasSuffix(dir, suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("staging: discover %s: %w", ns, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadAll decodes every artifact in ns and concatenates their records in
// artifact order. Artifacts holding a single object rather than a list are
// accepted. An artifact that cannot be read or decoded is skipped and its
// error is returned alongside the records from the others.
func ReadAll[T any](s *Store, ns Namespace) ([]T, []error) {
	paths, err := s.Artifacts(ns)
	if err != nil {
		return nil, []error{err}
	}
	var (
		out  []T
		errs []error
	)
	for _, path := range paths {
		records, err := readArtifact[T](path)
		if err != nil {
			errs = append(errs, fmt.Errorf("staging: read %s: %w", path, err))
			continue
		}
		out = append(out, records...)
	}
	return out, errs
}

func readArtifact[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	}
	var many []T
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, err
	}
	return many, nil
}

// Timestamp formats t as a filesystem-safe ISO-8601 instant in UTC.
func Timestamp(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(timestampLayout), ":", "-")
}

func asList(v any) any {
	if v == nil {
		return []any{}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return []any{}
		}
		return v
	case reflect.Array:
		return v
	default:
		return []any{v}
	}
}

func createExclusive(dir, base string, data []byte) (string, error) {
	for i := 0; i < maxCollisionSuffix; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		path := filepath.Join(dir, name+".json")
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", err
		}
		return path, f.Close()
	}
	return "", fmt.Errorf("%s: too many artifacts with the same timestamp", base)
}
