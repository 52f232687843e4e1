package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	failOn  string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string]string{}
		f.types = map[string]string{}
	}
	f.objects[aws.ToString(in.Bucket)+"/"+key] = string(body)
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func writeRun(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"raw/cluster/cluster_t1.json":         `[{"cluster_name":"prod"}]`,
		"raw/indices/indices_t1.json":         `[]`,
		"transformed/all_transformed_r1.json": `[]`,
		"transformed/notes.txt":               "x",
	}
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestPublisher_Key(t *testing.T) {
	assert.Equal(t, "raw/cluster/a.json", New(nil, "b", "", nil).Key(filepath.Join("raw", "cluster", "a.json")))
	assert.Equal(t, "es/prod/raw/a.json", New(nil, "b", "/es/prod/", nil).Key(filepath.Join("raw", "a.json")))
}

func TestPublishRun(t *testing.T) {
	root := writeRun(t)
	fake := &fakeS3{}
	p := New(fake, "drops", "elasticsearch", nil)

	n, err := p.PublishRun(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	keys := make([]string, 0, len(fake.objects))
	for k := range fake.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		"drops/elasticsearch/raw/cluster/cluster_t1.json",
		"drops/elasticsearch/raw/indices/indices_t1.json",
		"drops/elasticsearch/transformed/all_transformed_r1.json",
		"drops/elasticsearch/transformed/notes.txt",
	}, keys)
	assert.Equal(t, `[{"cluster_name":"prod"}]`, fake.objects["drops/elasticsearch/raw/cluster/cluster_t1.json"])
	assert.Equal(t, "application/json", fake.types["elasticsearch/raw/indices/indices_t1.json"])
	assert.Equal(t, "application/octet-stream", fake.types["elasticsearch/transformed/notes.txt"])
}

func TestPublishRun_StopsOnFailure(t *testing.T) {
	root := writeRun(t)
	fake := &fakeS3{failOn: "raw/indices/indices_t1.json"}

	_, err := New(fake, "drops", "", nil).PublishRun(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Contains(t, err.Error(), "s3://drops/raw/indices/indices_t1.json")
}

func TestPublishRun_MissingRoot(t *testing.T) {
	_, err := New(&fakeS3{}, "drops", "", nil).PublishRun(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPublishRun_Cancelled(t *testing.T) {
	root := writeRun(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := New(&fakeS3{}, "drops", "", nil).PublishRun(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), Options{}, nil)
	assert.Error(t, err)
}

func TestNewS3_StaticCredentials(t *testing.T) {
	p, err := NewS3(context.Background(), Options{
		Bucket:          "drops",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		ForcePathStyle:  true,
	}, nil)
	require.NoError(t, err)
	client, ok := p.api.(*s3.Client)
	require.True(t, ok)
	assert.True(t, client.Options().UsePathStyle)
	assert.Equal(t, "http://localhost:9000", aws.ToString(client.Options().BaseEndpoint))
}
