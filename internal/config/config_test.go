package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/escat/internal/client"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, "http://localhost:9200", cfg.Connection.URL)
	assert.Equal(t, AuthNone, cfg.Connection.Auth.Type)
	assert.True(t, cfg.Connection.SSLVerify)
	assert.Equal(t, 30*time.Second, cfg.Connection.Timeout)
	assert.Zero(t, cfg.Connection.RequestsPerSecond)
	assert.False(t, cfg.Extraction.IncludeSystemIndices)
	assert.Equal(t, DefaultConnectionQualifiedName, cfg.Extraction.ConnectionQualifiedName)
	assert.Equal(t, "./output", cfg.Extraction.OutputPath)
	assert.Equal(t, "Unknown", cfg.Extraction.Owner)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr string
	}{
		{"valid", func(c *Configuration) {}, ""},
		{"empty url", func(c *Configuration) { c.Connection.URL = "" }, "connection.url"},
		{"bad scheme", func(c *Configuration) { c.Connection.URL = "ftp://es" }, "http:// or https://"},
		{"unknown auth", func(c *Configuration) { c.Connection.Auth.Type = "kerberos" }, "auth.type"},
		{"empty auth type", func(c *Configuration) { c.Connection.Auth.Type = "" }, ""},
		{"negative rps", func(c *Configuration) { c.Connection.RequestsPerSecond = -1 }, "requests_per_second"},
		{"empty connection qn", func(c *Configuration) { c.Extraction.ConnectionQualifiedName = "" }, "connection_qualified_name"},
		{"trailing slash qn", func(c *Configuration) { c.Extraction.ConnectionQualifiedName = "default/es/" }, "end with"},
		{"empty output", func(c *Configuration) { c.Extraction.OutputPath = "" }, "output_path"},
		{"bad log level", func(c *Configuration) { c.Logging.Level = "TRACE" }, "logging.level"},
		{"upper log level", func(c *Configuration) { c.Logging.Level = "DEBUG" }, ""},
		{"bad log format", func(c *Configuration) { c.Logging.Format = "xml" }, "logging.format"},
		{"publish prefix without bucket", func(c *Configuration) { c.Publish.Prefix = "x" }, "publish.bucket"},
		{"half static credentials", func(c *Configuration) {
			c.Publish.Bucket = "b"
			c.Publish.AccessKeyID = "AKIA"
		}, "set together"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
connection:
  url: https://es.internal:9200
  auth:
    type: basic
    username: elastic
    password: changeme
  ssl_verify: false
  timeout: 45s
  requests_per_second: 12.5
  burst: 3
extraction:
  include_system_indices: true
  connection_qualified_name: default/es/1700000000
  output_path: /tmp/escat
  owner: search-team
  tags: [prod, eu]
logging:
  level: debug
  format: json
metrics:
  listen: ":9102"
publish:
  bucket: drops
  prefix: es
`
	path := filepath.Join(t.TempDir(), "escat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromFile(path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://es.internal:9200", cfg.Connection.URL)
	assert.Equal(t, AuthBasic, cfg.Connection.Auth.Type)
	assert.False(t, cfg.Connection.SSLVerify)
	assert.Equal(t, 45*time.Second, cfg.Connection.Timeout)
	assert.Equal(t, 12.5, cfg.Connection.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Connection.Burst)
	assert.True(t, cfg.Extraction.IncludeSystemIndices)
	assert.Equal(t, "default/es/1700000000", cfg.Extraction.ConnectionQualifiedName)
	assert.Equal(t, []string{"prod", "eu"}, cfg.Extraction.Tags)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9102", cfg.Metrics.Listen)
	assert.Equal(t, "drops", cfg.Publish.Bucket)
}

func TestLoadFromFile_KeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extraction:\n  owner: ops\n"), 0600))

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, "ops", cfg.Extraction.Owner)
	assert.Equal(t, "http://localhost:9200", cfg.Connection.URL)
	assert.Equal(t, "./output", cfg.Extraction.OutputPath)
}

func TestLoadFromFile_Errors(t *testing.T) {
	cfg := NewDefault()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection: [unclosed"), 0600))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ESCAT_URL", "https://env:9200")
	t.Setenv("ESCAT_AUTH_TYPE", "BEARER")
	t.Setenv("ESCAT_TOKEN", "tok")
	t.Setenv("ESCAT_SSL_VERIFY", "false")
	t.Setenv("ESCAT_TIMEOUT", "5s")
	t.Setenv("ESCAT_REQUESTS_PER_SECOND", "not-a-number")
	t.Setenv("ESCAT_INCLUDE_SYSTEM_INDICES", "TRUE")
	t.Setenv("ESCAT_OUTPUT_PATH", "/data/out")
	t.Setenv("ESCAT_TAGS", "a, b,,c")
	t.Setenv("ESCAT_LOG_LEVEL", "warn")

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "https://env:9200", cfg.Connection.URL)
	assert.Equal(t, AuthBearer, cfg.Connection.Auth.Type)
	assert.Equal(t, "tok", cfg.Connection.Auth.Token)
	assert.False(t, cfg.Connection.SSLVerify)
	assert.Equal(t, 5*time.Second, cfg.Connection.Timeout)
	assert.Zero(t, cfg.Connection.RequestsPerSecond, "invalid number is ignored")
	assert.True(t, cfg.Extraction.IncludeSystemIndices)
	assert.Equal(t, "/data/out", cfg.Extraction.OutputPath)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Extraction.Tags)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	cfg := NewDefault()
	cfg.Extraction.Owner = "ops"
	cfg.Connection.Timeout = 10 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "escat.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	loaded := &Configuration{}
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "ops", loaded.Extraction.Owner)
	assert.Equal(t, 10*time.Second, loaded.Connection.Timeout)
}

func TestClientAuth(t *testing.T) {
	tests := []struct {
		name string
		in   AuthConfig
		want client.Auth
	}{
		{"none", AuthConfig{Type: AuthNone, Username: "ignored"}, client.NoAuth{}},
		{"empty type", AuthConfig{}, client.NoAuth{}},
		{"basic", AuthConfig{Type: AuthBasic, Username: "u", Password: "p"}, client.BasicAuth{Username: "u", Password: "p"}},
		{"basic without credentials", AuthConfig{Type: AuthBasic}, client.NoAuth{}},
		{"api key", AuthConfig{Type: AuthAPIKey, APIKeyID: "id", APIKey: "k"}, client.APIKeyAuth{ID: "id", Key: "k"}},
		{"api key missing id", AuthConfig{Type: AuthAPIKey, APIKey: "k"}, client.NoAuth{}},
		{"bearer", AuthConfig{Type: AuthBearer, Token: "t"}, client.BearerAuth{Token: "t"}},
		{"bearer without token", AuthConfig{Type: AuthBearer}, client.NoAuth{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.ClientAuth())
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := NewDefault()
	cfg.Connection.SSLVerify = false
	cfg.Connection.RequestsPerSecond = 5
	cfg.Connection.Auth = AuthConfig{Type: AuthBearer, Token: "t"}

	cc := cfg.ClientConfig()
	assert.Equal(t, "http://localhost:9200", cc.BaseURL)
	assert.True(t, cc.InsecureSkipVerify)
	assert.Equal(t, 5.0, cc.RequestsPerSecond)
	assert.Equal(t, client.BearerAuth{Token: "t"}, cc.Auth)
}
