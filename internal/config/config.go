package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/dm/escat/internal/client"
)

// Auth types accepted in connection.auth.type.
const (
	AuthNone   = "none"
	AuthBasic  = "basic"
	AuthAPIKey = "api_key"
	AuthBearer = "bearer"
)

// DefaultConnectionQualifiedName is used when none is configured.
const DefaultConnectionQualifiedName = "default/atlan-connectors/elasticsearch"

// Configuration is the complete escat configuration.
type Configuration struct {
	Connection ConnectionConfig `yaml:"connection"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ConnectionConfig describes how to reach the cluster.
type ConnectionConfig struct {
	URL               string        `yaml:"url"`
	Auth              AuthConfig    `yaml:"auth"`
	SSLVerify         bool          `yaml:"ssl_verify"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// AuthConfig is the credential record. Type selects which fields apply.
type AuthConfig struct {
	Type     string `yaml:"type"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	APIKeyID string `yaml:"api_key_id"`
	APIKey   string `yaml:"api_key"`
	Token    string `yaml:"token"`
}

// ExtractionConfig holds the options passed to the collectors and transformer.
type ExtractionConfig struct {
	IncludeSystemIndices    bool     `yaml:"include_system_indices"`
	ConnectionQualifiedName string   `yaml:"connection_qualified_name"`
	OutputPath              string   `yaml:"output_path"`
	Owner                   string   `yaml:"owner"`
	Tags                    []string `yaml:"tags"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// PublishConfig enables upload of the run tree to S3 when Bucket is set.
type PublishConfig struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// NewDefault returns a configuration with default values.
func NewDefault() *Configuration {
	return &Configuration{
		Connection: ConnectionConfig{
			URL:       "http://localhost:9200",
			Auth:      AuthConfig{Type: AuthNone},
			SSLVerify: true,
			Timeout:   30 * time.Second,
		},
		Extraction: ExtractionConfig{
			ConnectionQualifiedName: DefaultConnectionQualifiedName,
			OutputPath:              "./output",
			Owner:                   "Unknown",
			Tags:                    []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile merges a YAML file into the configuration.
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// LoadFromEnv applies ESCAT_* environment overrides. Unparseable numeric or
// duration values are ignored.
func (c *Configuration) LoadFromEnv() error {
	// Connection
	if val := os.Getenv("ESCAT_URL"); val != "" {
		c.Connection.URL = val
	}
	if val := os.Getenv("ESCAT_AUTH_TYPE"); val != "" {
		c.Connection.Auth.Type = strings.ToLower(val)
	}
	if val := os.Getenv("ESCAT_USERNAME"); val != "" {
		c.Connection.Auth.Username = val
	}
	if val := os.Getenv("ESCAT_PASSWORD"); val != "" {
		c.Connection.Auth.Password = val
	}
	if val := os.Getenv("ESCAT_API_KEY_ID"); val != "" {
		c.Connection.Auth.APIKeyID = val
	}
	if val := os.Getenv("ESCAT_API_KEY"); val != "" {
		c.Connection.Auth.APIKey = val
	}
	if val := os.Getenv("ESCAT_TOKEN"); val != "" {
		c.Connection.Auth.Token = val
	}
	if val := os.Getenv("ESCAT_SSL_VERIFY"); val != "" {
		c.Connection.SSLVerify = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("ESCAT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Connection.Timeout = d
		}
	}
	if val := os.Getenv("ESCAT_REQUESTS_PER_SECOND"); val != "" {
		if rps, err := strconv.ParseFloat(val, 64); err == nil {
			c.Connection.RequestsPerSecond = rps
		}
	}

	// Extraction
	if val := os.Getenv("ESCAT_INCLUDE_SYSTEM_INDICES"); val != "" {
		c.Extraction.IncludeSystemIndices = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("ESCAT_CONNECTION_QUALIFIED_NAME"); val != "" {
		c.Extraction.ConnectionQualifiedName = val
	}
	if val := os.Getenv("ESCAT_OUTPUT_PATH"); val != "" {
		c.Extraction.OutputPath = val
	}
	if val := os.Getenv("ESCAT_OWNER"); val != "" {
		c.Extraction.Owner = val
	}
	if val := os.Getenv("ESCAT_TAGS"); val != "" {
		c.Extraction.Tags = splitList(val)
	}

	// Logging and metrics
	if val := os.Getenv("ESCAT_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("ESCAT_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
	if val := os.Getenv("ESCAT_METRICS_LISTEN"); val != "" {
		c.Metrics.Listen = val
	}

	// Publish
	if val := os.Getenv("ESCAT_PUBLISH_BUCKET"); val != "" {
		c.Publish.Bucket = val
	}
	if val := os.Getenv("ESCAT_PUBLISH_PREFIX"); val != "" {
		c.Publish.Prefix = val
	}
	if val := os.Getenv("ESCAT_PUBLISH_REGION"); val != "" {
		c.Publish.Region = val
	}
	if val := os.Getenv("ESCAT_PUBLISH_ENDPOINT"); val != "" {
		c.Publish.Endpoint = val
	}

	return nil
}

// SaveToFile writes the configuration as YAML.
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Configuration) Validate() error {
	if c.Connection.URL == "" {
		return fmt.Errorf("connection.url must not be empty")
	}
	if !strings.HasPrefix(c.Connection.URL, "http://") && !strings.HasPrefix(c.Connection.URL, "https://") {
		return fmt.Errorf("connection.url must start with http:// or https://: %s", c.Connection.URL)
	}
	switch c.Connection.Auth.Type {
	case "", AuthNone, AuthBasic, AuthAPIKey, AuthBearer:
	default:
		return fmt.Errorf("invalid connection.auth.type: %s (must be one of: %s)",
			c.Connection.Auth.Type, strings.Join([]string{AuthNone, AuthBasic, AuthAPIKey, AuthBearer}, ", "))
	}
	if c.Connection.Timeout < 0 {
		return fmt.Errorf("connection.timeout must not be negative")
	}
	if c.Connection.RequestsPerSecond < 0 {
		return fmt.Errorf("connection.requests_per_second must not be negative")
	}
	if c.Extraction.ConnectionQualifiedName == "" {
		return fmt.Errorf("extraction.connection_qualified_name must not be empty")
	}
	if strings.HasSuffix(c.Extraction.ConnectionQualifiedName, "/") {
		return fmt.Errorf("extraction.connection_qualified_name must not end with '/'")
	}
	if c.Extraction.OutputPath == "" {
		return fmt.Errorf("extraction.output_path must not be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if strings.ToLower(c.Logging.Level) == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("invalid logging.level: %s (must be one of: %s)",
			c.Logging.Level, strings.Join(validLevels, ", "))
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		return fmt.Errorf("invalid logging.format: %s (must be text or json)", c.Logging.Format)
	}

	if c.Publish.Bucket == "" && (c.Publish.Prefix != "" || c.Publish.Endpoint != "") {
		return fmt.Errorf("publish.bucket is required when publish options are set")
	}
	if (c.Publish.AccessKeyID == "") != (c.Publish.SecretAccessKey == "") {
		return fmt.Errorf("publish.access_key_id and publish.secret_access_key must be set together")
	}
	return nil
}

// ClientAuth converts the credential record into the client's Auth variant.
// Basic and API-key credentials with missing parts degrade to no auth.
func (a AuthConfig) ClientAuth() client.Auth {
	switch a.Type {
	case AuthBasic:
		if a.Username == "" && a.Password == "" {
			return client.NoAuth{}
		}
		return client.BasicAuth{Username: a.Username, Password: a.Password}
	case AuthAPIKey:
		if a.APIKeyID == "" || a.APIKey == "" {
			return client.NoAuth{}
		}
		return client.APIKeyAuth{ID: a.APIKeyID, Key: a.APIKey}
	case AuthBearer:
		if a.Token == "" {
			return client.NoAuth{}
		}
		return client.BearerAuth{Token: a.Token}
	default:
		return client.NoAuth{}
	}
}

// ClientConfig builds the HTTP client configuration.
func (c *Configuration) ClientConfig() client.ClientConfig {
	return client.ClientConfig{
		BaseURL:            c.Connection.URL,
		Auth:               c.Connection.Auth.ClientAuth(),
		InsecureSkipVerify: !c.Connection.SSLVerify,
		RequestTimeout:     c.Connection.Timeout,
		RequestsPerSecond:  c.Connection.RequestsPerSecond,
		Burst:              c.Connection.Burst,
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
