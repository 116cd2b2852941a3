package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/inkpad/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "inkpad.json"

	// DefaultPort is the default settings server port.
	DefaultPort = 7340

	// DefaultHost is the default settings server host.
	DefaultHost = "localhost"

	// DefaultDocument is the document id snapshots are stored under.
	DefaultDocument = "default"

	// DefaultShutdownTimeout is the default graceful shutdown window.
	DefaultShutdownTimeout = "30s"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreS3     = "s3"
)

// Config represents the complete inkpad.json configuration.
type Config struct {
	// Server contains settings server configuration.
	Server ServerConfig `json:"server"`

	// Store selects and configures snapshot persistence.
	Store StoreConfig `json:"store"`

	// Locale is the default label language (BCP 47, e.g. "de").
	Locale string `json:"locale,omitempty"`

	// Document is the id the editor's snapshot is saved under.
	Document string `json:"document,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains settings server options.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ShutdownTimeout is the graceful shutdown window (e.g., "30s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`
}

// StoreConfig contains snapshot store options.
type StoreConfig struct {
	// Kind is "memory" or "s3".
	Kind string `json:"kind,omitempty"`

	// Bucket is the S3 bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every S3 object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible servers.
	Endpoint string `json:"endpoint,omitempty"`

	// PathStyle forces path-style bucket addressing.
	PathStyle bool `json:"pathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Store: StoreConfig{
			Kind:   StoreMemory,
			Prefix: "inkpad/",
		},
		Locale:   "en",
		Document: DefaultDocument,
		LogLevel: "info",
	}
}

// Default returns the configuration written by 'inkpad init'.
func Default() *Config {
	return New()
}

// Load reads configuration from the specified directory.
// It looks for inkpad.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E302").
				WithDetail("No inkpad.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'inkpad init' to write a default configuration")
		}
		return nil, errors.New("E301").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E301").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E301").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E301").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Store.Kind == "" {
		c.Store.Kind = StoreMemory
	}
	if c.Document == "" {
		c.Document = DefaultDocument
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E301").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return errors.New("E301").
			WithDetail("server.shutdownTimeout: " + err.Error()).
			WithSuggestion(`Use a Go duration such as "30s"`)
	}
	switch c.Store.Kind {
	case StoreMemory:
	case StoreS3:
		if c.Store.Bucket == "" {
			return errors.New("E301").
				WithDetail("store.bucket is required for the s3 store")
		}
	default:
		return errors.New("E301").
			WithDetail("store.kind must be \"memory\" or \"s3\", got " + strconv.Quote(c.Store.Kind))
	}
	if _, err := c.Level(); err != nil {
		return errors.New("E301").
			WithDetail("logLevel: " + err.Error())
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ShutdownTimeout returns the parsed graceful shutdown window.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

// Level returns the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
