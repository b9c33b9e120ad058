package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nextroute-dev/nextroute/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "nextroute.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3999

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultBuildDir is the framework's build output directory.
	DefaultBuildDir = ".next"

	// DefaultOutputDir is the directory the packager writes into.
	DefaultOutputDir = ".nextroute/output"

	// DescriptionFileName is the build description document the framework
	// writes into its build directory.
	DescriptionFileName = "build-description.json"

	// RoutesFileName is the routing configuration document the packager
	// writes into the output directory.
	RoutesFileName = "config.json"
)

// Config represents the complete nextroute.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Paths contains path configuration for build input and output.
	Paths PathsConfig `json:"paths,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Offload contains static asset offload configuration.
	Offload OffloadConfig `json:"offload,omitempty"`

	// Telemetry contains metrics and tracing configuration.
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration for build input and output.
type PathsConfig struct {
	// Build is the framework's build output directory.
	Build string `json:"build,omitempty"`

	// Output is the directory the packager writes the routing configuration
	// and copied assets into.
	Output string `json:"output,omitempty"`

	// Static is the project's public static files directory.
	Static string `json:"static,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch contains paths to watch for changes, relative to the project
	// root. Defaults to the build directory.
	Watch []string `json:"watch,omitempty"`

	// HotReload pushes a reload event to connected clients when the routing
	// configuration is recompiled.
	HotReload bool `json:"hotReload,omitempty"`
}

// OffloadConfig contains static asset offload settings. When enabled, the
// packager uploads immutable framework assets to an object-storage bucket
// instead of bundling them in the output directory.
type OffloadConfig struct {
	// Enabled controls whether assets are offloaded.
	Enabled bool `json:"enabled,omitempty"`

	// Bucket is the object-storage bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every uploaded object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the bucket's region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the storage endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty"`

	// UsePathStyle forces path-style bucket addressing. Required by most
	// S3-compatible stores.
	UsePathStyle bool `json:"usePathStyle,omitempty"`

	// PublicURL is the base URL the uploaded assets are served from. When
	// empty, URLs are derived from the endpoint and bucket.
	PublicURL string `json:"publicUrl,omitempty"`
}

// TelemetryConfig contains metrics and tracing settings.
type TelemetryConfig struct {
	// Metrics exposes a Prometheus endpoint on the dev server.
	Metrics bool `json:"metrics,omitempty"`

	// Tracing enables span emission around compile and package operations.
	Tracing bool `json:"tracing,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Paths: PathsConfig{
			Build:  DefaultBuildDir,
			Output: DefaultOutputDir,
			Static: "public",
		},
		Dev: DevConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			HotReload: true,
			Watch:     []string{DefaultBuildDir},
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for nextroute.json in the directory; a missing file is not an
// error, the defaults apply.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	cfg, err := LoadFile(configPath)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Code == "N101" && os.IsNotExist(e.Wrapped) {
			cfg = New()
			cfg.configPath = configPath
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("N101").
			WithDetail("Cannot read %s", path).
			Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("N101").
			WithDetail("Cannot parse %s: %s", path, err).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
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
		return errors.New("N102").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("N102").
			WithDetail("Cannot write %s", path).
			Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// BuildDir returns the framework build directory resolved against the
// project root.
func (c *Config) BuildDir() string {
	return c.resolve(c.Paths.Build)
}

// OutputDir returns the packager output directory resolved against the
// project root.
func (c *Config) OutputDir() string {
	return c.resolve(c.Paths.Output)
}

// StaticDir returns the public static files directory resolved against the
// project root.
func (c *Config) StaticDir() string {
	return c.resolve(c.Paths.Static)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir() == "" {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Paths.Build == "" {
		c.Paths.Build = DefaultBuildDir
	}
	if c.Paths.Output == "" {
		c.Paths.Output = DefaultOutputDir
	}
	if c.Paths.Static == "" {
		c.Paths.Static = "public"
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{c.Paths.Build}
	}
}

// validate rejects configurations that cannot work.
func (c *Config) validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("N102").
			WithDetail("dev.port %d is out of range", c.Dev.Port)
	}
	if c.Offload.Enabled && c.Offload.Bucket == "" {
		return errors.New("N102").
			WithDetail("offload.enabled requires offload.bucket")
	}
	return nil
}
