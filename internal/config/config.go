package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "blogbuilder.yaml"

// Config is the complete blogbuilder configuration.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Output     OutputConfig     `yaml:"output"`
	Pagination PaginationConfig `yaml:"pagination"`
	Legacy     LegacyConfig     `yaml:"legacy"`
	Preview    PreviewConfig    `yaml:"preview"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Notify     NotifyConfig     `yaml:"notify"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SiteConfig holds presentation settings shared by every page.
type SiteConfig struct {
	Name             string   `yaml:"name"`
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	Keywords         []string `yaml:"keywords,omitempty"`
	BaseURL          string   `yaml:"base_url,omitempty"`
	Author           string   `yaml:"author"`
	HeroTitle        string   `yaml:"hero_title"`
	HeroSubtitle     string   `yaml:"hero_subtitle"`
	AboutFile        string   `yaml:"about_file,omitempty"`   // markdown body for about.html
	LayoutsDir       string   `yaml:"layouts_dir,omitempty"`  // overrides embedded layouts by file name
	StaticDir        string   `yaml:"static_dir,omitempty"`   // copied verbatim into the output
	PlaceholderImage string   `yaml:"placeholder_image"`
}

// ContentConfig locates the post source.
type ContentConfig struct {
	CSVPath    string            `yaml:"csv_path"`
	Repository *RepositoryConfig `yaml:"repository,omitempty"`
	Markdown   MarkdownConfig    `yaml:"markdown"`
}

// RepositoryConfig is an optional git repository holding the post source.
// When set, CSVPath and Site.AboutFile are resolved inside the clone.
type RepositoryConfig struct {
	URL          string      `yaml:"url"`
	Branch       string      `yaml:"branch,omitempty"`
	Auth         *AuthConfig `yaml:"auth,omitempty"`
	WorkspaceDir string      `yaml:"workspace_dir,omitempty"`
}

// MarkdownConfig toggles renderer features. Unset values default to enabled.
type MarkdownConfig struct {
	HardWraps   *bool `yaml:"hard_wraps,omitempty"`
	Typographer *bool `yaml:"typographer,omitempty"`
	Decorate    *bool `yaml:"decorate_emoji,omitempty"`
}

// OutputConfig describes where the exported site and build state are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
	StateDir  string `yaml:"state_dir"`
}

// PaginationConfig sizes the listing, home and related sections.
type PaginationConfig struct {
	PostsPerPage int `yaml:"posts_per_page"`
	HomeLatest   int `yaml:"home_latest"`
	Related      int `yaml:"related"`
}

// LegacyConfig drives the single-template generator.
type LegacyConfig struct {
	Template    string `yaml:"template"`
	OutputDir   string `yaml:"output_dir"`
	Manifest    string `yaml:"manifest"`
	LastRunFile string `yaml:"last_run_file"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Port       int           `yaml:"port"`
	LiveReload *bool         `yaml:"live_reload,omitempty"` // defaults to true
	Debounce   time.Duration `yaml:"debounce"`
}

// DaemonConfig configures long running serve mode.
type DaemonConfig struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Storage  StorageConfig  `yaml:"storage"`
}

// HTTPConfig represents HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ScheduleConfig controls periodic rebuilds. Cron wins over Interval when both are set.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
	Cron     string        `yaml:"cron,omitempty"`
}

// StorageConfig represents storage configuration.
type StorageConfig struct {
	EventsDB string `yaml:"events_db"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
}

type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// NotifyConfig selects where build events are published.
type NotifyConfig struct {
	NATS *NATSConfig `yaml:"nats,omitempty"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithCause(err).WithContext("path", path).Build()
		}
		return nil, ferrors.ConfigError("read configuration file").
			WithCause(err).WithContext("path", path).Build()
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but returns the defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		loadEnvFiles()
		slog.Debug("No configuration file, using defaults", "path", path)
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// Parse decodes YAML with ${VAR} expansion, then applies defaults and validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.ConfigError("parse configuration").WithCause(err).Build()
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
