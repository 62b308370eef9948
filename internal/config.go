package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/careerlift/internal/graphview"
	"github.com/starford/careerlift/internal/jobs"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Backend   BackendConfig     `yaml:"backend"`
	Sources   SourcesConfig     `yaml:"sources"`
	Search    SearchConfig      `yaml:"search"`
	Graph     GraphConfig       `yaml:"graph"`
	State     StateConfig       `yaml:"state"`
	Cache     CacheConfig       `yaml:"cache"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Backend, &c.Sources, &c.Search, &c.Graph,
		&c.State, &c.Cache, &c.Scheduler, &c.Metrics, &c.Auth,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// BackendConfig points at the CareerLift backend API.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the backend configuration.
func (c *BackendConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// SourcesConfig holds the paging limits and the progress simulation.
type SourcesConfig struct {
	DefaultLimit    int           `yaml:"default_limit"`
	Increment       int           `yaml:"increment"`
	MaxLimit        int           `yaml:"max_limit"`
	SearchProgress  int           `yaml:"search_progress"`
	RefreshTick     time.Duration `yaml:"refresh_tick"`
	RefreshStep     int           `yaml:"refresh_step"`
	LoadMoreTick    time.Duration `yaml:"load_more_tick"`
	LoadMoreStep    int           `yaml:"load_more_step"`
	ProgressCeiling int           `yaml:"progress_ceiling"`
	QueueSize       int           `yaml:"queue_size"`
}

// Validate validates the sources configuration.
func (c *SourcesConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DefaultLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.Increment, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.SearchProgress, validation.Min(0), validation.Max(100)),
		validation.Field(&c.RefreshTick, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RefreshStep, validation.Required, validation.Min(1)),
		validation.Field(&c.LoadMoreTick, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.LoadMoreStep, validation.Required, validation.Min(1)),
		validation.Field(&c.ProgressCeiling, validation.Required, validation.Max(99)),
		validation.Field(&c.QueueSize, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("sources: default_limit %d exceeds max_limit %d", c.DefaultLimit, c.MaxLimit)
	}
	return nil
}

// SearchConfig holds the search failure policy.
type SearchConfig struct {
	FailurePolicy string `yaml:"failure_policy"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FailurePolicy, validation.In(string(jobs.DiscardAll), string(jobs.KeepCompleted))),
	)
}

// GraphConfig holds the graph mapping options.
type GraphConfig struct {
	DuplicatePolicy string `yaml:"duplicate_policy"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	_, err := graphview.ParsePolicy(c.DuplicatePolicy)
	return err
}

// StateConfig holds the local persistence paths.
type StateConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	SignalDir  string `yaml:"signal_dir"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.SignalDir, validation.Required),
	)
}

// CacheConfig holds the Redis response cache settings. An empty address
// disables the cache.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// Enabled reports whether a Redis address is configured.
func (c *CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RedisAddr, is.DialString),
		validation.Field(&c.TTL, validation.When(c.Enabled(), validation.Required, validation.Min(time.Second))),
	)
}

// SchedulerConfig holds the periodic refresh settings. An empty spec
// disables the scheduler.
type SchedulerConfig struct {
	RefreshSpec    string `yaml:"refresh_spec"`
	LimitPerSource int    `yaml:"limit_per_source"`
}

// Enabled reports whether a refresh schedule is configured.
func (c *SchedulerConfig) Enabled() bool {
	return c.RefreshSpec != ""
}

// Validate validates the scheduler configuration.
func (c *SchedulerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LimitPerSource, validation.When(c.Enabled(), validation.Required, validation.Min(1))),
	)
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// JobsConfig converts the sources and search sections for the controller.
func (c *Config) JobsConfig() jobs.Config {
	policy, _ := jobs.ParseFailurePolicy(c.Search.FailurePolicy)
	return jobs.Config{
		DefaultLimit:    c.Sources.DefaultLimit,
		Increment:       c.Sources.Increment,
		MaxLimit:        c.Sources.MaxLimit,
		SearchProgress:  c.Sources.SearchProgress,
		RefreshTick:     c.Sources.RefreshTick,
		RefreshStep:     c.Sources.RefreshStep,
		LoadMoreTick:    c.Sources.LoadMoreTick,
		LoadMoreStep:    c.Sources.LoadMoreStep,
		ProgressCeiling: c.Sources.ProgressCeiling,
		QueueSize:       c.Sources.QueueSize,
		FailurePolicy:   policy,
	}
}

// GraphOptions converts the graph section for the mapper.
func (c *Config) GraphOptions() graphview.Options {
	policy, _ := graphview.ParsePolicy(c.Graph.DuplicatePolicy)
	return graphview.Options{Duplicates: policy}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	d := jobs.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 60 * time.Second,
		},
		Sources: SourcesConfig{
			DefaultLimit:    d.DefaultLimit,
			Increment:       d.Increment,
			MaxLimit:        d.MaxLimit,
			SearchProgress:  d.SearchProgress,
			RefreshTick:     d.RefreshTick,
			RefreshStep:     d.RefreshStep,
			LoadMoreTick:    d.LoadMoreTick,
			LoadMoreStep:    d.LoadMoreStep,
			ProgressCeiling: d.ProgressCeiling,
			QueueSize:       d.QueueSize,
		},
		Search: SearchConfig{
			FailurePolicy: string(jobs.DiscardAll),
		},
		Graph: GraphConfig{
			DuplicatePolicy: string(graphview.Disambiguate),
		},
		State: StateConfig{
			SQLitePath: "./careerlift.db",
			SignalDir:  "./signals",
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			LimitPerSource: 100,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
