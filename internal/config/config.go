package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/stream"
)

// Config file names, in lookup order.
var FileNames = []string{"weave.json", "weave.yaml", "weave.yml"}

const (
	// DefaultAddress is the default listen address for weave serve.
	DefaultAddress = ":8080"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "weave"
)

// Config is the complete weave configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Runtime   RuntimeConfig   `json:"runtime" yaml:"runtime"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`

	// path stores where the config was loaded from.
	path string
}

// RuntimeConfig configures the reactive runtime.
type RuntimeConfig struct {
	// FlushMode is "sync" or "async".
	FlushMode string `json:"flushMode,omitempty" yaml:"flushMode,omitempty"`

	// MaxFlushPasses bounds re-drains within one flush.
	MaxFlushPasses int `json:"maxFlushPasses,omitempty" yaml:"maxFlushPasses,omitempty"`

	// PoolSize is the edge pool's free-list capacity. 0 disables pooling.
	PoolSize *int `json:"poolSize,omitempty" yaml:"poolSize,omitempty"`
}

// ServerConfig configures weave serve and its stream hub.
type ServerConfig struct {
	Address      string `json:"address,omitempty" yaml:"address,omitempty"`
	SendBuffer   int    `json:"sendBuffer,omitempty" yaml:"sendBuffer,omitempty"`
	HistorySize  int    `json:"historySize,omitempty" yaml:"historySize,omitempty"`
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	ReadTimeout  string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	PingInterval string `json:"pingInterval,omitempty" yaml:"pingInterval,omitempty"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Metrics   bool   `json:"metrics" yaml:"metrics"`
	Tracing   bool   `json:"tracing" yaml:"tracing"`
}

// New creates a Config with default values.
func New() *Config {
	hub := stream.DefaultConfig()
	pool := reactive.DefaultPoolSize
	return &Config{
		Runtime: RuntimeConfig{
			FlushMode:      reactive.FlushAsync.String(),
			MaxFlushPasses: reactive.DefaultMaxFlushPasses,
			PoolSize:       &pool,
		},
		Server: ServerConfig{
			Address:      DefaultAddress,
			SendBuffer:   hub.SendBuffer,
			HistorySize:  hub.HistorySize,
			WriteTimeout: hub.WriteTimeout.String(),
			ReadTimeout:  hub.ReadTimeout.String(),
			PingInterval: hub.PingInterval.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Namespace: DefaultNamespace,
			Metrics:   true,
		},
	}
}

// Find returns the path of the first config file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Load reads the first config file found in dir.
func Load(dir string) (*Config, error) {
	if path, ok := Find(dir); ok {
		return LoadFile(path)
	}
	return nil, errors.New("E006").
		WithDetail("No weave.json or weave.yaml found in " + dir).
		WithSuggestion("Create weave.json or pass --config")
}

// LoadFile reads configuration from path. The format follows the
// extension: .json, otherwise YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E006").Wrap(err)
	}

	cfg := New()
	if isJSON(path) {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E006").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.path = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("E006").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E006").Wrap(err)
	}
	c.path = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// applyDefaults fills fields a partial file left empty.
func (c *Config) applyDefaults() {
	d := New()
	if c.Runtime.FlushMode == "" {
		c.Runtime.FlushMode = d.Runtime.FlushMode
	}
	if c.Runtime.MaxFlushPasses == 0 {
		c.Runtime.MaxFlushPasses = d.Runtime.MaxFlushPasses
	}
	if c.Runtime.PoolSize == nil {
		c.Runtime.PoolSize = d.Runtime.PoolSize
	}
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.SendBuffer == 0 {
		c.Server.SendBuffer = d.Server.SendBuffer
	}
	if c.Server.HistorySize == 0 {
		c.Server.HistorySize = d.Server.HistorySize
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.PingInterval == "" {
		c.Server.PingInterval = d.Server.PingInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = d.Telemetry.Namespace
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	invalid := func(field, detail string) error {
		return errors.New("E006").WithDetail(field + ": " + detail)
	}

	if _, ok := parseFlushMode(c.Runtime.FlushMode); !ok {
		return invalid("runtime.flushMode", "must be \"sync\" or \"async\", got "+quote(c.Runtime.FlushMode))
	}
	if c.Runtime.MaxFlushPasses < 1 {
		return invalid("runtime.maxFlushPasses", "must be at least 1")
	}
	if c.Runtime.PoolSize != nil && *c.Runtime.PoolSize < 0 {
		return invalid("runtime.poolSize", "must not be negative")
	}
	if c.Server.SendBuffer < 2 {
		return invalid("server.sendBuffer", "must be at least 2")
	}
	if c.Server.HistorySize < 1 {
		return invalid("server.historySize", "must be at least 1")
	}
	durations := map[string]string{
		"server.writeTimeout": c.Server.WriteTimeout,
		"server.readTimeout":  c.Server.ReadTimeout,
		"server.pingInterval": c.Server.PingInterval,
	}
	for field, v := range durations {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return invalid(field, "must be a positive duration, got "+quote(v))
		}
	}
	if c.duration(c.Server.PingInterval) >= c.duration(c.Server.ReadTimeout) {
		return invalid("server.pingInterval", "must be shorter than server.readTimeout")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("log.level", "must be debug, info, warn or error, got "+quote(c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", "must be \"text\" or \"json\", got "+quote(c.Log.Format))
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}

func (c *Config) duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func parseFlushMode(s string) (reactive.FlushMode, bool) {
	switch strings.ToLower(s) {
	case "sync":
		return reactive.FlushSync, true
	case "async":
		return reactive.FlushAsync, true
	}
	return 0, false
}

func parseLevel(s string) (slog.Level, bool) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, false
	}
	return l, true
}

// RuntimeOptions returns the reactive runtime options the config selects.
// logger may be nil.
func (c *Config) RuntimeOptions(logger *slog.Logger) []reactive.Option {
	mode, _ := parseFlushMode(c.Runtime.FlushMode)
	opts := []reactive.Option{
		reactive.WithFlushMode(mode),
		reactive.WithMaxFlushPasses(c.Runtime.MaxFlushPasses),
	}
	if c.Runtime.PoolSize != nil {
		opts = append(opts, reactive.WithPoolSize(*c.Runtime.PoolSize))
	}
	if logger != nil {
		opts = append(opts, reactive.WithLogger(logger))
	}
	return opts
}

// HubConfig returns the stream hub configuration.
func (c *Config) HubConfig() stream.Config {
	return stream.Config{
		SendBuffer:   c.Server.SendBuffer,
		HistorySize:  c.Server.HistorySize,
		WriteTimeout: c.duration(c.Server.WriteTimeout),
		ReadTimeout:  c.duration(c.Server.ReadTimeout),
		PingInterval: c.duration(c.Server.PingInterval),
	}
}

// Logger builds the slog.Logger the config describes, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
