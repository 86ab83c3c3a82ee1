package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/reactive"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Runtime.FlushMode != "async" {
		t.Errorf("Runtime.FlushMode = %q, want async", cfg.Runtime.FlushMode)
	}
	if cfg.Telemetry.Namespace != DefaultNamespace {
		t.Errorf("Telemetry.Namespace = %q", cfg.Telemetry.Namespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	data := `{
  "name": "counter",
  "runtime": {"flushMode": "sync", "maxFlushPasses": 10, "poolSize": 0},
  "server": {"address": ":9000", "pingInterval": "5s"},
  "log": {"level": "debug", "format": "json"}
}
`
	if err := os.WriteFile(filepath.Join(dir, "weave.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "counter" || cfg.Server.Address != ":9000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Runtime.PoolSize == nil || *cfg.Runtime.PoolSize != 0 {
		t.Errorf("explicit poolSize 0 was not kept")
	}
	// Unset fields keep defaults.
	if cfg.Server.HistorySize != 100 || cfg.Server.WriteTimeout != "10s" {
		t.Errorf("defaults not applied: %+v", cfg.Server)
	}
	if cfg.Path() != filepath.Join(dir, "weave.json") {
		t.Errorf("Path() = %q", cfg.Path())
	}

	rt := reactive.New(cfg.RuntimeOptions(nil)...)
	if rt.Mode() != reactive.FlushSync {
		t.Errorf("Mode() = %v, want sync", rt.Mode())
	}
	if rt.Pool().MaxSize() != 0 {
		t.Errorf("pool size = %d, want 0", rt.Pool().MaxSize())
	}

	hub := cfg.HubConfig()
	if hub.PingInterval != 5*time.Second || hub.ReadTimeout != time.Minute {
		t.Errorf("HubConfig() = %+v", hub)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	data := `name: todo
runtime:
  flushMode: async
telemetry:
  namespace: todo
  tracing: true
`
	if err := os.WriteFile(filepath.Join(dir, "weave.yaml"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "todo" || cfg.Telemetry.Namespace != "todo" || !cfg.Telemetry.Tracing {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Runtime.MaxFlushPasses != reactive.DefaultMaxFlushPasses {
		t.Errorf("MaxFlushPasses = %d", cfg.Runtime.MaxFlushPasses)
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Find(dir); ok {
		t.Error("Find should report no config file")
	}
	_, err := Load(dir)
	if !errors.HasCode(err, "E006") {
		t.Errorf("err = %v, want E006", err)
	}
}

func TestFindPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"weave.yaml", "weave.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	path, ok := Find(dir)
	if !ok || filepath.Base(path) != "weave.json" {
		t.Errorf("Find() = %q, %v, want weave.json", path, ok)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weave.json")
	os.WriteFile(path, []byte("{not json"), 0644)
	_, err := LoadFile(path)
	if !errors.HasCode(err, "E006") || !strings.Contains(err.Error(), "weave.json") {
		t.Errorf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"flush mode", func(c *Config) { c.Runtime.FlushMode = "later" }, "runtime.flushMode"},
		{"passes", func(c *Config) { c.Runtime.MaxFlushPasses = 0 }, "runtime.maxFlushPasses"},
		{"pool", func(c *Config) { n := -1; c.Runtime.PoolSize = &n }, "runtime.poolSize"},
		{"send buffer", func(c *Config) { c.Server.SendBuffer = 1 }, "server.sendBuffer"},
		{"history", func(c *Config) { c.Server.HistorySize = 0 }, "server.historySize"},
		{"duration", func(c *Config) { c.Server.WriteTimeout = "soon" }, "server.writeTimeout"},
		{"ping vs read", func(c *Config) { c.Server.PingInterval = "2m" }, "server.pingInterval"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.HasCode(err, "E006") {
				t.Fatalf("err = %v, want E006", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("err = %v, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"weave.json", "weave.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Name = "saved"
			cfg.Log.Level = "warn"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatal(err)
			}
			got, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.Name != "saved" || got.Log.Level != "warn" || *got.Runtime.PoolSize != reactive.DefaultPoolSize {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	l := cfg.Logger(&buf)
	l.Info("hidden")
	l.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("log output = %s", out)
	}
}
