package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/source"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.Addr())
	}
	if cfg.Source.Kind != source.KindSeeds || cfg.Source.Activate != source.DefaultSeed {
		t.Errorf("Unexpected source defaults %+v", cfg.Source)
	}
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "netplan.example.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("Expected 10s request timeout, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Source.Pool.MaxConnLifetime != 5*time.Minute {
		t.Errorf("Expected 5m lifetime, got %v", cfg.Source.Pool.MaxConnLifetime)
	}
	if cfg.Cost.MediumAdders["microwave"] != 2 {
		t.Errorf("Unexpected cost overrides %+v", cfg.Cost)
	}
}

func TestParse(t *testing.T) {
	cfg := Default()
	err := cfg.Parse([]byte(`
server:
  port: 9090
source:
  kind: dir
  data_dir: /srv/topologies
cost:
  medium_multipliers:
    satellite: 3.5
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Source.DataDir != "/srv/topologies" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}

	m := cfg.CostModel()
	if m.Multiplier("satellite") != 3.5 || m.Multiplier("fiber") != 0.8 {
		t.Errorf("Unexpected cost model multipliers")
	}
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Parse(nil); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	cfg := Default()
	if err := cfg.Parse([]byte("server:\n  prot: 80\n")); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"PORT":                 "3000",
		"LOG_LEVEL":            "debug",
		"DATABASE_URL":         "postgres://netplan@localhost/netplan",
		"NETPLAN_SOURCE":       "postgres",
		"NETPLAN_TOPOLOGY":     "piedrasNegras",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.LogLevel() != logging.DebugLevel {
		t.Errorf("Expected debug level, got %v", cfg.LogLevel())
	}
	if cfg.Source.Kind != source.KindPostgres || cfg.Source.Activate != "piedrasNegras" {
		t.Errorf("Unexpected source %+v", cfg.Source)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins %v", cfg.Server.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(env(map[string]string{"PORT": "http"})); err == nil {
		t.Error("Expected error for non-numeric PORT")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Server.RequestTimeout = 0
	cfg.Log.Level = "loud"
	cfg.Source.Kind = source.KindPostgres
	cfg.Source.DatabaseURL = "mysql://localhost/db"
	cfg.Source.Pool.MinConns = 50
	cfg.Cost.MediumMultipliers = map[string]float64{"fiber": -1}
	cfg.Cost.MediumAdders = map[string]float64{"microwave": -2}
	cfg.Workers = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}

	for _, want := range []string{
		"server.port",
		"server.request_timeout",
		"log.level",
		"source.database_url",
		"source.pool.min_conns",
		"cost.medium_multipliers.fiber",
		"cost.medium_adders.microwave",
		"workers",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error mentioning %s, got:\n%v", want, err)
		}
	}
}

func TestValidateSourceKinds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"seeds", func(c *Config) {}, false},
		{"dir without data dir", func(c *Config) { c.Source.Kind = source.KindDir }, true},
		{"dir", func(c *Config) { c.Source.Kind = source.KindDir; c.Source.DataDir = "." }, false},
		{"postgres without url", func(c *Config) { c.Source.Kind = source.KindPostgres }, true},
		{"postgres", func(c *Config) {
			c.Source.Kind = source.KindPostgres
			c.Source.DatabaseURL = "postgresql://localhost:5432/netplan"
		}, false},
		{"unknown kind", func(c *Config) { c.Source.Kind = "s3" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netplan.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Expected environment to win, got %d", cfg.Server.Port)
	}
}

func TestPostgresPool(t *testing.T) {
	pc := Default().PostgresPool()
	def := source.DefaultPoolConfig()
	if pc != def {
		t.Errorf("Expected %+v, got %+v", def, pc)
	}
}

func TestSourceOptions(t *testing.T) {
	cfg := Default()
	cfg.Source.Kind = source.KindDir
	cfg.Source.DataDir = "/srv/topologies"

	opts := cfg.SourceOptions()
	if opts.Kind != source.KindDir || opts.DataDir != "/srv/topologies" {
		t.Errorf("Unexpected options %+v", opts)
	}
	if opts.Pool != source.DefaultPoolConfig() {
		t.Errorf("Expected default pool, got %+v", opts.Pool)
	}
}
