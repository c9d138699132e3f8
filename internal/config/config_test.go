package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/recipeflow/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolate points XDG_CONFIG_HOME at an empty directory and clears the
// RECIPEFLOW_* variables for the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{
		"RECIPEFLOW_DB", "RECIPEFLOW_BARRELS", "RECIPEFLOW_CACHE", "RECIPEFLOW_CACHE_DIR",
		"RECIPEFLOW_REDIS_ADDR", "RECIPEFLOW_REDIS_PASSWORD", "RECIPEFLOW_REDIS_DB",
		"RECIPEFLOW_ADDR", "RECIPEFLOW_CONCURRENCY",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadFiles("", "")
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := isolate(t)
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "recipeflow", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "recipeflow", "config.toml"), `
database = "factorio.yaml"
barrels = true

[cache]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2

[server]
addr = ":9000"
`)
	t.Setenv("RECIPEFLOW_ADDR", ":9100")
	t.Setenv("RECIPEFLOW_CONCURRENCY", "3")

	cfg, err := LoadFiles("", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database != "factorio.yaml" || !cfg.Barrels {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("env should override file: addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3", cfg.Server.Concurrency)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "RECIPEFLOW_DB=from-dotenv.json\nRECIPEFLOW_CACHE=none\n")
	// godotenv does not override variables that are already set, so unset
	// the ones isolate cleared.
	os.Unsetenv("RECIPEFLOW_DB")
	os.Unsetenv("RECIPEFLOW_CACHE")
	t.Cleanup(func() {
		os.Unsetenv("RECIPEFLOW_DB")
		os.Unsetenv("RECIPEFLOW_CACHE")
	})

	cfg, err := LoadFiles("", envFile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database != "from-dotenv.json" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("Backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadMissingDotEnvIsFine(t *testing.T) {
	dir := isolate(t)
	if _, err := LoadFiles("", filepath.Join(dir, "absent.env")); err != nil {
		t.Fatal(err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "database = [")
	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, "[cache]\nbackend = \"memcached\"\n")

	tests := []struct {
		name string
		path string
		env  map[string]string
		code errors.Code
	}{
		{"missing explicit file", filepath.Join(dir, "nope.toml"), nil, errors.ErrCodeFileNotFound},
		{"malformed toml", bad, nil, errors.ErrCodeInvalidFormat},
		{"unknown backend", unknown, nil, errors.ErrCodeInvalidInput},
		{"bad boolean", "", map[string]string{"RECIPEFLOW_BARRELS": "maybe"}, errors.ErrCodeInvalidInput},
		{"bad integer", "", map[string]string{"RECIPEFLOW_REDIS_DB": "two"}, errors.ErrCodeInvalidInput},
		{"zero concurrency", "", map[string]string{"RECIPEFLOW_CONCURRENCY": "0"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFiles(tt.path, "")
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestValidateNormalizesBackend(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "Redis"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != CacheRedis {
		t.Errorf("Backend = %q, want %q", cfg.Cache.Backend, CacheRedis)
	}

	cfg.Cache.RedisAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("redis without address should fail")
	}
}
