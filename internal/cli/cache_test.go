package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/recipeflow/internal/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	// Verify the expected structure: $HOME/.cache/recipeflow
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "recipeflow")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, "recipeflow"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = "/var/cache/flows"

	dir, err := cacheDir(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/var/cache/flows" {
		t.Errorf("cacheDir() = %q, want the configured directory", dir)
	}
}

func TestCacheCommands(t *testing.T) {
	env := isolateCLI(t)

	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != env.cacheDir {
		t.Errorf("cache path = %q, want %q", got, env.cacheDir)
	}

	out, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on missing dir = %q", out)
	}

	if _, err := runCLI(t, "--db", env.db, "flatten", "gear"); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear after flatten = %q", out)
	}
}
