package coursedesc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Publish.Ref != DefaultRef || cfg.Publish.DeployRef != DefaultRef {
		t.Errorf("default refs = %q / %q", cfg.Publish.Ref, cfg.Publish.DeployRef)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}

	d, err := cfg.ConvertTimeout()
	if err != nil {
		t.Fatalf("ConvertTimeout() error = %v", err)
	}
	if d != 30*time.Second {
		t.Errorf("ConvertTimeout() = %v", d)
	}
}

func TestLoadConfig_Path(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	data := `degrees: /etc/coursedesc/degrees.json
convert:
  workers: 4
  timeout: 2m
  htmlOnly: true
publish:
  ref: refs/heads/feature
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Degrees != "/etc/coursedesc/degrees.json" {
		t.Errorf("Degrees = %q", cfg.Degrees)
	}
	if cfg.Convert.Workers != 4 || !cfg.Convert.HTMLOnly {
		t.Errorf("Convert = %+v", cfg.Convert)
	}
	if d, _ := cfg.ConvertTimeout(); d != 2*time.Minute {
		t.Errorf("ConvertTimeout() = %v", d)
	}
	// Unset fields keep their defaults.
	if cfg.Publish.DeployRef != DefaultRef {
		t.Errorf("DeployRef = %q, want default", cfg.Publish.DeployRef)
	}
	if cfg.Publish.Ref != "refs/heads/feature" {
		t.Errorf("Ref = %q", cfg.Publish.Ref)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
		t.Errorf("empty name error = %v, want %v", err, ErrEmptyConfigName)
	}

	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := LoadConfig(missing); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want %v", err, ErrConfigNotFound)
	}

	// Unknown fields are rejected, catching typos like "worker:".
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("convert:\n  worker: 4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); !errors.Is(err, ErrConfigParse) {
		t.Errorf("unknown field error = %v, want %v", err, ErrConfigParse)
	}
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	t.Parallel()

	tests := []string{"banana", "-5s", "0s"}
	for _, timeout := range tests {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		if err := os.WriteFile(path, []byte("convert:\n  timeout: "+timeout+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("timeout %q: error = %v, want %v", timeout, err, ErrInvalidTimeout)
		}
	}
}

func TestResolveConfigPath_CurrentDir(t *testing.T) {
	// Changes the working directory, so no t.Parallel().
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile("pipeline.yml", []byte("workDir: scratch\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("pipeline")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.WorkDir != "scratch" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
}
