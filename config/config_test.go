package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"taskforge/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(Default(), cfg) {
		t.Fatalf("expected defaults\nwant=%+v\ngot=%+v", Default(), cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
categories = ["Kerja", " Kuliah ", ""]
samples = false
seed = "tasks.json"
sort = "Deadline"
locale = "id-ID"

[log]
file = "/tmp/taskforge.log"
level = "DEBUG"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual([]string{"Kerja", "Kuliah"}, cfg.Categories) {
		t.Fatalf("unexpected categories %v", cfg.Categories)
	}
	if cfg.Samples {
		t.Fatalf("expected samples disabled")
	}
	if cfg.Seed != "tasks.json" {
		t.Fatalf("unexpected seed %q", cfg.Seed)
	}
	if cfg.SortBy() != model.SortDeadline {
		t.Fatalf("expected deadline sort, got %q", cfg.SortBy())
	}
	if cfg.LocaleTag() != language.MustParse("id-ID") {
		t.Fatalf("unexpected locale %v", cfg.LocaleTag())
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel())
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
sort = "name"
samples = true
`)
	t.Setenv("TASKFORGE_SORT", "deadline")
	t.Setenv("TASKFORGE_SAMPLES", "false")
	t.Setenv("TASKFORGE_LOG_FILE", "session.log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.SortBy() != model.SortDeadline {
		t.Fatalf("expected env sort override, got %q", cfg.SortBy())
	}
	if cfg.Samples {
		t.Fatalf("expected env to disable samples")
	}
	if cfg.Log.File != "session.log" {
		t.Fatalf("expected env log file, got %q", cfg.Log.File)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for name, body := range map[string]string{
		"sort":   `sort = "size"`,
		"locale": `locale = "not a tag!"`,
		"level":  "[log]\nlevel = \"loud\"",
		"syntax": `categories = [`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestEmptyCategoriesFallBackToDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `categories = []`))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(model.DefaultCategories, cfg.Categories) {
		t.Fatalf("expected default categories, got %v", cfg.Categories)
	}
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("default path failed: %v", err)
	}
	if want := filepath.Join(dir, "taskforge", "config.toml"); path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}
