package config

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/refhistory/internal/history"
	"github.com/fakeyudi/refhistory/internal/source"
)

// Project values win over global values, which win over defaults.
func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-z]{1,10}`)

	configGen := rapid.Custom(func(t *rapid.T) *Config {
		// Each field is independently either unset or set.
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasCapacity") {
			n := rapid.IntRange(-5, 100).Draw(t, "capacity")
			cfg.Capacity = &n
		}
		if rapid.Bool().Draw(t, "hasBoundFuture") {
			b := rapid.Bool().Draw(t, "boundFuture")
			cfg.BoundFuture = &b
		}
		if rapid.Bool().Draw(t, "hasClone") {
			cfg.Clone = nonEmptyString.Draw(t, "clone")
		}
		if rapid.Bool().Draw(t, "hasDefaultFormat") {
			cfg.DefaultFormat = nonEmptyString.Draw(t, "defaultFormat")
		}
		if rapid.Bool().Draw(t, "hasLogLevel") {
			cfg.LogLevel = nonEmptyString.Draw(t, "logLevel")
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkStringField(t, "Clone", global.Clone, project.Clone, defaults.Clone, merged.Clone)
		checkStringField(t, "DefaultFormat", global.DefaultFormat, project.DefaultFormat, defaults.DefaultFormat, merged.DefaultFormat)
		checkStringField(t, "LogLevel", global.LogLevel, project.LogLevel, defaults.LogLevel, merged.LogLevel)

		switch {
		case project.Capacity != nil:
			if merged.Capacity == nil || *merged.Capacity != *project.Capacity {
				t.Fatalf("Capacity: expected project value %d, got %v", *project.Capacity, merged.Capacity)
			}
		case global.Capacity != nil:
			if merged.Capacity == nil || *merged.Capacity != *global.Capacity {
				t.Fatalf("Capacity: expected global value %d, got %v", *global.Capacity, merged.Capacity)
			}
		default:
			if merged.Capacity != nil {
				t.Fatalf("Capacity: expected unbounded, got %d", *merged.Capacity)
			}
		}

		switch {
		case project.BoundFuture != nil:
			if merged.BoundFuture == nil || *merged.BoundFuture != *project.BoundFuture {
				t.Fatalf("BoundFuture: expected project value %v, got %v", *project.BoundFuture, merged.BoundFuture)
			}
		case global.BoundFuture != nil:
			if merged.BoundFuture == nil || *merged.BoundFuture != *global.BoundFuture {
				t.Fatalf("BoundFuture: expected global value %v, got %v", *global.BoundFuture, merged.BoundFuture)
			}
		default:
			if merged.BoundFuture != nil {
				t.Fatalf("BoundFuture: expected unset, got %v", *merged.BoundFuture)
			}
		}
	})
}

// checkStringField asserts the merge precedence rule for a single string field:
//   - project non-empty  → merged == project
//   - project empty, global non-empty → merged == global
//   - both empty → merged == defaultVal
func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: both set — expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set — expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set — expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestMergeCopiesPointers(t *testing.T) {
	n := 3
	global := &Config{Capacity: &n}
	merged := Merge(global, nil)
	n = 9
	if *merged.Capacity != 3 {
		t.Errorf("merged capacity aliased the input: got %d", *merged.Capacity)
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.DefaultFormat != "markdown" {
		t.Errorf("DefaultFormat: want %q, got %q", "markdown", d.DefaultFormat)
	}
	if d.Clone != "none" {
		t.Errorf("Clone: want %q, got %q", "none", d.Clone)
	}
	if d.Capacity != nil {
		t.Errorf("Capacity: want unbounded, got %d", *d.Capacity)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	if cfg.DefaultFormat != Defaults().DefaultFormat {
		t.Errorf("DefaultFormat: want %q, got %q", Defaults().DefaultFormat, cfg.DefaultFormat)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadProjectReadsFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile(".refhistoryconfig", []byte(`{"capacity": 5, "clone": "deep", "bound_future": false}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Capacity == nil || *cfg.Capacity != 5 {
		t.Errorf("Capacity: want 5, got %v", cfg.Capacity)
	}
	if cfg.Clone != "deep" {
		t.Errorf("Clone: want deep, got %q", cfg.Clone)
	}
	if cfg.BoundFuture == nil || *cfg.BoundFuture {
		t.Errorf("BoundFuture: want false, got %v", cfg.BoundFuture)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	// Write an invalid JSON file where LoadGlobal expects it.
	cfgDir := tmp + "/.config/refhistory"
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgDir+"/config.json", []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid JSON, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestHistoryOptions(t *testing.T) {
	n := 1
	bound := false
	cfg := Config{Capacity: &n, Clone: "none", BoundFuture: &bound}

	opts, err := cfg.HistoryOptions(nil)
	if err != nil {
		t.Fatalf("HistoryOptions: %v", err)
	}
	ref := source.NewRef("a")
	h := history.New[string](ref, opts...)
	ref.Set("b")
	ref.Set("c")
	if h.Len() != 1 {
		t.Errorf("capacity from config not applied: len %d", h.Len())
	}
	if h.Capacity() != 1 {
		t.Errorf("Capacity: got %d, want 1", h.Capacity())
	}

	// An explicit capacity wins over the configured one.
	opts, err = cfg.HistoryOptions(history.Fixed(5))
	if err != nil {
		t.Fatal(err)
	}
	if got := history.New[string](source.NewRef("x"), opts...).Capacity(); got != 5 {
		t.Errorf("override Capacity: got %d, want 5", got)
	}
}

func TestHistoryOptionsBadClone(t *testing.T) {
	if _, err := (Config{Clone: "shallow"}).HistoryOptions(nil); err == nil {
		t.Fatal("expected error for unknown clone policy")
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
