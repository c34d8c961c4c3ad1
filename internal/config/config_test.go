package config

import (
	"flag"
	"io"
	"math"
	"strconv"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Debounce != 200*time.Millisecond || cfg.MaxTextLen != 4096 || cfg.QueueSize != 64 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DebugMode || cfg.LogFormat != "console" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvThenFlags(t *testing.T) {
	t.Setenv("UIA_DEBOUNCE", "350ms")
	t.Setenv("UIA_MAX_TEXT_LEN", "128")
	t.Setenv("DEBUG_MODE", "true")

	cfg, err := load(newFlagSet(), []string{"-max-text-len", "64", "-log-format", "JSON"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Debounce != 350*time.Millisecond {
		t.Fatalf("expected env debounce, got %v", cfg.Debounce)
	}
	if cfg.MaxTextLen != 64 {
		t.Fatalf("expected flag to override env, got %d", cfg.MaxTextLen)
	}
	if !cfg.DebugMode || cfg.LogFormat != "json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	cfg, err := load(newFlagSet(), []string{"-debounce", "-1s", "-max-text-len", "0", "-queue-size", "-3", "-log-format", "xml"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Defaults()
	if cfg.Debounce != def.Debounce || cfg.MaxTextLen != def.MaxTextLen || cfg.QueueSize != def.QueueSize || cfg.LogFormat != def.LogFormat {
		t.Fatalf("expected defaults for invalid values, got %+v", cfg)
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("UIA_DEBOUNCE", "soon")
	if _, err := load(newFlagSet(), nil); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestLoadCapsMaxTextLen(t *testing.T) {
	if strconv.IntSize == 32 {
		t.Skip("int cannot hold a value above MaxInt32")
	}
	huge := strconv.FormatInt(int64(math.MaxInt32)+1, 10)
	cfg, err := load(newFlagSet(), []string{"-max-text-len", huge})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxTextLen != math.MaxInt32 {
		t.Fatalf("expected max text len capped at %d, got %d", math.MaxInt32, cfg.MaxTextLen)
	}
}
