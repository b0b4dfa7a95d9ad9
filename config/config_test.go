package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got, want := Path(), filepath.Join(dir, "xtimeline", "config.json"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if got := Load(); got != Default() {
		t.Errorf("Load = %+v, want defaults", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Default()
	cfg.DefaultFilter = "category == Pod"
	cfg.MaxParallelLoads = 8
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := Load(); got != cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	p := filepath.Join(dir, "xtimeline", "config.json")
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		t.Fatal(err)
	}
	doc := `{"pan_fraction": 7, "zoom_fraction": 0, "label_width": 2, "rules_file": "rules.yaml"}`
	if err := os.WriteFile(p, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	got := Load()
	d := Default()
	if got.PanFraction != d.PanFraction || got.ZoomFraction != d.ZoomFraction || got.LabelWidth != d.LabelWidth {
		t.Errorf("out-of-range values kept: %+v", got)
	}
	if got.RulesFile != "rules.yaml" {
		t.Errorf("RulesFile = %q", got.RulesFile)
	}
}

func TestLoadParseErrorReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	p := filepath.Join(dir, "xtimeline", "config.json")
	os.MkdirAll(filepath.Dir(p), 0700)
	os.WriteFile(p, []byte("{not json"), 0600)
	if got := Load(); got != Default() {
		t.Errorf("Load = %+v, want defaults", got)
	}
}
