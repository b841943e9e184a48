package muon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ClickMaxDuration != 400*time.Millisecond {
		t.Errorf("ClickMaxDuration = %v, want 400ms", cfg.ClickMaxDuration)
	}
	if cfg.DragMinDistance != 4.0 {
		t.Errorf("DragMinDistance = %v, want 4", cfg.DragMinDistance)
	}
	if cfg.StartupTimeout != 5*time.Second {
		t.Errorf("StartupTimeout = %v, want 5s", cfg.StartupTimeout)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muon.yaml")
	data := "click_max_duration: 250ms\ndrag_min_distance: 8\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ClickMaxDuration != 250*time.Millisecond {
		t.Errorf("ClickMaxDuration = %v, want 250ms", cfg.ClickMaxDuration)
	}
	if cfg.DragMinDistance != 8 {
		t.Errorf("DragMinDistance = %v, want 8", cfg.DragMinDistance)
	}
	// Fields absent from the file keep their defaults.
	if cfg.StartupTimeout != 5*time.Second {
		t.Errorf("StartupTimeout = %v, want default 5s", cfg.StartupTimeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadConfig on a missing file must error")
	}
	if cfg.DragMinDistance != 4.0 {
		t.Error("LoadConfig must return the defaults alongside the error")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("drag_min_distance: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig on malformed YAML must error")
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("click_max_duration: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig must reject an unparseable duration")
	}
}

func TestFrameInterval(t *testing.T) {
	if got := (RunConfig{}).frameInterval(); got != time.Second/30 {
		t.Errorf("default frame interval = %v, want %v", got, time.Second/30)
	}
	if got := (RunConfig{FrameRate: 60}).frameInterval(); got != time.Second/60 {
		t.Errorf("frame interval at 60fps = %v, want %v", got, time.Second/60)
	}
}
