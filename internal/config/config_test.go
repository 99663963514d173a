package config_test

import (
	"testing"

	"github.com/norumander/wow-server-sim/internal/config"
)

func TestLoadFallsBackToDefaultsWhenNoConfigFilePresent(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error for missing config file, got %v", err)
	}
	if cfg.TickRateHz != 20 {
		t.Fatalf("expected default tick rate 20, got %d", cfg.TickRateHz)
	}
	if cfg.GamePort != 8080 || cfg.ControlPort != 8081 {
		t.Fatalf("expected default ports, got game=%d control=%d", cfg.GamePort, cfg.ControlPort)
	}
	if len(cfg.Zones) != 1 || cfg.Zones[0].ID != 1 {
		t.Fatalf("expected default single zone seed, got %+v", cfg.Zones)
	}
}
