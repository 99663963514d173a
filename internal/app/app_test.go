package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/norumander/wow-server-sim/internal/app"
)

func TestRunStartsAndShutsDownCleanly(t *testing.T) {
	dir := t.TempDir()
	telemetryPath := filepath.Join(dir, "telemetry.log")
	configContents := `{
		"tickRateHz": 50,
		"gamePort": 0,
		"controlPort": 0,
		"telemetryPath": "` + telemetryPath + `",
		"zones": [{"id": 1, "name": "zone-1", "npcPopulation": 0}]
	}`
	if err := os.WriteFile(filepath.Join(dir, "server.json"), []byte(configContents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, dir)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("app.Run did not shut down in time")
	}
}
