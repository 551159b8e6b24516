package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/todolist/internal/config"
)

func TestNewWritesToDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.LogLevel = "warn"

	log, closer, err := New(cfg, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("key", "k").Msg("visible")
	closer.Close()

	b, err := os.ReadFile(filepath.Join(cfg.DataDir, fileName))
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if strings.Contains(out, "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, `"message":"visible"`) || !strings.Contains(out, `"timestamp"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		env, level string
		debug      bool
		want       zerolog.Level
	}{
		{config.EnvProd, "", false, zerolog.InfoLevel},
		{config.EnvProd, "error", false, zerolog.ErrorLevel},
		{config.EnvProd, "error", true, zerolog.DebugLevel},
		{config.EnvDev, "error", false, zerolog.DebugLevel},
		{config.EnvLocal, "", false, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		cfg := &config.Config{Env: tt.env, LogLevel: tt.level}
		got, err := levelFor(cfg, tt.debug)
		if err != nil || got != tt.want {
			t.Errorf("%s/%q/debug=%v: got %v, %v; want %v", tt.env, tt.level, tt.debug, got, err, tt.want)
		}
	}
	if _, err := levelFor(&config.Config{Env: config.EnvProd, LogLevel: "loud"}, false); err == nil {
		t.Error("expected error for bad level")
	}
}
