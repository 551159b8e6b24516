// Package logging sets up the zerolog logger. The TUI owns stdout, so logs
// go to a file in the data directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/todolist/internal/config"
)

const fileName = "todolist.log"

// Nop discards everything. Used before config is read and in tests.
func Nop() zerolog.Logger { return zerolog.Nop() }

// New builds the application logger for cfg. The returned closer releases
// the log file.
func New(cfg *config.Config, debug bool) (zerolog.Logger, io.Closer, error) {
	zerolog.TimestampFieldName = "timestamp"

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("mkdir data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	level, err := levelFor(cfg, debug)
	if err != nil {
		f.Close()
		return zerolog.Nop(), nil, err
	}

	w := io.Writer(f)
	if cfg.Env == config.EnvLocal {
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.DateTime
		cw.NoColor = true
		cw.Out = f
		w = cw
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()

	logger.Debug().Str("env", cfg.Env).Msg("initialized application logger")
	return logger, f, nil
}

func levelFor(cfg *config.Config, debug bool) (zerolog.Level, error) {
	if debug {
		return zerolog.DebugLevel, nil
	}
	switch cfg.Env {
	case config.EnvLocal:
		return zerolog.TraceLevel, nil
	case config.EnvDev:
		return zerolog.DebugLevel, nil
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return lvl, nil
}
