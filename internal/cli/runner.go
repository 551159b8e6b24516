package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/Makepad-fr/todolist/internal/config"
	"github.com/Makepad-fr/todolist/internal/logging"
	"github.com/Makepad-fr/todolist/internal/store"
	"github.com/Makepad-fr/todolist/internal/todo"
	"github.com/Makepad-fr/todolist/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Run executes the command line and returns an exit code. args includes the
// program name, as in os.Args.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	e := &env{stdout: stdout, stderr: stderr, log: logging.Nop()}
	defer e.close()
	root := e.rootCommand()

	err := root.Run(ctx, args)
	if err == nil {
		return ExitOK
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		if msg := ec.Error(); msg != "" {
			ui.Fail(stderr, msg)
		}
		return ec.ExitCode()
	}
	ui.Fail(stderr, err.Error())
	return ExitError
}

func usageErr(format string, a ...any) error {
	return cli.Exit(fmt.Sprintf(format, a...), ExitUsage)
}

// env is the per-invocation wiring: config, logger, storage and the list.
type env struct {
	stdout, stderr io.Writer

	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
	kv        store.KV
}

func (e *env) configure(cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("theme") {
		cfg.Theme = cmd.String("theme")
	}
	if err := ui.SetTheme(cfg.Theme); err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	switch mode := cmd.String("color"); mode {
	case "auto", "always", "never", "":
		ui.SetColorForcing(mode == "always", mode == "never")
	default:
		return usageErr("unknown color mode %q (want auto, always or never)", mode)
	}
	e.cfg = cfg
	return nil
}

// openList wires config, logging and storage into a List. The list is not
// loaded; callers decide when the one load happens.
func (e *env) openList(ctx context.Context, cmd *cli.Command) (*todo.List, error) {
	if err := e.configure(cmd); err != nil {
		return nil, err
	}

	log, closer, err := logging.New(e.cfg, cmd.Bool("debug"))
	if err != nil {
		return nil, err
	}
	e.log, e.logCloser = log, closer

	kv, err := store.Open(ctx, e.cfg.Storage, e.log.With().Str("component", "kv").Logger())
	if err != nil {
		e.log.Error().Err(err).Str("driver", e.cfg.Storage.Driver).Msg("open storage")
		return nil, fmt.Errorf("open storage: %w", err)
	}
	e.kv = kv
	e.log.Debug().Str("driver", e.cfg.Storage.Driver).Str("key", e.cfg.Storage.Key).Msg("storage opened")

	adapter := store.NewAdapter(kv,
		store.WithKey(e.cfg.Storage.Key),
		store.WithLogger(e.log.With().Str("component", "store").Logger()),
	)
	return todo.New(adapter, todo.WithLogger(e.log.With().Str("component", "todo").Logger())), nil
}

// loadedList is openList followed by the initial load.
func (e *env) loadedList(ctx context.Context, cmd *cli.Command) (*todo.List, error) {
	l, err := e.openList(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (e *env) close() {
	if e.kv != nil {
		if err := e.kv.Close(); err != nil {
			e.log.Warn().Err(err).Msg("close storage")
		}
		e.kv = nil
	}
	if e.logCloser != nil {
		e.logCloser.Close()
		e.logCloser = nil
	}
}

// saveFailed reports a SaveError. In one-shot commands the process exits
// right after, so the change is lost and that is an error.
func (e *env) saveFailed(err error) error {
	var se *todo.SaveError
	if errors.As(err, &se) {
		return cli.Exit("save: "+se.Err.Error(), ExitError)
	}
	return err
}
