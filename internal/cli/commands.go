package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Makepad-fr/todolist/internal/config"
	"github.com/Makepad-fr/todolist/internal/model"
	"github.com/Makepad-fr/todolist/internal/todo"
	"github.com/Makepad-fr/todolist/internal/ui"
)

func (e *env) rootCommand() *cli.Command {
	return &cli.Command{
		Name:      "todolist",
		Usage:     "a small to-do list for the terminal",
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Value:   config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:  "theme",
				Usage: "output theme: " + strings.Join(ui.Themes, ", "),
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "color output: auto, always or never",
				Value: "auto",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		DefaultCommand: "tui",
		Commands: []*cli.Command{
			e.tuiCommand(),
			e.addCommand(),
			e.listCommand(),
			e.toggleCommand(),
			e.removeCommand(),
			e.countCommand(),
			e.configCommand(),
		},
	}
}

func (e *env) tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive list (default)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() > 0 {
				return usageErr("unknown subcommand: %s", cmd.Args().First())
			}
			l, err := e.openList(ctx, cmd)
			if err != nil {
				return err
			}
			return ui.Run(ctx, l)
		},
	}
}

func (e *env) addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a new task (content can be multiple words)",
		ArgsUsage: "<content...>",
		// The flag parser stops at the first blank argument and drops the
		// rest; content words must all reach Args.
		SkipFlagParsing: true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return usageErr("usage: todolist add <content...>")
			}
			content, err := todo.ValidateContent(joinWords(cmd.Args().Slice()))
			if err != nil {
				return usageErr("add: %v", err)
			}

			l, err := e.loadedList(ctx, cmd)
			if err != nil {
				return err
			}

			if _, err := l.Add(ctx, content); err != nil {
				return e.saveFailed(err)
			}
			ui.OK(e.stdout, "added")
			return nil
		},
	}
}

func (e *env) listCommand() *cli.Command {
	return &cli.Command{
		Name:    "ls",
		Aliases: []string{"list"},
		Usage:   "Print tasks with counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "group", Usage: "group output by pending/done"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			l, err := e.loadedList(ctx, cmd)
			if err != nil {
				return err
			}

			ui.Panel(e.stdout, panelLines(l.Tasks(), cmd.Bool("group")))
			return nil
		},
	}
}

func (e *env) toggleCommand() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Toggle done for a task, by 1-based index or id",
		ArgsUsage: "<index|id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return e.byRef(ctx, cmd, "done", func(l *todo.List, id string) (bool, error) {
				return l.Toggle(ctx, id)
			}, "toggled")
		},
	}
}

func (e *env) removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task, by 1-based index or id",
		ArgsUsage: "<index|id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return e.byRef(ctx, cmd, "rm", func(l *todo.List, id string) (bool, error) {
				return l.Delete(ctx, id)
			}, "removed")
		},
	}
}

func (e *env) byRef(ctx context.Context, cmd *cli.Command, name string, op func(*todo.List, string) (bool, error), okMsg string) error {
	if cmd.NArg() != 1 || strings.TrimSpace(cmd.Args().First()) == "" {
		return usageErr("usage: todolist %s <index|id>", name)
	}
	l, err := e.loadedList(ctx, cmd)
	if err != nil {
		return err
	}

	id, err := resolveRef(l.Tasks(), cmd.Args().First())
	if err != nil {
		return cli.Exit(err.Error()+"\nHint: run `todolist ls` to see valid indexes", ExitUsage)
	}
	changed, err := op(l, id)
	if err != nil {
		return e.saveFailed(err)
	}
	if !changed {
		ui.Warn(e.stdout, "no task with id "+id)
		return nil
	}
	ui.OK(e.stdout, okMsg)
	return nil
}

func (e *env) countCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Print done/total",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			l, err := e.loadedList(ctx, cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "%d/%d\n", l.CountDone(), l.Len())
			return nil
		},
	}
}

func (e *env) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the config file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a default config file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.String("config")
					if err := config.WriteFile(path, config.Default()); err != nil {
						return err
					}
					ui.OK(e.stdout, "wrote "+path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective config",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := e.configure(cmd); err != nil {
						return err
					}
					c := e.cfg
					fmt.Fprintf(e.stdout, "env:      %s\ndata dir: %s\ndriver:   %s\nkey:      %s\ntheme:    %s\n",
						c.Env, c.DataDir, c.Storage.Driver, c.Storage.Key, c.Theme)
					return nil
				},
			},
		},
	}
}

const (
	shortIDLen = 8
	// A number outside the index range is only tried as an id prefix when it
	// is at least this long.
	minNumericPrefix = 4
)

// joinWords joins content words with single spaces, skipping blank ones.
func joinWords(words []string) string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w) != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// resolveRef turns a 1-based index, an id, or a unique id prefix into an id.
// Anything else is passed through unchanged; the list treats it as a no-op.
func resolveRef(tasks []model.Task, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty task reference")
	}
	n, numErr := strconv.Atoi(ref)
	if numErr == nil {
		if n >= 1 && n <= len(tasks) {
			return tasks[n-1].ID, nil
		}
		if len(ref) < minNumericPrefix {
			return "", fmt.Errorf("index out of range: have %d, got %d", len(tasks), n)
		}
	}

	match := ""
	for _, t := range tasks {
		if t.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("ambiguous id prefix: %s", ref)
			}
			match = t.ID
		}
	}
	switch {
	case match != "":
		return match, nil
	case numErr == nil:
		return "", fmt.Errorf("index out of range: have %d, got %d", len(tasks), n)
	}
	return ref, nil
}

// -------------- rendering helpers --------------

func panelLines(tasks []model.Task, group bool) []string {
	t := ui.Current()
	done := model.CountDone(tasks)
	created, completed := ui.SummaryText(len(tasks), done)

	lines := []string{
		fmt.Sprintf("%s  %s  %s",
			ui.C(t.Title, "To-do"),
			ui.C(t.Accent, created),
			ui.C(t.Success, completed)),
		ui.C(t.Muted, ui.ProgressBar(done, len(tasks), 28)),
		"",
	}

	switch {
	case len(tasks) == 0:
		lines = append(lines, ui.C(t.Title, ui.EmptyTitle), ui.C(t.Muted, ui.EmptyHint))
	case group:
		lines = append(lines, groupLines(tasks)...)
	default:
		lines = append(lines, flatLines(tasks, 0)...)
	}
	lines = append(lines, "", ui.C(t.Muted, "Tip: add with `todolist add \"Buy milk\"`"))
	return lines
}

// flatLines renders rows numbered from offset+1.
func flatLines(tasks []model.Task, offset int) []string {
	t := ui.Current()
	out := make([]string, 0, len(tasks))
	for i, task := range tasks {
		idx := fmt.Sprintf("%2d.", offset+i+1)
		box, color, text := t.BoxUnchecked, t.Pending, task.Content
		if len([]rune(text)) > 80 {
			text = string([]rune(text)[:77]) + "..."
		}
		if task.IsDone {
			box, color = t.BoxChecked, t.Success
			text = ui.C(t.Done, text)
		}
		out = append(out, fmt.Sprintf("%s %s %s %s",
			ui.C(t.Muted, idx), ui.C(color, box), text, ui.C(t.Muted, shortID(task.ID))))
	}
	return out
}

// groupLines keeps each task's list index so done/rm still work from it.
func groupLines(tasks []model.Task) []string {
	t := ui.Current()
	var pend, done []string
	for i, task := range tasks {
		ln := flatLines([]model.Task{task}, i)[0]
		if task.IsDone {
			done = append(done, ln)
		} else {
			pend = append(pend, ln)
		}
	}
	section := func(title string, rows []string) []string {
		out := []string{ui.C(t.Accent, title)}
		if len(rows) == 0 {
			return append(out, ui.C(t.Muted, "(none)"))
		}
		return append(out, rows...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
