package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/generate"
	"github.com/hpungsan/chronicle/internal/ops"
	"github.com/hpungsan/chronicle/internal/render"
	"github.com/hpungsan/chronicle/internal/task"
)

// newCLIApp creates the CLI application with all commands.
// env is nil when only help or version output is needed; --verbose lowers
// level to debug when level is non-nil.
func newCLIApp(env *ops.Env, level *slog.LevelVar) *cli.App {
	app := &cli.App{
		Name:    "chronicle",
		Usage:   "Turn an agent's session logs into a themed diary",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") && level != nil {
				level.Set(slog.LevelDebug)
			}
			return nil
		},
		Commands: []*cli.Command{
			generateCmd(env),
			exportCmd(env),
			listCmd(env),
			showCmd(env),
			reindexCmd(env),
			themesCmd(),
			sectionsCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// generateCmd creates the generate command.
func generateCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write the diary entry for a day and render it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Entry date (YYYY-MM-DD)"},
			&cli.BoolFlag{Name: "today", Usage: "Write today's entry (default)"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Source material instead of the workspace session logs"},
			&cli.StringFlag{Name: "content-file", Usage: "Read source material from a file"},
			&cli.BoolFlag{Name: "emit-task", Usage: "Print the task payload JSON and stop"},
			&cli.StringFlag{Name: "backend", Aliases: []string{"b"}, Usage: "Generation backend: exec|copilot (default: generation.backend)"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Model routing hint"},
			&cli.StringFlag{Name: "agent", Usage: "Agent routing hint"},
			&cli.DurationFlag{Name: "timeout", Usage: "Bound the generation call, e.g. 90s (default: generation.timeout_seconds)"},
			&cli.StringFlag{Name: "from-file", Usage: "Use an entry already written to a file"},
			&cli.BoolFlag{Name: "from-stdin", Usage: "Read a written entry from stdin"},
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Write the entry by hand in a form"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Document path (default: <diary>/rendered/<date>.<ext>)"},
			&cli.StringFlag{Name: "theme", Aliases: []string{"t"}, Usage: "Theme: " + strings.Join(render.ThemeNames(), "|")},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Format: " + strings.Join(render.Formats, "|")},
			&cli.BoolFlag{Name: "dry-run", Usage: "Show what would be written without writing"},
			&cli.BoolFlag{Name: "no-persistent", Usage: "Do not append to archive files"},
			&cli.BoolFlag{Name: "strict", Usage: "Fail when required sections are missing"},
		},
		Action: func(c *cli.Context) error {
			date := c.String("date")
			if c.Bool("today") {
				if date != "" {
					return outputError(errors.NewValidation("--date and --today are mutually exclusive"))
				}
				date = env.Today()
			}

			content, err := readContent(c)
			if err != nil {
				return outputError(err)
			}

			backend, skipContext, err := selectBackend(c, env)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Generate(c.Context, env, backend, ops.GenerateInput{
				Date:         date,
				Content:      content,
				SkipContext:  skipContext,
				Format:       c.String("format"),
				Theme:        c.String("theme"),
				Output:       c.String("output"),
				Routing:      task.Routing{Agent: c.String("agent"), Model: c.String("model")},
				Timeout:      c.Duration("timeout"),
				DryRun:       c.Bool("dry-run"),
				NoPersistent: c.Bool("no-persistent"),
				Strict:       c.Bool("strict"),
			})
			if err != nil {
				return outputError(err)
			}

			// The payload or the dry-run report is already on stdout.
			if output.Emitted || output.DryRun {
				return nil
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Render every stored entry into one document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Document path (default: <diary>/<pdf_name>)"},
			&cli.StringFlag{Name: "theme", Aliases: []string{"t"}, Usage: "Theme: " + strings.Join(render.ThemeNames(), "|")},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Format: " + strings.Join(render.Formats, "|")},
			&cli.StringFlag{Name: "from", Usage: "First date to include (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "Last date to include (YYYY-MM-DD)"},
			&cli.BoolFlag{Name: "no-archives", Usage: "Leave out the archive pages"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, env, ops.ExportInput{
				Output:     c.String("output"),
				Format:     c.String("format"),
				Theme:      c.String("theme"),
				From:       c.String("from"),
				To:         c.String("to"),
				NoArchives: c.Bool("no-archives"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List indexed entries, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum entries to return"},
			&cli.IntFlag{Name: "offset", Usage: "Entries to skip"},
			&cli.BoolFlag{Name: "table", Usage: "Print an aligned table instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(env, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("table") {
				writeTable(c.App.Writer, output)
				return nil
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the stored entry for a date",
		ArgsUsage: "[date]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-text", Usage: "Exclude the entry markdown from output"},
			&cli.BoolFlag{Name: "raw", Usage: "Print only the entry markdown"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{Date: env.Today()}
			if c.NArg() > 0 {
				input.Date = c.Args().First()
			}
			if c.Bool("no-text") {
				includeText := false
				input.IncludeText = &includeText
			}

			output, err := ops.Fetch(env, input)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("raw") {
				_, err := io.WriteString(c.App.Writer, output.Text)
				return err
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// reindexCmd creates the reindex command.
func reindexCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "Rebuild the entry index from the diary directory",
		Action: func(c *cli.Context) error {
			output, err := ops.Reindex(c.Context, env)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

type themeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default,omitempty"`
}

// themesCmd creates the themes command.
func themesCmd() *cli.Command {
	return &cli.Command{
		Name:  "themes",
		Usage: "List document themes",
		Action: func(c *cli.Context) error {
			themes := render.Themes()
			out := make([]themeInfo, 0, len(themes))
			for _, t := range themes {
				out = append(out, themeInfo{
					Name:        t.Name,
					Description: t.Description,
					Default:     t.Name == render.DefaultTheme,
				})
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

// sectionsCmd creates the sections command.
func sectionsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "sections",
		Usage: "List the entry section templates in use",
		Action: func(c *cli.Context) error {
			templates := env.Templates
			if len(templates) == 0 {
				templates = entry.DefaultTemplates()
			}
			return outputJSON(c.App.Writer, templates)
		},
	}
}

// Helper functions

// readContent returns the source material given by --content or --content-file.
func readContent(c *cli.Context) (string, error) {
	content := c.String("content")
	path := c.String("content-file")
	if path == "" {
		return content, nil
	}
	if content != "" {
		return "", errors.NewValidation("--content and --content-file are mutually exclusive")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFound(path)
		}
		return "", errors.NewValidation(fmt.Sprintf("cannot read content file: %v", err))
	}
	return string(data), nil
}

// selectBackend picks the backend from the mode flags. skipContext reports
// whether the backend supplies the entry itself, so no session logs are needed.
func selectBackend(c *cli.Context, env *ops.Env) (backend generate.Backend, skipContext bool, err error) {
	var modes []string
	for _, name := range []string{"emit-task", "from-file", "from-stdin", "interactive", "backend"} {
		if c.IsSet(name) {
			modes = append(modes, "--"+name)
		}
	}
	if len(modes) > 1 {
		return nil, false, errors.NewValidation(fmt.Sprintf("only one of %s may be given", strings.Join(modes, ", ")))
	}

	switch {
	case c.Bool("emit-task"):
		return generate.NewEmit(c.App.Writer), false, nil
	case c.String("from-file") != "":
		return generate.FromFile(c.String("from-file")), true, nil
	case c.Bool("from-stdin"):
		return generate.FromReader("stdin", c.App.Reader), true, nil
	case c.Bool("interactive"):
		return generate.NewInteractive(c.App.Reader, c.App.ErrWriter, env.Templates), true, nil
	}

	name := c.String("backend")
	if name == "" {
		name = env.Config.Generation.Backend
	}
	backend, err = generate.New(name, env.Config.Generation.Options, generate.Deps{
		Stdout:    c.App.Writer,
		Logger:    env.Logger,
		Templates: env.Templates,
		Workdir:   env.Workspace.Root,
	})
	return backend, false, err
}

// writeTable prints list output as aligned columns.
func writeTable(w io.Writer, out *ops.ListOutput) {
	const titleWidth = 48
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "%s  %s  %s  %s\n", padRight("DATE", 10), padRight("TITLE", titleWidth), padLeft("WORDS", 7), "UPDATED")
	for _, item := range out.Items {
		title := runewidth.Truncate(item.Title, titleWidth, "…")
		updated := time.Unix(item.UpdatedAt, 0).Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			padRight(item.Date, 10),
			padRight(title, titleWidth),
			padLeft(p.Sprintf("%d", item.WordCount), 7),
			updated,
		)
	}
	p.Fprintf(w, "\n%d of %d entries\n", len(out.Items), out.Pagination.Total)
	if out.LastRender != nil {
		fmt.Fprintf(w, "last render: %s (%s, %s)\n", out.LastRender.Path, out.LastRender.Format, out.LastRender.Theme)
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputError formats error for CLI, carrying the error's exit status.
func outputError(err error) error {
	var cErr *errors.ChronicleError
	if stderrors.As(err, &cErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), cErr.Status)
	}
	return cli.Exit(err.Error(), 1)
}
