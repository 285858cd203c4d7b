package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/generate"
	"github.com/hpungsan/chronicle/internal/render"
	"github.com/hpungsan/chronicle/internal/task"
)

// RenderedDirName holds per-day documents inside the diary directory.
const RenderedDirName = "rendered"

// BuildTaskInput contains parameters for BuildTask.
type BuildTaskInput struct {
	Date    string       // default: today
	Content string       // default: gathered from the workspace
	Format  string       // default: config format
	Theme   string       // default: config theme
	Routing task.Routing // empty fields fall back to config
}

// BuildTask resolves defaults, gathers workspace context when no content is
// given and builds the task payload. It writes nothing.
func BuildTask(env *Env, input BuildTaskInput) (*task.Payload, error) {
	date := input.Date
	if date == "" {
		date = env.Today()
	}
	format := firstNonEmpty(input.Format, env.Config.Format, render.FormatPDF)
	theme := firstNonEmpty(input.Theme, env.Config.Theme, render.DefaultTheme)

	content := input.Content
	if strings.TrimSpace(content) == "" {
		if !entry.IsDate(date) {
			return nil, errors.NewValidation(fmt.Sprintf("date must be YYYY-MM-DD, got %q", date))
		}
		gathered, err := GatherContext(env, date)
		if err != nil {
			return nil, err
		}
		content = gathered
	}

	routing := input.Routing
	if routing.Agent == "" {
		routing.Agent = env.Config.Generation.Agent
	}
	if routing.Model == "" {
		routing.Model = env.Config.Generation.Model
	}

	return task.Build(task.Input{
		Date:      date,
		Content:   content,
		Format:    format,
		Theme:     theme,
		Themes:    render.ThemeNames(),
		Templates: env.templates(),
		MaxTokens: env.Config.MaxTokens,
		Routing:   routing,
		Now:       env.now(),
	})
}

// placeholderContent stands in for day context when the backend supplies the
// entry itself (reader, interactive). It is synthetic: it names the backend
// and never reaches the entry.
const placeholderContent = "Entry for %s supplied by the %s backend."

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Date         string
	Content      string
	SkipContext  bool // backend supplies the entry itself; without Content the payload carries placeholderContent
	Format       string
	Theme        string
	Output       string // default: <diary_dir>/rendered/<date><ext>
	Routing      task.Routing
	Timeout      time.Duration // 0 = generation.timeout_seconds
	DryRun       bool
	NoPersistent bool
	Strict       bool // missing required sections fail the run
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	TaskID   string            `json:"task_id"`
	Date     string            `json:"date"`
	Emitted  bool              `json:"emitted,omitempty"`
	Backend  string            `json:"backend"`
	Document string            `json:"document,omitempty"`
	Format   string            `json:"format,omitempty"`
	Theme    string            `json:"theme,omitempty"`
	Lint     *entry.LintResult `json:"lint,omitempty"`
	Entry    *SaveOutput       `json:"entry,omitempty"`
	DryRun   bool              `json:"dry_run,omitempty"`
}

// Generate runs one diary generation: build the payload, hand it to the
// backend, then render the document and save the entry. Nothing is written
// when the backend fails or the payload is emitted.
func Generate(ctx context.Context, env *Env, backend generate.Backend, input GenerateInput) (*GenerateOutput, error) {
	emit := backend.Name() == generate.BackendEmit

	date := input.Date
	if date == "" {
		date = env.Today()
	}
	format := firstNonEmpty(input.Format, env.Config.Format, render.FormatPDF)
	theme := firstNonEmpty(input.Theme, env.Config.Theme, render.DefaultTheme)
	output := input.Output
	if output == "" {
		output = filepath.Join(env.DiaryDir(), RenderedDirName, date+render.Extension(format))
	}

	if !emit && !input.DryRun {
		if err := render.CheckOutput(format, output); err != nil {
			return nil, err
		}
	}

	content := input.Content
	if strings.TrimSpace(content) == "" && input.SkipContext {
		content = fmt.Sprintf(placeholderContent, date, backend.Name())
		env.logger().Debug("using placeholder content", "backend", backend.Name())
	}

	p, err := BuildTask(env, BuildTaskInput{
		Date:    date,
		Content: content,
		Format:  format,
		Theme:   theme,
		Routing: input.Routing,
	})
	if err != nil {
		return nil, err
	}

	timeout := input.Timeout
	if timeout <= 0 {
		timeout = env.Config.Generation.Timeout()
	}

	log := env.logger().With("task_id", p.ID, "backend", backend.Name())
	log.Debug("invoking backend", "date", p.Date, "timeout", timeout)

	res, err := generate.Invoke(ctx, backend, p, timeout)
	if err != nil {
		return nil, err
	}

	out := &GenerateOutput{
		TaskID:  p.ID,
		Date:    p.Date,
		Backend: backend.Name(),
		DryRun:  input.DryRun,
	}
	if res.Emitted {
		out.Emitted = true
		return out, nil
	}

	return submit(ctx, env, out, SubmitInput{
		Date:         p.Date,
		Text:         res.Text,
		TaskID:       p.ID,
		Format:       format,
		Theme:        theme,
		Output:       output,
		DryRun:       input.DryRun,
		NoPersistent: input.NoPersistent,
		Strict:       input.Strict,
	})
}

// SubmitInput contains parameters for the Submit operation.
type SubmitInput struct {
	Date         string
	Text         string // entry markdown written by the agent
	TaskID       string
	Format       string
	Theme        string
	Output       string
	DryRun       bool
	NoPersistent bool
	Strict       bool
}

// Submit finishes a generation whose entry was written elsewhere, typically
// by an agent answering an emitted task: lint, render, then save.
func Submit(ctx context.Context, env *Env, input SubmitInput) (*GenerateOutput, error) {
	if !entry.IsDate(input.Date) {
		return nil, errors.NewValidation(fmt.Sprintf("date must be YYYY-MM-DD, got %q", input.Date))
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewValidation("entry text is required")
	}
	input.Format = firstNonEmpty(input.Format, env.Config.Format, render.FormatPDF)
	input.Theme = firstNonEmpty(input.Theme, env.Config.Theme, render.DefaultTheme)
	if input.Output == "" {
		input.Output = filepath.Join(env.DiaryDir(), RenderedDirName, input.Date+render.Extension(input.Format))
	}
	if !input.DryRun {
		if err := render.CheckOutput(input.Format, input.Output); err != nil {
			return nil, err
		}
	}

	out := &GenerateOutput{
		TaskID:  input.TaskID,
		Date:    input.Date,
		Backend: generate.BackendAgent,
		DryRun:  input.DryRun,
	}
	return submit(ctx, env, out, input)
}

func submit(ctx context.Context, env *Env, out *GenerateOutput, input SubmitInput) (*GenerateOutput, error) {
	log := env.logger().With("task_id", input.TaskID, "backend", out.Backend)

	lint := entry.Lint(entry.LintInput{Text: input.Text, Templates: env.templates()})
	out.Lint = lint
	if len(lint.MissingSections) > 0 {
		if input.Strict {
			return nil, errors.NewEntryTooThin(lint.MissingSections)
		}
		log.Warn("entry is missing sections", "missing", lint.MissingSections)
	}
	if lint.MissingTitle {
		log.Warn("entry has no dated title line")
	}

	save := SaveInput{Date: input.Date, Text: input.Text, TaskID: input.TaskID, NoPersistent: input.NoPersistent}

	if input.DryRun {
		save.DryRun = true
		saved, err := SaveEntry(ctx, env, save)
		if err != nil {
			return nil, err
		}
		out.Entry = saved
		printDryRun(env, input.Text, input.Output, saved)
		return out, nil
	}

	// Lay out first so a render failure writes nothing; the document is
	// committed last so a failed save leaves no document.
	doc := singleEntryDocument(env, input.Date, input.Theme, input.Text)
	data, err := render.Prepare(doc, input.Format, input.Output)
	if err != nil {
		return nil, err
	}

	saved, err := SaveEntry(ctx, env, save)
	if err != nil {
		return nil, err
	}
	out.Entry = saved

	if err := render.Commit(input.Output, data); err != nil {
		return nil, err
	}
	log.Info("rendered document", "path", input.Output, "format", input.Format, "theme", input.Theme)
	out.Document = input.Output
	out.Format = input.Format
	out.Theme = input.Theme

	recordRender(env, input.Output, input.Format, input.Theme, []string{input.Date})
	return out, nil
}

func singleEntryDocument(env *Env, date, theme, text string) *render.Document {
	templates := env.templates()
	return &render.Document{
		Title:       env.Config.Title,
		Subtitle:    DefaultSubtitle,
		Author:      env.Config.Author,
		Theme:       theme,
		GeneratedAt: env.now(),
		Entries: []render.Entry{{
			Date:      date,
			Title:     entry.DisplayTitle(text, date, templates),
			Highlight: entry.Highlight(text),
			Body:      text,
		}},
	}
}

func printDryRun(env *Env, text, document string, saved *SaveOutput) {
	w := env.stdout()
	fmt.Fprintln(w, strings.TrimSpace(text))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[dry run] would write:")
	fmt.Fprintf(w, "  document: %s\n", document)
	fmt.Fprintf(w, "  entry:    %s (%d words)\n", saved.Path, saved.Words)
	for _, a := range saved.Archives {
		fmt.Fprintf(w, "  archive:  %s\n", a)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
