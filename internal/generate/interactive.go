package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/task"
)

// InteractiveBackend asks the user for a title and each section and composes
// the entry from the answers.
type InteractiveBackend struct {
	in        io.Reader
	out       io.Writer
	templates entry.Templates

	// ask fills the answers; replaced in tests.
	ask func(ctx context.Context, date string, title *string, bodies []*string) error
}

// NewInteractive creates a manual-entry backend reading from in and drawing on out.
func NewInteractive(in io.Reader, out io.Writer, templates entry.Templates) *InteractiveBackend {
	if len(templates) == 0 {
		templates = entry.DefaultTemplates()
	}
	b := &InteractiveBackend{in: in, out: out, templates: templates}
	b.ask = b.runForm
	return b
}

func (b *InteractiveBackend) Name() string { return BackendInteractive }

func (b *InteractiveBackend) Generate(ctx context.Context, p *task.Payload) (*Result, error) {
	var title string
	bodies := make([]*string, len(b.templates))
	for i := range bodies {
		bodies[i] = new(string)
	}

	if err := b.ask(ctx, p.Date, &title, bodies); err != nil {
		return nil, fmt.Errorf("manual entry failed: %w", err)
	}

	answers := make(map[string]string, len(b.templates))
	for i, t := range b.templates {
		answers[t.Name] = *bodies[i]
	}
	return &Result{Text: entry.Compose(p.Date, title, answers, b.templates)}, nil
}

func (b *InteractiveBackend) runForm(ctx context.Context, date string, title *string, bodies []*string) error {
	fields := []huh.Field{
		huh.NewInput().
			Title("Day title").
			Description("Diary entry for " + date).
			Placeholder("The Day the Parser Finally Behaved").
			Value(title),
	}
	for i, t := range b.templates {
		label := t.Prompt
		if label == "" {
			label = t.Name
		}
		field := huh.NewText().
			Title(label).
			Description(t.Guidance).
			Value(bodies[i])
		if t.Required {
			name := t.Name
			field = field.Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("%s is required", name)
				}
				return nil
			})
		}
		fields = append(fields, field)
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(b.in).
		WithOutput(b.out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := b.in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	return form.RunWithContext(ctx)
}
