// Package generate hands a task payload to a generation backend and returns
// the written entry.
package generate

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/task"
)

// Backend produces a diary entry for a payload.
type Backend interface {
	Name() string
	Generate(ctx context.Context, p *task.Payload) (*Result, error)
}

// Result is the outcome of a backend call.
type Result struct {
	Text    string // entry markdown; empty when Emitted
	Emitted bool   // payload was printed for an external orchestrator; nothing else to do
}

// Live backend names selectable through configuration.
const (
	BackendEmit    = "emit"
	BackendExec    = "exec"
	BackendCopilot = "copilot"
)

// Backends chosen by CLI mode rather than configuration. BackendAgent marks
// entries handed back through submit.
const (
	BackendReader      = "reader"
	BackendInteractive = "interactive"
	BackendAgent       = "agent"
)

// LiveBackends lists the names accepted for generation.backend.
var LiveBackends = []string{BackendExec, BackendCopilot}

// Deps are the process resources backends may use.
type Deps struct {
	Stdout    io.Writer
	Logger    *slog.Logger
	Templates entry.Templates
	Workdir   string
}

// New creates a backend by name with backend-specific options.
func New(name string, options map[string]any, deps Deps) (Backend, error) {
	switch name {
	case BackendEmit:
		return NewEmit(deps.Stdout), nil
	case BackendExec:
		var opts ExecOptions
		if err := decodeOptions(options, &opts); err != nil {
			return nil, err
		}
		return NewExec(opts, deps.Logger)
	case BackendCopilot:
		var opts CopilotOptions
		if err := decodeOptions(options, &opts); err != nil {
			return nil, err
		}
		if opts.Cwd == "" {
			opts.Cwd = deps.Workdir
		}
		return NewCopilot(opts, deps.Logger), nil
	case "":
		return nil, errors.NewValidation("no generation backend configured (set generation.backend, pass --backend, or use --emit-task)")
	default:
		return nil, errors.NewUnsupported("backend", name, LiveBackends)
	}
}

func decodeOptions(options map[string]any, out any) error {
	if len(options) == 0 {
		return nil
	}
	if err := mapstructure.Decode(options, out); err != nil {
		return errors.NewValidation(fmt.Sprintf("invalid generation.options: %v", err))
	}
	return nil
}

// Invoke calls the backend once, bounded by timeout when positive, and maps
// every failure onto the error taxonomy. There is no retry.
func Invoke(ctx context.Context, b Backend, p *task.Payload, timeout time.Duration) (*Result, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := b.Generate(callCtx, p)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, errors.NewCancelled("generation")
		case stderrors.Is(callCtx.Err(), context.DeadlineExceeded):
			return nil, errors.NewGeneration(b.Name(), fmt.Errorf("timed out after %s", timeout))
		}
		var cErr *errors.ChronicleError
		if stderrors.As(err, &cErr) {
			return nil, cErr
		}
		return nil, errors.NewGeneration(b.Name(), err)
	}

	if res == nil {
		return nil, errors.NewGeneration(b.Name(), fmt.Errorf("no result"))
	}
	if !res.Emitted && strings.TrimSpace(res.Text) == "" {
		return nil, errors.NewGeneration(b.Name(), fmt.Errorf("empty result"))
	}
	return res, nil
}
