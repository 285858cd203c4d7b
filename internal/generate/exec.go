package generate

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/task"
)

// execWaitDelay bounds how long Wait keeps reading output after the command
// is killed or exits while a descendant still holds its stdout or stderr.
const execWaitDelay = 2 * time.Second

// ExecOptions configures the exec backend.
type ExecOptions struct {
	// Command is the agent-spawning program to run.
	Command string `mapstructure:"command"`
	// Args are passed to Command.
	Args []string `mapstructure:"args"`
	// Env adds variables to the inherited environment.
	Env map[string]string `mapstructure:"env"`
	// Dir is the working directory. Defaults to the current directory.
	Dir string `mapstructure:"dir"`
	// Input selects what is written to stdin: "json" (the payload, default)
	// or "prompt" (system prompt and user prompt as plain text).
	Input string `mapstructure:"input"`
}

// ExecBackend spawns an external command, writes the task to its stdin and
// reads the entry from its stdout.
type ExecBackend struct {
	opts   ExecOptions
	logger *slog.Logger
}

// NewExec creates an exec backend.
func NewExec(opts ExecOptions, logger *slog.Logger) (*ExecBackend, error) {
	if strings.TrimSpace(opts.Command) == "" {
		return nil, errors.NewValidation("exec backend requires generation.options.command")
	}
	switch opts.Input {
	case "":
		opts.Input = "json"
	case "json", "prompt":
	default:
		return nil, errors.NewUnsupported("exec input", opts.Input, []string{"json", "prompt"})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecBackend{opts: opts, logger: logger}, nil
}

func (b *ExecBackend) Name() string { return BackendExec }

func (b *ExecBackend) Generate(ctx context.Context, p *task.Payload) (*Result, error) {
	stdin, err := b.stdin(p)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, b.opts.Command, b.opts.Args...)
	cmd.Dir = b.opts.Dir
	cmd.WaitDelay = execWaitDelay
	killProcessGroup(cmd)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Env = append(cmd.Environ(),
		"CHRONICLE_TASK_ID="+p.ID,
		"CHRONICLE_DATE="+p.Date,
		fmt.Sprintf("CHRONICLE_MAX_TOKENS=%d", p.MaxTokens),
	)
	if p.Routing != nil {
		if p.Routing.Agent != "" {
			cmd.Env = append(cmd.Env, "CHRONICLE_AGENT="+p.Routing.Agent)
		}
		if p.Routing.Model != "" {
			cmd.Env = append(cmd.Env, "CHRONICLE_MODEL="+p.Routing.Model)
		}
	}
	keys := make([]string, 0, len(b.opts.Env))
	for k := range b.opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+b.opts.Env[k])
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.logger.Debug("spawning generation command", "command", b.opts.Command, "args", b.opts.Args, "task_id", p.ID)

	err = cmd.Run()
	errOutput := strings.TrimSpace(stderr.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return nil, errors.NewGenerationStatus(BackendExec, exitErr.ExitCode(), errOutput)
		}
		return nil, errors.NewGeneration(BackendExec, err)
	}
	if errOutput != "" {
		b.logger.Debug("generation command stderr", "stderr", errOutput)
	}

	return &Result{Text: strings.TrimSpace(stdout.String()) + "\n"}, nil
}

func (b *ExecBackend) stdin(p *task.Payload) ([]byte, error) {
	if b.opts.Input == "prompt" {
		return []byte(p.System + "\n\n" + p.Prompt + "\n"), nil
	}
	return task.Marshal(p)
}
