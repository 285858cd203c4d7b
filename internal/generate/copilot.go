package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	copilot "github.com/github/copilot-sdk/go"

	"github.com/hpungsan/chronicle/internal/task"
)

// CopilotOptions configures the Copilot sub-agent backend.
type CopilotOptions struct {
	// CLIPath overrides the copilot CLI binary location.
	CLIPath string `mapstructure:"cli_path"`
	// Cwd is the working directory of the spawned agent.
	Cwd string `mapstructure:"cwd"`
	// LogLevel is passed to the copilot CLI. Defaults to "error".
	LogLevel string `mapstructure:"log_level"`
	// Model is used when the payload carries no routing model.
	Model string `mapstructure:"model"`
}

// copilotSession is an interface over [*copilot.Session].
type copilotSession interface {
	On(handler copilot.SessionEventHandler) func()
	SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error)
}

// copilotClient is an interface over [*copilot.Client].
type copilotClient interface {
	CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error)
	Stop() error
}

type copilotClientWrapper struct {
	inner *copilot.Client
}

func (w *copilotClientWrapper) CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	sess, err := w.inner.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (w *copilotClientWrapper) Stop() error {
	return w.inner.Stop()
}

func newCopilotClient(opts *copilot.ClientOptions) copilotClient {
	return &copilotClientWrapper{inner: copilot.NewClient(opts)}
}

// CopilotBackend spawns a Copilot sub-agent session, sends the task prompt
// and waits for the final assistant message.
type CopilotBackend struct {
	opts      CopilotOptions
	logger    *slog.Logger
	newClient func(*copilot.ClientOptions) copilotClient
}

// NewCopilot creates a Copilot backend.
func NewCopilot(opts CopilotOptions, logger *slog.Logger) *CopilotBackend {
	if opts.LogLevel == "" {
		opts.LogLevel = "error"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CopilotBackend{opts: opts, logger: logger, newClient: newCopilotClient}
}

func (b *CopilotBackend) Name() string { return BackendCopilot }

func (b *CopilotBackend) Generate(ctx context.Context, p *task.Payload) (*Result, error) {
	client := b.newClient(&copilot.ClientOptions{
		CLIPath:         b.opts.CLIPath,
		Cwd:             b.opts.Cwd,
		AutoStart:       copilot.Bool(true),
		AutoRestart:     copilot.Bool(false),
		UseLoggedInUser: copilot.Bool(true),
		LogLevel:        b.opts.LogLevel,
	})
	defer func() {
		if err := client.Stop(); err != nil {
			b.logger.ErrorContext(ctx, "error stopping copilot client", "error", err)
		}
	}()

	model := b.opts.Model
	if p.Routing != nil && p.Routing.Model != "" {
		model = p.Routing.Model
	}

	session, err := client.CreateSession(ctx, &copilot.SessionConfig{
		Model:     model,
		Streaming: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start copilot session: %w", err)
	}

	unsubscribe := session.On(b.logEvent)
	defer unsubscribe()

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: p.System + "\n\n---\n\n" + p.Prompt,
		Mode:   "enqueue",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send prompt: %w", err)
	}
	if resp == nil || resp.Data.Content == nil || strings.TrimSpace(*resp.Data.Content) == "" {
		return nil, fmt.Errorf("no response content")
	}

	return &Result{Text: strings.TrimSpace(*resp.Data.Content) + "\n"}, nil
}

func (b *CopilotBackend) logEvent(event copilot.SessionEvent) {
	if !b.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{"type", event.Type}
	attrs = addIf(attrs, "content", event.Data.Content)
	attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
	attrs = addIf(attrs, "toolName", event.Data.ToolName)

	b.logger.Debug("copilot event", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}
