package generate

import (
	"context"
	"io"

	"github.com/hpungsan/chronicle/internal/task"
)

// EmitBackend prints the payload as JSON for an external orchestrator and
// never contacts a generation facility.
type EmitBackend struct {
	w io.Writer
}

// NewEmit creates an emit backend writing to w.
func NewEmit(w io.Writer) *EmitBackend {
	return &EmitBackend{w: w}
}

func (b *EmitBackend) Name() string { return BackendEmit }

func (b *EmitBackend) Generate(_ context.Context, p *task.Payload) (*Result, error) {
	if err := task.Encode(b.w, p); err != nil {
		return nil, err
	}
	return &Result{Emitted: true}, nil
}
