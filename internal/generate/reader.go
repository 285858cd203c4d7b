package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/task"
)

// ReaderBackend returns an entry that was generated elsewhere, read from a
// file or standard input.
type ReaderBackend struct {
	source string
	open   func() (io.ReadCloser, error)
}

// FromFile creates a backend reading the entry from path.
func FromFile(path string) *ReaderBackend {
	return &ReaderBackend{
		source: path,
		open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, errors.NewNotFound(path)
				}
				return nil, errors.NewValidation(fmt.Sprintf("cannot read entry file: %v", err))
			}
			return f, nil
		},
	}
}

// FromReader creates a backend reading the entry from r (typically stdin).
func FromReader(name string, r io.Reader) *ReaderBackend {
	return &ReaderBackend{
		source: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	}
}

func (b *ReaderBackend) Name() string { return BackendReader }

func (b *ReaderBackend) Generate(ctx context.Context, _ *task.Payload) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := b.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("reading entry from %s: %v", b.source, err))
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewValidation(fmt.Sprintf("no entry content in %s", b.source))
	}
	return &Result{Text: string(data)}, nil
}
