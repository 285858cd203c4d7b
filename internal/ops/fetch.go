package ops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Date        string
	IncludeText *bool // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	Date   string          `json:"date"`
	Path   string          `json:"path"`
	Title  string          `json:"title"`
	Words  int             `json:"words"`
	Text   string          `json:"text,omitempty"`
	Record *db.EntryRecord `json:"record,omitempty"` // nil when not indexed
}

// Fetch reads the stored entry for a date.
func Fetch(env *Env, input FetchInput) (*FetchOutput, error) {
	if !entry.IsDate(input.Date) {
		return nil, errors.NewValidation(fmt.Sprintf("date must be YYYY-MM-DD, got %q", input.Date))
	}

	path := filepath.Join(env.DiaryDir(), input.Date+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(input.Date)
		}
		return nil, errors.NewInternal(err)
	}
	text := string(data)

	out := &FetchOutput{
		Date:  input.Date,
		Path:  path,
		Title: entry.DisplayTitle(text, input.Date, env.templates()),
		Words: entry.WordCount(text),
	}
	if input.IncludeText == nil || *input.IncludeText {
		out.Text = text
	}

	if env.DB != nil {
		rec, err := db.GetEntry(env.DB, input.Date)
		switch {
		case err == nil:
			out.Record = rec
		case !errors.Is(err, errors.ErrNotFound):
			env.logger().Warn("index lookup failed", "date", input.Date, "error", err)
		}
	}
	return out, nil
}
