// Package task builds the portable generation task handed to an external
// agent-spawning facility.
package task

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
)

// Kind identifies a diary generation task.
const Kind = "diary_entry"

// DefaultMaxTokens is used when no max_tokens is configured.
const DefaultMaxTokens = 2000

// Formats lists the supported output formats.
var Formats = []string{"pdf", "html", "markdown"}

// Routing carries optional agent/model hints. Empty fields are omitted so the
// invoked facility applies its own defaults.
type Routing struct {
	Agent string `json:"agent,omitempty"`
	Model string `json:"model,omitempty"`
}

// IsZero reports whether no routing hint is set.
func (r Routing) IsZero() bool {
	return r.Agent == "" && r.Model == ""
}

// Payload is the diarization request. Field names are a stable external contract.
type Payload struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Date      string   `json:"date"`
	Content   string   `json:"content"`
	Format    string   `json:"format"`
	Theme     string   `json:"theme"`
	System    string   `json:"system"`
	Prompt    string   `json:"prompt"`
	MaxTokens int      `json:"max_tokens"`
	Sections  []string `json:"sections"`
	Routing   *Routing `json:"routing,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

// Input contains parameters for building a payload.
type Input struct {
	Date      string // YYYY-MM-DD
	Content   string
	Format    string
	Theme     string
	Themes    []string // registered theme names; empty skips the check
	Templates entry.Templates
	MaxTokens int
	Routing   Routing
	Now       time.Time // zero = time.Now()
}

// Build validates input and assembles a Payload. It has no side effects.
func Build(input Input) (*Payload, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.NewValidation("content is required")
	}
	if !entry.IsDate(input.Date) {
		return nil, errors.NewValidation(fmt.Sprintf("date must be YYYY-MM-DD, got %q", input.Date))
	}
	if !slices.Contains(Formats, input.Format) {
		return nil, errors.NewUnsupported("format", input.Format, Formats)
	}
	if strings.TrimSpace(input.Theme) == "" {
		return nil, errors.NewValidation("theme is required")
	}
	if len(input.Themes) > 0 && !slices.Contains(input.Themes, input.Theme) {
		return nil, errors.NewUnsupported("theme", input.Theme, input.Themes)
	}
	templates := input.Templates
	if len(templates) == 0 {
		templates = entry.DefaultTemplates()
	}
	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	p := &Payload{
		ID:        id.String(),
		Kind:      Kind,
		Date:      input.Date,
		Content:   input.Content,
		Format:    input.Format,
		Theme:     input.Theme,
		System:    SystemPrompt,
		Prompt:    UserPrompt(input.Date, input.Content, templates),
		MaxTokens: maxTokens,
		Sections:  templates.Names(),
		CreatedAt: now.Unix(),
	}
	if !input.Routing.IsZero() {
		r := input.Routing
		p.Routing = &r
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Marshal serializes a payload as indented JSON without HTML escaping.
func Marshal(p *Payload) ([]byte, error) {
	var b strings.Builder
	if err := Encode(&b, p); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// Encode writes a payload as indented JSON without HTML escaping.
func Encode(w io.Writer, p *Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(p)
}

// Parse decodes and validates a payload.
func Parse(data []byte) (*Payload, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("invalid task JSON: %v", err))
	}
	return &p, nil
}
