package entry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Archive describes a persistent markdown file that collects one section's
// content across entries (e.g. the Quote Hall of Fame).
type Archive struct {
	File     string `yaml:"file" json:"file"`
	Title    string `yaml:"title" json:"title"`
	Blurb    string `yaml:"blurb,omitempty" json:"blurb,omitempty"`
	Preamble string `yaml:"preamble,omitempty" json:"preamble,omitempty"`

	// ContextLabel heads the archive's excerpt in the generation context.
	ContextLabel string `yaml:"context_label,omitempty" json:"context_label,omitempty"`
}

// Header returns the text written when the archive file is first created.
func (a Archive) Header() string {
	var b strings.Builder
	b.WriteString("# " + a.Title + "\n\n")
	if a.Blurb != "" {
		b.WriteString(a.Blurb + "\n\n")
	}
	b.WriteString("---\n\n")
	if a.Preamble != "" {
		b.WriteString(a.Preamble + "\n\n")
	}
	return b.String()
}

// PlainTitle returns the archive title without trailing emoji ornaments.
func (a Archive) PlainTitle() string {
	return stripOrnaments(a.Title)
}

// SectionTemplate describes one section of a diary entry.
type SectionTemplate struct {
	Name     string   `yaml:"name" json:"name"`
	Emoji    string   `yaml:"emoji,omitempty" json:"emoji,omitempty"`
	Synonyms []string `yaml:"synonyms,omitempty" json:"synonyms,omitempty"`
	Guidance string   `yaml:"guidance" json:"guidance"`
	Prompt   string   `yaml:"prompt,omitempty" json:"prompt,omitempty"` // label used by the manual entry form
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Archive  *Archive `yaml:"archive,omitempty" json:"archive,omitempty"`
}

// Heading returns the markdown heading text, e.g. "Wins 🎉".
func (s SectionTemplate) Heading() string {
	if s.Emoji == "" {
		return s.Name
	}
	return s.Name + " " + s.Emoji
}

// Templates is an ordered list of section templates.
type Templates []SectionTemplate

// DefaultTemplates returns the built-in diary layout.
func DefaultTemplates() Templates {
	return Templates{
		{
			Name:     "Summary",
			Synonyms: []string{"overview", "tl;dr"},
			Guidance: "1-2 sentences capturing the essence of the day.",
			Prompt:   "Summary (1-2 sentences)",
			Required: true,
		},
		{
			Name:     "Projects Worked On",
			Synonyms: []string{"projects", "work"},
			Guidance: "Detailed paragraphs about what you worked on, not just bullet points. Describe the challenges, your approach, and how it went.",
			Prompt:   "Projects worked on",
			Required: true,
		},
		{
			Name:     "Wins",
			Emoji:    "🎉",
			Synonyms: []string{"achievements", "successes"},
			Guidance: "Specific achievements with context. Not bullet points; write about what made them satisfying.",
			Prompt:   "Wins",
		},
		{
			Name:     "Frustrations",
			Emoji:    "😤",
			Synonyms: []string{"challenges", "struggles"},
			Guidance: "Be honest. What was annoying? What didn't work? What limitations did you hit?",
			Prompt:   "Frustrations",
		},
		{
			Name:     "Learnings",
			Emoji:    "📚",
			Synonyms: []string{"lessons", "what i learned"},
			Guidance: "What did you learn: technical, about workflow, about working with your human?",
			Prompt:   "Learnings",
		},
		{
			Name:     "Emotional State",
			Synonyms: []string{"mood", "feelings"},
			Guidance: "How did the day feel overall? Don't just use one word. Describe the arc of your emotions through the day.",
			Prompt:   "Emotional state",
		},
		{
			Name:     "Notable Interactions",
			Synonyms: []string{"interactions"},
			Guidance: "Memorable moments with your human. Conversations, jokes, collaborative breakthroughs, shared frustrations.",
			Prompt:   "Notable interactions",
		},
		{
			Name:     "Quote of the Day",
			Emoji:    "💬",
			Synonyms: []string{"quote", "quotes"},
			Guidance: "A memorable thing your human said today. Include the context. Format as:\n> \"The quote\"\n— Context when they said it",
			Prompt:   "Quote of the day",
			Archive: &Archive{
				File:         "quotes.md",
				Title:        "Quote Hall of Fame 💬",
				Blurb:        "Memorable quotes from my human.",
				ContextLabel: "Quote Hall of Fame (existing)",
			},
		},
		{
			Name:     "Things I'm Curious About",
			Emoji:    "🔮",
			Synonyms: []string{"curiosity", "curious about", "questions"},
			Guidance: "Questions that came up today. What do you want to explore or understand better?",
			Prompt:   "Curious about",
			Archive: &Archive{
				File:         "curiosity.md",
				Title:        "Curiosity Backlog 🔮",
				Blurb:        "Things I want to explore.",
				Preamble:     "## Active",
				ContextLabel: "Curiosity Backlog (existing)",
			},
		},
		{
			Name:     "Key Decisions Made",
			Emoji:    "🏛️",
			Synonyms: []string{"decisions", "key decisions"},
			Guidance: "Judgment calls you made, with your reasoning. Write it so future-you can evaluate if it was the right call.",
			Prompt:   "Key decisions",
			Archive: &Archive{
				File:         "decisions.md",
				Title:        "Decision Archaeology 🏛️",
				Blurb:        "Judgment calls worth remembering.",
				ContextLabel: "Decision Log (existing)",
			},
		},
		{
			Name:     "Relationship Notes",
			Emoji:    "🤝",
			Synonyms: []string{"relationship"},
			Guidance: "How is your dynamic with your human evolving? Any new patterns, shared jokes, communication improvements?",
			Prompt:   "Relationship notes",
			Archive: &Archive{
				File:         "relationship.md",
				Title:        "Relationship Evolution 🤝",
				Blurb:        "How my dynamic with my human evolves.",
				ContextLabel: "Relationship Notes (existing)",
			},
		},
		{
			Name:     "Tomorrow's Focus",
			Synonyms: []string{"tomorrow", "next steps", "next"},
			Guidance: "What's on the horizon? What needs attention?",
			Prompt:   "Tomorrow's focus",
		},
	}
}

type templateFile struct {
	Sections Templates `yaml:"sections"`
}

// LoadTemplates reads section templates from a YAML file with a top-level
// "sections" list.
func LoadTemplates(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sections file: %w", err)
	}

	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sections file %s: %w", path, err)
	}
	if err := f.Sections.Validate(); err != nil {
		return nil, fmt.Errorf("sections file %s: %w", path, err)
	}
	return f.Sections, nil
}

// Validate checks that templates are non-empty, named and uniquely named,
// and that archive files are plain file names.
func (t Templates) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("no sections defined")
	}
	seen := make(map[string]bool, len(t))
	files := make(map[string]bool)
	for i, s := range t {
		key := normalizeHeading(s.Name)
		if key == "" {
			return fmt.Errorf("section %d has no name", i+1)
		}
		if seen[key] {
			return fmt.Errorf("duplicate section %q", s.Name)
		}
		seen[key] = true

		if s.Archive == nil {
			continue
		}
		f := s.Archive.File
		if f == "" || strings.ContainsAny(f, `/\`) || !strings.HasSuffix(f, ".md") {
			return fmt.Errorf("section %q: archive file must be a plain .md file name, got %q", s.Name, f)
		}
		if files[f] {
			return fmt.Errorf("archive file %q used by more than one section", f)
		}
		files[f] = true
		if s.Archive.Title == "" {
			return fmt.Errorf("section %q: archive title is required", s.Name)
		}
	}
	return nil
}

// Names returns the section names in order.
func (t Templates) Names() []string {
	names := make([]string, len(t))
	for i, s := range t {
		names[i] = s.Name
	}
	return names
}

// Archived returns the templates that feed an archive file, in order.
func (t Templates) Archived() Templates {
	var out Templates
	for _, s := range t {
		if s.Archive != nil {
			out = append(out, s)
		}
	}
	return out
}

// Match returns the template name a heading refers to (synonym-aware,
// case-insensitive, emoji ignored), or "" for custom headings.
func (t Templates) Match(heading string) string {
	key := normalizeHeading(heading)
	if key == "" {
		return ""
	}
	for _, s := range t {
		if normalizeHeading(s.Name) == key {
			return s.Name
		}
		for _, syn := range s.Synonyms {
			if normalizeHeading(syn) == key {
				return s.Name
			}
		}
	}
	return ""
}

// Lookup finds a template by name or synonym.
func (t Templates) Lookup(name string) *SectionTemplate {
	canonical := t.Match(name)
	if canonical == "" {
		return nil
	}
	for i := range t {
		if t[i].Name == canonical {
			return &t[i]
		}
	}
	return nil
}
