package entry

// LintInput contains parameters for linting a generated entry.
type LintInput struct {
	Text      string
	Templates Templates
	MaxChars  int // 0 = unlimited
	AllowThin bool
}

// LintResult contains the results of linting an entry.
type LintResult struct {
	Valid           bool     `json:"valid"`
	MissingSections []string `json:"missing_sections,omitempty"` // required template names absent or placeholder-only
	MissingTitle    bool     `json:"missing_title,omitempty"`
	TooLarge        bool     `json:"too_large,omitempty"`
	ActualChars     int      `json:"actual_chars"`
	Words           int      `json:"words"`
}

// Lint checks an entry against the section templates and returns a LintResult.
func Lint(input LintInput) *LintResult {
	result := &LintResult{
		Valid:       true,
		ActualChars: CountChars(input.Text),
		Words:       WordCount(input.Text),
	}

	if input.MaxChars > 0 && result.ActualChars > input.MaxChars {
		result.TooLarge = true
		result.Valid = false
	}

	if Title(input.Text) == "" {
		result.MissingTitle = true
	}

	if !input.AllowThin {
		result.MissingSections = findMissingSections(input.Text, input.Templates)
		if len(result.MissingSections) > 0 {
			result.Valid = false
		}
	}

	return result
}

func findMissingSections(text string, templates Templates) []string {
	sections := ParseSections(text, templates)

	var missing []string
	for _, t := range templates {
		if !t.Required {
			continue
		}
		sec := FindSection(sections, templates, t.Name)
		if sec == nil || sec.IsPlaceholder {
			missing = append(missing, t.Name)
		}
	}
	return missing
}
