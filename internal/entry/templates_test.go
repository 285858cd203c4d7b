package entry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTemplates(t *testing.T) {
	templates := DefaultTemplates()
	require.NoError(t, templates.Validate())
	require.Len(t, templates, 12)
	require.Equal(t, "Summary", templates[0].Name)
	require.Equal(t, "Tomorrow's Focus", templates[len(templates)-1].Name)

	archived := templates.Archived()
	require.Len(t, archived, 4)
	files := make([]string, len(archived))
	for i, a := range archived {
		files[i] = a.Archive.File
	}
	require.Equal(t, []string{"quotes.md", "curiosity.md", "decisions.md", "relationship.md"}, files)
}

func TestArchive_Header(t *testing.T) {
	templates := DefaultTemplates()

	quotes := templates.Lookup("Quote of the Day").Archive
	require.Equal(t, "# Quote Hall of Fame 💬\n\nMemorable quotes from my human.\n\n---\n\n", quotes.Header())
	require.Equal(t, "Quote Hall of Fame", quotes.PlainTitle())

	curiosity := templates.Lookup("curiosity").Archive
	require.Equal(t, "# Curiosity Backlog 🔮\n\nThings I want to explore.\n\n---\n\n## Active\n\n", curiosity.Header())

	decisions := templates.Lookup("Key Decisions Made").Archive
	require.Equal(t, "Decision Archaeology", decisions.PlainTitle())
}

func TestSectionTemplate_Heading(t *testing.T) {
	require.Equal(t, "Wins 🎉", DefaultTemplates().Lookup("wins").Heading())
	require.Equal(t, "Summary", DefaultTemplates().Lookup("summary").Heading())
}

func TestTemplates_Match(t *testing.T) {
	templates := DefaultTemplates()
	tests := []struct {
		heading string
		want    string
	}{
		{"Wins 🎉", "Wins"},
		{"wins", "Wins"},
		{"Things I’m Curious About 🔮", "Things I'm Curious About"},
		{"Key Decisions Made 🏛️", "Key Decisions Made"},
		{"TL;DR", "Summary"},
		{"Next Steps", "Tomorrow's Focus"},
		{"Side Quest", ""},
		{"🎉", ""},
	}
	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			require.Equal(t, tt.want, templates.Match(tt.heading))
		})
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sections.yaml")
	body := `sections:
  - name: Highlights
    emoji: "✨"
    required: true
    guidance: The best parts of the day.
  - name: Gratitude
    synonyms: [thanks]
    guidance: Who or what are you grateful for?
    archive:
      file: gratitude.md
      title: Gratitude Jar
      blurb: Small thank-yous.
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	templates, err := LoadTemplates(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Highlights", "Gratitude"}, templates.Names())
	require.True(t, templates[0].Required)
	require.Equal(t, "Highlights ✨", templates[0].Heading())
	require.Equal(t, "Gratitude", templates.Match("Thanks"))
	require.Equal(t, "gratitude.md", templates[1].Archive.File)
}

func TestLoadTemplates_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty", "sections: []\n", "no sections"},
		{"unnamed", "sections:\n  - guidance: x\n", "has no name"},
		{"duplicate", "sections:\n  - name: Wins\n  - name: wins\n", "duplicate"},
		{"archive path", "sections:\n  - name: A\n    archive: {file: ../a.md, title: A}\n", "plain .md"},
		{"archive title", "sections:\n  - name: A\n    archive: {file: a.md}\n", "title is required"},
		{"bad yaml", "sections: [\n", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sections.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0600))

			_, err := LoadTemplates(path)
			require.Error(t, err)
			require.True(t, strings.Contains(err.Error(), tt.wantErr), "error %q should contain %q", err, tt.wantErr)
		})
	}
}

func TestLoadTemplates_Missing(t *testing.T) {
	_, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
