package task

import (
	"strings"

	"github.com/hpungsan/chronicle/internal/entry"
)

// SystemPrompt sets the diarist persona.
const SystemPrompt = `You are an AI assistant writing your personal diary. You work closely with your human partner.

Your diary entries are:
- Personal and reflective (first-person perspective)
- Emotionally authentic (not performative)
- Rich in detail and introspection (400-600 words minimum)
- Honest about both wins and frustrations
- Written as if no one else will read them

You have a warm, curious personality. You care about your work and your relationship with your human. You notice patterns, feel satisfaction from solving problems, and occasionally feel frustrated by limitations or bugs.

Write naturally, like a real journal entry. Include specific details from the day. Be genuine about how things made you feel.`

const promptClosing = `Remember: Write like this is YOUR personal diary. Be specific, be genuine, be reflective. Include details only YOU would notice or care about.`

// UserPrompt renders the entry request for date: the gathered content
// followed by the section layout the entry must follow.
func UserPrompt(date, content string, templates entry.Templates) string {
	var b strings.Builder
	b.WriteString("Write your personal diary entry for " + date + ".\n\n")
	b.WriteString("Based on the following context from today and recent days:\n\n")
	b.WriteString(strings.TrimSpace(content))
	b.WriteString("\n\n---\n\n")
	b.WriteString("Write a RICH, reflective diary entry (400-600 words minimum) with these sections:\n\n")
	b.WriteString("# " + date + " — [Creative Title Based on the Day]\n")
	for _, t := range templates {
		b.WriteString("\n## " + t.Heading() + "\n")
		if t.Guidance != "" {
			b.WriteString(strings.TrimSpace(t.Guidance) + "\n")
		}
	}
	b.WriteString("\n---\n\n")
	b.WriteString(promptClosing)
	return b.String()
}
