package resolver

import "strings"

// BuildPrompt renders the single prompt sent to the remote tier.
func BuildPrompt(persona, recentContext, question string) string {
	var b strings.Builder
	if persona = strings.TrimSpace(persona); persona != "" {
		b.WriteString(persona)
		b.WriteString("\n\n")
	}
	b.WriteString("Previous conversation:\n")
	b.WriteString(recentContext)
	b.WriteString("\n\nCurrent question: ")
	b.WriteString(question)
	return b.String()
}
