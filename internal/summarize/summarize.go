// Package summarize turns a meeting transcript into a structured
// Markdown summary via an OpenAI-compatible chat completions API.
package summarize

import (
	"context"
	"strings"
)

const systemPrompt = "You are a precise meeting summarizer. Produce a well-structured Markdown summary. " +
	"Use the exact section headings provided. Be thorough but concise. " +
	"If a section has no relevant content, write 'None identified.'"

// Summarizer produces a Markdown summary of a transcript. The context
// string carries optional pre-meeting notes embedded into the prompt.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, context string) (string, error)
}

// BuildPrompt assembles the user prompt: pre-meeting context (when
// present), the required section headings, and the transcript.
func BuildPrompt(transcript, meetingContext string) string {
	var b strings.Builder
	b.WriteString("Summarize the following meeting transcript.\n\n")

	if meetingContext != "" {
		b.WriteString("## Pre-Meeting Context\n\n")
		b.WriteString(meetingContext)
		b.WriteString("\n\n")
	}

	b.WriteString("## Required Sections\n\n")
	b.WriteString("### Overview\nA 2-3 sentence high-level summary of what the meeting covered.\n\n")
	b.WriteString("### Key Points\nBullet list of the most important topics discussed.\n\n")
	b.WriteString("### Decisions\nBullet list of decisions that were made (who decided what).\n\n")
	b.WriteString("### Action Items\nBullet list formatted as: **[Owner]** — task description (deadline if mentioned).\n\n")
	b.WriteString("### Open Questions\nBullet list of unresolved questions or topics deferred to a future meeting.\n\n")
	b.WriteString("### Participants\nList of identifiable speakers/participants (if discernible from context).\n\n")
	b.WriteString("---\n\n## Transcript\n\n")
	b.WriteString(transcript)

	return b.String()
}
