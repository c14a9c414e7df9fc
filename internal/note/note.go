// Package note renders the final Markdown meeting note with YAML
// frontmatter, Obsidian-style callouts, and action-item checkboxes.
package note

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the structured information pulled from an AI summary's
// leading "Title:" / "Tags:" / "Description:" lines and its
// Participants section.
type Metadata struct {
	Title        string
	Description  string
	Tags         []string
	Participants []string
}

// Config holds the user's note preferences.
type Config struct {
	Domain string
	Tags   []string
}

// Meeting gathers everything the note renders.
type Meeting struct {
	Title           string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	Description     string
	AITags          []string
	Participants    []string
	DurationSeconds int
	OutputDir       string
	WhisperModel    string
	ContextText     string
	SummaryText     string
	TranscriptText  string
	ActionItems     []string
}

type frontmatter struct {
	Title        string   `yaml:"title,omitempty"`
	Date         string   `yaml:"date"`
	Created      string   `yaml:"created"`
	Time         string   `yaml:"time"`
	Type         string   `yaml:"type"`
	Domain       string   `yaml:"domain,omitempty"`
	Status       string   `yaml:"status"`
	Description  string   `yaml:"description,omitempty"`
	Tags         []string `yaml:"tags"`
	Participants []string `yaml:"participants,omitempty"`
	Duration     string   `yaml:"duration,omitempty"`
	Source       string   `yaml:"source,omitempty"`
	WhisperModel string   `yaml:"whisper_model,omitempty"`
}

// ExtractActionItems pulls the bullet lines out of the summary's
// "Action Items" section. Collection stops at the next heading.
func ExtractActionItems(summary string) []string {
	var items []string
	inSection := false
	for _, line := range strings.Split(summary, "\n") {
		if strings.Contains(line, "### Action Items") || strings.Contains(line, "## Action Items") {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(line, "#") {
			break
		}
		if inSection && strings.HasPrefix(line, "- ") {
			items = append(items, line[2:])
		}
	}
	return items
}

// ExtractMetadata reads the summary's metadata lines and Participants
// section. Tags are lowercased; participant names lose any trailing
// parenthesized role.
func ExtractMetadata(summary string) Metadata {
	var meta Metadata
	inParticipants := false
	for _, line := range strings.Split(summary, "\n") {
		switch {
		case strings.HasPrefix(line, "Title: "):
			meta.Title = strings.TrimSpace(line[len("Title: "):])
			inParticipants = false
		case strings.HasPrefix(line, "Tags: "):
			for _, tag := range strings.Split(line[len("Tags: "):], ",") {
				tag = strings.ToLower(strings.TrimSpace(tag))
				if tag != "" {
					meta.Tags = append(meta.Tags, tag)
				}
			}
			inParticipants = false
		case strings.HasPrefix(line, "Description: "):
			meta.Description = strings.TrimSpace(line[len("Description: "):])
			inParticipants = false
		case strings.Contains(line, "### Participants") || strings.Contains(line, "## Participants"):
			inParticipants = true
		case inParticipants && strings.HasPrefix(line, "#"):
			inParticipants = false
		case inParticipants && strings.HasPrefix(line, "- "):
			name := line[2:]
			if paren := strings.LastIndex(name, "("); paren >= 0 {
				name = name[:paren]
			}
			name = strings.TrimSpace(name)
			if name != "" {
				meta.Participants = append(meta.Participants, name)
			}
		}
	}
	return meta
}

// StripMetadataBlock removes the metadata lines and any blank lines
// preceding the first heading, so the summary body starts clean.
func StripMetadataBlock(summary string) string {
	var out strings.Builder
	foundHeading := false
	for _, line := range strings.Split(summary, "\n") {
		if strings.HasPrefix(line, "Title: ") || strings.HasPrefix(line, "Tags: ") ||
			strings.HasPrefix(line, "Description: ") {
			continue
		}
		if !foundHeading && strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			foundHeading = true
		}
		if foundHeading {
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// Filename builds the note filename: Meeting_DATE_TIME with an
// optional sanitized title suffix.
func Filename(date, timeOfDay, title string) string {
	name := "Meeting_" + date + "_" + strings.ReplaceAll(timeOfDay, ":", "-")
	if safe := sanitizeTitle(title); safe != "" {
		name += "_" + safe
	}
	return name + ".md"
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '_',
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// firstOverviewLine grabs the first non-blank line after the Overview
// heading for use as a description fallback.
func firstOverviewLine(summary string) string {
	lines := strings.Split(summary, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "### Overview") {
			continue
		}
		for _, candidate := range lines[i+1:] {
			if strings.TrimSpace(candidate) != "" {
				return candidate
			}
		}
		break
	}
	return ""
}

func callout(b *strings.Builder, marker, body string) {
	b.WriteString(marker)
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// Write renders the meeting note into data.OutputDir and returns its
// path.
func Write(cfg Config, data Meeting) (string, error) {
	description := data.Description
	if description == "" {
		description = firstOverviewLine(data.SummaryText)
	}

	seen := map[string]struct{}{}
	var tags []string
	addTag := func(t string) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	addTag("meeting")
	for _, t := range data.AITags {
		addTag(t)
	}
	for _, t := range cfg.Tags {
		addTag(t)
	}

	fm := frontmatter{
		Title:        data.Title,
		Date:         data.Date,
		Created:      data.Date,
		Time:         data.Time,
		Type:         "meeting",
		Domain:       cfg.Domain,
		Status:       "processed",
		Description:  description,
		Tags:         tags,
		Duration:     formatDuration(data.DurationSeconds),
		Source:       data.OutputDir,
		WhisperModel: data.WhisperModel,
	}
	for _, p := range data.Participants {
		fm.Participants = append(fm.Participants, "[["+p+"]]")
	}

	fmBytes, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("encoding note frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmBytes)
	b.WriteString("---\n\n")

	if data.ContextText != "" {
		callout(&b, "> [!note] Pre-Meeting Context", data.ContextText)
	}
	if data.SummaryText != "" {
		callout(&b, "> [!summary] Meeting Summary", data.SummaryText)
	}

	actions := data.ActionItems
	if len(actions) == 0 {
		actions = ExtractActionItems(data.SummaryText)
	}
	if len(actions) > 0 {
		b.WriteString("## Action Items\n\n")
		for _, item := range actions {
			b.WriteString("- [ ] ")
			b.WriteString(item)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if data.TranscriptText != "" {
		callout(&b, "> [!abstract]- Full Transcript", data.TranscriptText)
	}

	if data.OutputDir != "" {
		b.WriteString("---\n*Raw files: `")
		b.WriteString(data.OutputDir)
		b.WriteString("`*\n")
	}

	path := filepath.Join(data.OutputDir, Filename(data.Date, data.Time, data.Title))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing meeting note: %w", err)
	}
	return path, nil
}
