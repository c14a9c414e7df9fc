package note

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSummary = `Title: Q1 Roadmap Planning Session
Tags: Roadmap, Planning, Q1
Description: Quarterly planning for the roadmap.

### Overview

The team planned Q1 priorities.

### Key Points

- Budget is fixed

### Action Items

- **[Alice]** — draft the roadmap (Friday)
- **[Bob]** — book the offsite

### Open Questions

- Venue still undecided

### Participants

- Alice Smith (engineering lead)
- Bob Jones
`

func TestExtractActionItems(t *testing.T) {
	items := ExtractActionItems(sampleSummary)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0] != "**[Alice]** — draft the roadmap (Friday)" {
		t.Errorf("items[0] = %q", items[0])
	}
}

func TestExtractActionItemsStopsAtNextHeading(t *testing.T) {
	items := ExtractActionItems(sampleSummary)
	for _, item := range items {
		if strings.Contains(item, "Venue") {
			t.Errorf("item %q leaked from the Open Questions section", item)
		}
	}
}

func TestExtractActionItemsNone(t *testing.T) {
	if items := ExtractActionItems("### Overview\n\nNothing here.\n"); len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestExtractMetadata(t *testing.T) {
	meta := ExtractMetadata(sampleSummary)

	if meta.Title != "Q1 Roadmap Planning Session" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Description != "Quarterly planning for the roadmap." {
		t.Errorf("description = %q", meta.Description)
	}
	want := []string{"roadmap", "planning", "q1"}
	if len(meta.Tags) != len(want) {
		t.Fatalf("tags = %v", meta.Tags)
	}
	for i, tag := range want {
		if meta.Tags[i] != tag {
			t.Errorf("tags[%d] = %q, want %q (lowercased)", i, meta.Tags[i], tag)
		}
	}
	if len(meta.Participants) != 2 {
		t.Fatalf("participants = %v", meta.Participants)
	}
	if meta.Participants[0] != "Alice Smith" {
		t.Errorf("participant = %q, want role stripped", meta.Participants[0])
	}
	if meta.Participants[1] != "Bob Jones" {
		t.Errorf("participant = %q", meta.Participants[1])
	}
}

func TestStripMetadataBlock(t *testing.T) {
	stripped := StripMetadataBlock(sampleSummary)

	if strings.Contains(stripped, "Title:") || strings.Contains(stripped, "Tags:") ||
		strings.Contains(stripped, "Description:") {
		t.Errorf("metadata lines survived: %q", stripped)
	}
	if !strings.HasPrefix(stripped, "### Overview") {
		t.Errorf("stripped summary should start at first heading, got %q", stripped[:40])
	}
	if !strings.Contains(stripped, "Bob Jones") {
		t.Error("stripped summary lost body content")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("2026-08-26", "14:30", ""); got != "Meeting_2026-08-26_14-30.md" {
		t.Errorf("Filename = %q", got)
	}
	got := Filename("2026-08-26", "14:30", "Q1 Plan: kickoff!")
	if got != "Meeting_2026-08-26_14-30_Q1_Plan_kickoff.md" {
		t.Errorf("Filename with title = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(125); got != "02:05" {
		t.Errorf("formatDuration(125) = %q", got)
	}
	if got := formatDuration(3725); got != "1:02:05" {
		t.Errorf("formatDuration(3725) = %q", got)
	}
	if got := formatDuration(0); got != "" {
		t.Errorf("formatDuration(0) = %q, want empty", got)
	}
}

func TestWriteNote(t *testing.T) {
	dir := t.TempDir()
	meta := ExtractMetadata(sampleSummary)

	path, err := Write(Config{Domain: "work", Tags: []string{"planning", "syke"}}, Meeting{
		Title:           meta.Title,
		Date:            "2026-08-26",
		Time:            "14:30",
		Description:     meta.Description,
		AITags:          meta.Tags,
		Participants:    meta.Participants,
		DurationSeconds: 1860,
		OutputDir:       dir,
		WhisperModel:    "base",
		ContextText:     "Agenda:\n- roadmap",
		SummaryText:     StripMetadataBlock(sampleSummary),
		TranscriptText:  "[00:00 - 00:05] Hello.",
	})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	if filepath.Base(path) != "Meeting_2026-08-26_14-30_Q1_Roadmap_Planning_Session.md" {
		t.Errorf("note filename = %q", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading note: %v", err)
	}
	content := string(raw)

	for _, want := range []string{
		"title: Q1 Roadmap Planning Session",
		"type: meeting",
		"status: processed",
		"domain: work",
		"- meeting",
		"- roadmap",
		"[[Alice Smith]]",
		"31:00",
		"whisper_model: base",
		"> [!note] Pre-Meeting Context",
		"> [!summary] Meeting Summary",
		"> [!abstract]- Full Transcript",
		"- [ ] **[Alice]**",
		"*Raw files: `" + dir + "`*",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("note missing %q", want)
		}
	}

	// "planning" appears in both AI tags and config tags; it must be
	// written once.
	if strings.Count(content, "- planning\n") != 1 {
		t.Errorf("duplicated tag in frontmatter:\n%s", content)
	}
	if !strings.HasPrefix(content, "---\n") {
		t.Error("note should open with frontmatter fence")
	}
}

func TestWriteNoteMinimal(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(Config{}, Meeting{
		Date:           "2026-08-26",
		Time:           "09:00",
		OutputDir:      dir,
		TranscriptText: "[00:00 - 00:02] Just a transcript.",
	})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	raw, _ := os.ReadFile(path)
	content := string(raw)

	if strings.Contains(content, "title:") {
		t.Error("empty title should be omitted from frontmatter")
	}
	if strings.Contains(content, "[!summary]") {
		t.Error("summary callout should be absent without a summary")
	}
	if !strings.Contains(content, "[!abstract]- Full Transcript") {
		t.Error("transcript callout missing")
	}
}
