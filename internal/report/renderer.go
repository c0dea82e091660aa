package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
	// Ext is the conventional file extension, including the dot.
	Ext() string
}

// ForFormat returns the renderer for "markdown" (or ""), "json" or "html".
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want markdown, json or html)", format)
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(rep *Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

func (r *JSONRenderer) Ext() string { return ".json" }

const (
	versionSentinel = "<!-- refhistory-report-version: 1 -->"
	dataPrefix      = "<!-- refhistory-data: "
	dataSuffix      = " -->"
)

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(rep *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder
	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)
	sb.WriteString(markdownBody(rep))
	return []byte(sb.String()), nil
}

func (r *MarkdownRenderer) Ext() string { return ".md" }

// markdownBody is the visible part of the Markdown report.
func markdownBody(rep *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# History — %s — %s\n\n", rep.Source, rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Current: `%s`\n", inline(rep.Current))
	if rep.Capacity < 0 {
		sb.WriteString("- Capacity: unbounded\n")
	} else {
		fmt.Fprintf(&sb, "- Capacity: %d\n", rep.Capacity)
	}
	fmt.Fprintf(&sb, "- Undo steps: %d\n", len(rep.History))
	fmt.Fprintf(&sb, "- Redo steps: %d\n", len(rep.Future))
	sb.WriteString("\n")

	writeEntries(&sb, "History", "_No history recorded._", rep.History)
	writeEntries(&sb, "Redo", "_Nothing to redo._", rep.Future)
	return sb.String()
}

func writeEntries(sb *strings.Builder, title, empty string, list []Entry) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	if len(list) == 0 {
		sb.WriteString(empty + "\n\n")
		return
	}
	for i, e := range list {
		fmt.Fprintf(sb, "%d. [%s] `%s`\n", i+1, e.Timestamp.Format("2006-01-02 15:04:05"), inline(e.Value))
	}
	sb.WriteString("\n")
}

// inline flattens a value so it fits in a Markdown code span.
func inline(s string) string {
	s = strings.ReplaceAll(s, "\n", "⏎")
	return strings.ReplaceAll(s, "`", "'")
}

// HTMLRenderer renders the Markdown report body as an HTML fragment.
type HTMLRenderer struct{}

func (r *HTMLRenderer) Render(rep *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdownBody(rep)), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) Ext() string { return ".html" }
