package routes

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format selects a rendering of the route inventory.
type Format string

const (
	// FormatText is one route per line, aligned for terminals.
	FormatText Format = "text"
	// FormatMarkdown groups routes by tag under title-cased headings.
	FormatMarkdown Format = "markdown"
	// FormatJSON is the machine-readable form.
	FormatJSON Format = "json"
)

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatMarkdown, FormatJSON:
		return true
	}
	return false
}

// Render formats the route inventory. Unknown formats are an error.
func Render(rs []Route, f Format) (string, error) {
	switch f {
	case FormatText:
		return renderText(rs), nil
	case FormatMarkdown:
		return renderMarkdown(rs), nil
	case FormatJSON:
		return renderJSON(rs)
	default:
		return "", fmt.Errorf("routes: unknown format %q", f)
	}
}

func renderText(rs []Route) string {
	var sb strings.Builder
	for _, r := range rs {
		fmt.Fprintf(&sb, "%-7s %s", r.Method, r.Path)
		if r.OperationID != "" {
			fmt.Fprintf(&sb, "  (%s)", r.OperationID)
		}
		if r.Deprecated {
			sb.WriteString("  [deprecated]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderMarkdown groups routes under their first tag. Untagged routes go
// under a trailing "Other" section.
func renderMarkdown(rs []Route) string {
	const untagged = "other"

	groups := make(map[string][]Route)
	for _, r := range rs {
		tag := untagged
		if len(r.Tags) > 0 {
			tag = r.Tags[0]
		}
		groups[tag] = append(groups[tag], r)
	}

	tags := make([]string, 0, len(groups))
	for tag := range groups {
		if tag != untagged {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	if _, ok := groups[untagged]; ok {
		tags = append(tags, untagged)
	}

	title := cases.Title(language.English)
	var sb strings.Builder
	sb.WriteString("# API Routes\n")
	for _, tag := range tags {
		fmt.Fprintf(&sb, "\n## %s\n\n", title.String(strings.ReplaceAll(tag, "-", " ")))
		sb.WriteString("| Method | Path | Summary |\n")
		sb.WriteString("|--------|------|---------|\n")
		for _, r := range groups[tag] {
			summary := r.Summary
			if r.Deprecated {
				summary = strings.TrimSpace(summary + " (deprecated)")
			}
			fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", r.Method, r.Path, summary)
		}
	}
	return sb.String()
}

func renderJSON(rs []Route) (string, error) {
	if rs == nil {
		rs = []Route{}
	}
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("routes: failed to encode routes: %w", err)
	}
	return string(data) + "\n", nil
}
