package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderFragment renders overview sections as bordered boxes. Values whose
// id appears in live are replaced by the live text and highlighted.
func RenderFragment(frag Fragment, width int, live map[string]string) string {
	width = ClampWidth(width)

	if len(frag.Sections) == 0 {
		return FooterStyle.Render(frag.Text)
	}

	boxes := make([]string, 0, len(frag.Sections))
	for _, s := range frag.Sections {
		boxes = append(boxes, renderSection(s, width, live))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func renderSection(s Section, width int, live map[string]string) string {
	if s.Message != "" && len(s.Items) == 0 {
		return ErrorBoxStyle(width).Render(ErrorMessageStyle.Render(FailureMarker + " " + s.Message))
	}

	lines := []string{SectionTitleStyle.Render(s.Title)}
	for _, it := range s.Items {
		value := ItemValueStyle.Render(it.Value)
		if it.ID != "" {
			v := it.Value
			if text, ok := live[it.ID]; ok {
				v = text
			}
			value = LiveValueStyle.Render(v)
		}
		lines = append(lines, ItemLabelStyle.Render(it.Label)+" "+value)
	}
	return SectionBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// PlainText renders a fragment without styling, one "label: value" row per
// line, for pipes and log files
func PlainText(frag Fragment) string {
	if len(frag.Sections) == 0 {
		return frag.Text + "\n"
	}

	var b strings.Builder
	for i, s := range frag.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Title != "" {
			b.WriteString(s.Title)
			b.WriteString("\n")
		}
		if s.Message != "" {
			b.WriteString(s.Message)
			b.WriteString("\n")
		}
		for _, it := range s.Items {
			b.WriteString("  ")
			b.WriteString(it.Label)
			b.WriteString(": ")
			b.WriteString(it.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}
