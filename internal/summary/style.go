package summary

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/shaiso/flatware/internal/domain"
)

// statusColor — ANSI 256 цвета статусов.
var statusColor = map[domain.Status]lipgloss.Color{
	domain.StatusPassed:    lipgloss.Color("42"),
	domain.StatusFailed:    lipgloss.Color("196"),
	domain.StatusUndefined: lipgloss.Color("220"),
	domain.StatusPending:   lipgloss.Color("220"),
	domain.StatusSkipped:   lipgloss.Color("39"),
}

// Glyph возвращает символ прогресса статуса, раскрашенный при opts.Color.
func Glyph(status domain.Status, opts Options) string {
	return paint(status.Glyph(), status, opts)
}

// paint раскрашивает текст цветом статуса.
func paint(text string, status domain.Status, opts Options) string {
	if !opts.Color {
		return text
	}
	color, ok := statusColor[status]
	if !ok {
		color = lipgloss.Color("244")
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
