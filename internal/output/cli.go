package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleHours = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSuccess)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(s lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return s.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Hours formats a study time.
func (c *CLIFormatter) Hours(n int) string {
	return c.render(styleHours, FormatHours(n))
}

// PrintRecords prints the record list as a table followed by a total.
func (c *CLIFormatter) PrintRecords(records []model.Record) {
	if len(records) == 0 {
		c.Muted("No records yet.")
		c.Muted("Use 'studylog add <title> --time <hours>' to log a session.")
		return
	}

	rows := make([]TableRow, len(records))
	total := 0
	for i, r := range records {
		rows[i] = TableRow{Columns: []string{r.Title, FormatHours(r.Time), FormatDate(r.CreatedAt), r.ID}}
		total += r.Time
	}
	c.PrintTable([]string{"TITLE", "TIME", "DATE", "ID"}, rows)
	c.Println()
	c.Printf("%d records, %s total\n", len(records), c.Hours(total))
}

// PrintRecord prints one record.
func (c *CLIFormatter) PrintRecord(r model.Record) {
	c.Println(c.render(styleBold, r.Title))
	c.Printf("  Time: %s\n", c.Hours(r.Time))
	c.Printf("  Created: %s\n", FormatTime(r.CreatedAt))
	c.Printf("  ID: %s\n", r.ID)
}

// PrintViolations prints each validation problem on its own line.
func (c *CLIFormatter) PrintViolations(violations []errors.Violation) {
	for _, v := range violations {
		c.Error(v.String())
	}
}

// Table helpers for CLI output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table. The first column is truncated so rows
// fit the terminal width.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(col))
			}
		}
	}

	const gap = 2
	rest := 0
	for _, w := range widths[1:] {
		rest += w + gap
	}
	if avail := c.Width() - rest - gap; avail < widths[0] {
		widths[0] = max(avail, lipgloss.Width(headers[0]))
	}

	line := func(cols []string) string {
		var b strings.Builder
		for i, col := range cols {
			if i >= len(widths) {
				break
			}
			col = Truncate(col, widths[i])
			b.WriteString(col)
			if i < len(cols)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(col)+gap))
			}
		}
		return b.String()
	}

	c.Println(c.render(styleBold, line(headers)))

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	c.Println(c.render(styleMuted, strings.Join(seps, strings.Repeat(" ", gap))))

	for _, row := range rows {
		c.Println(line(row.Columns))
	}
}

// Truncate shortens s to at most width display cells, marking the cut with
// an ellipsis.
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return strings.Repeat(".", max(width, 0))
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// PlainRecords prints one tab-separated line per record, for scripts.
func PlainRecords(f *Formatter, records []model.Record) {
	for _, r := range records {
		f.Printf("%s\t%s\t%d\t%s\n", r.ID, r.Title, r.Time, r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
}

// PlainError prints an error for the plain format.
func PlainError(f *Formatter, err error) {
	f.Printf("error: %s\n", err)
}
