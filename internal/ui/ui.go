// Package ui renders CLI output: status lines, boxes and result tables.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dbsimple/dbsimple-go/database"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cast"
)

var (
	// Out receives regular output, Err receives errors.
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

var (
	// Colors
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	InfoColor      = lipgloss.Color("#00D9FF")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// NullText is shown for SQL NULL in tables.
const NullText = "NULL"

// DisableColor turns off colored output of every printer.
func DisableColor() {
	color.NoColor = true
	pterm.DisableColor()
	pterm.DisableStyling()
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	fmt.Fprintln(Err, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(Out, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	fmt.Fprintln(Out, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintKeyValues prints aligned "key: value" lines.
func PrintKeyValues(pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	for _, p := range pairs {
		key := SecondaryStyle.Render(fmt.Sprintf("%-*s", width+1, p[0]+":"))
		fmt.Fprintf(Out, "%s %s\n", key, p[1])
	}
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)

	out, err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(Out, out)
	return nil
}

// PrintResult prints a statement result: a table for selections, a single
// line for insert ids and affected-row counts.
func PrintResult(res database.Result) error {
	printers := GetColorPrinters()

	switch res.Kind {
	case database.KindInsertID:
		printers["success"].Fprintf(Out, "Inserted row id %d\n", res.InsertID)
		return nil
	case database.KindRowCount:
		printers["success"].Fprintf(Out, "%d %s affected\n", res.RowsAffected, plural(res.RowsAffected, "row", "rows"))
		return nil
	}

	if len(res.Rows) == 0 {
		printers["info"].Fprintln(Out, "Empty set")
		return nil
	}
	if err := PrintTable(res.Columns, TableRows(res)); err != nil {
		return err
	}
	printers["info"].Fprintf(Out, "%d %s in set\n", len(res.Rows), plural(int64(len(res.Rows)), "row", "rows"))
	return nil
}

// TableRows renders the rows of a selection as strings in column order.
func TableRows(res database.Result) [][]string {
	out := make([][]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		cells := make([]string, 0, row.Len())
		for _, v := range row.Values() {
			cells = append(cells, FormatValue(v))
		}
		out = append(out, cells)
	}
	return out
}

// FormatValue renders one column value for display.
func FormatValue(v any) string {
	if v == nil {
		return NullText
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	return strings.ReplaceAll(s, "\n", `\n`)
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	style := glamour.WithAutoStyle()
	if color.NoColor {
		style = glamour.WithStandardStyle("notty")
	}

	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := r.Render(content)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	fmt.Fprint(Out, out)
	return nil
}

// MarkdownResult describes one executed statement as a markdown section.
// total is only reported when non-nil.
func MarkdownResult(statement string, res database.Result, total *int64) string {
	var b strings.Builder

	b.WriteString("```sql\n")
	b.WriteString(strings.TrimSpace(statement))
	b.WriteString("\n```\n\n")

	switch res.Kind {
	case database.KindInsertID:
		fmt.Fprintf(&b, "Inserted row id %d\n", res.InsertID)
		return b.String()
	case database.KindRowCount:
		fmt.Fprintf(&b, "%d %s affected\n", res.RowsAffected, plural(res.RowsAffected, "row", "rows"))
		return b.String()
	}

	if len(res.Rows) == 0 {
		b.WriteString("Empty set\n")
	} else {
		writeMarkdownRow(&b, res.Columns)
		b.WriteString("|")
		for range res.Columns {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, cells := range TableRows(res) {
			writeMarkdownRow(&b, cells)
		}
		fmt.Fprintf(&b, "\n%d %s in set\n", len(res.Rows), plural(int64(len(res.Rows)), "row", "rows"))
	}
	if total != nil {
		fmt.Fprintf(&b, "\n%d rows in total\n", *total)
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// PrintJSON writes v as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// GetColorPrinters returns color printers for common use cases
func GetColorPrinters() map[string]*color.Color {
	return map[string]*color.Color{
		"success": color.New(color.FgGreen, color.Bold),
		"error":   color.New(color.FgRed, color.Bold),
		"warning": color.New(color.FgYellow, color.Bold),
		"info":    color.New(color.FgCyan),
		"primary": color.New(color.FgCyan, color.Bold),
	}
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
