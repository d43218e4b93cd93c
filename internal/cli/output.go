package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"portfolio-dashboard/internal/prices"
	"portfolio-dashboard/pkg/utils"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool

	green, red, yellow, cyan, blue, magenta, bold, dim *color.Color
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return newOutput(cmd.OutOrStdout(), jsonMode, !jsonMode && !noColor && isTerminal())
}

func newOutput(w io.Writer, jsonMode, colorEnabled bool) *Output {
	o := &Output{
		writer:       w,
		jsonMode:     jsonMode,
		colorEnabled: colorEnabled,
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
		yellow:       color.New(color.FgYellow),
		cyan:         color.New(color.FgCyan),
		blue:         color.New(color.FgBlue),
		magenta:      color.New(color.FgMagenta),
		bold:         color.New(color.Bold),
		dim:          color.New(color.Faint),
	}
	for _, c := range []*color.Color{o.green, o.red, o.yellow, o.cyan, o.blue, o.magenta, o.bold, o.dim} {
		if colorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return o
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Print prints a message.
func (o *Output) Print(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.line(o.green, format, args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.line(o.red, format, args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.line(o.yellow, format, args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.line(o.cyan, format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.line(o.bold, format, args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.line(o.dim, format, args...)
}

func (o *Output) line(c *color.Color, format string, args ...interface{}) {
	fmt.Fprintln(o.writer, c.Sprintf(format, args...))
}

// Green returns green colored text.
func (o *Output) Green(text string) string { return o.green.Sprint(text) }

// Red returns red colored text.
func (o *Output) Red(text string) string { return o.red.Sprint(text) }

// Yellow returns yellow colored text.
func (o *Output) Yellow(text string) string { return o.yellow.Sprint(text) }

// Cyan returns cyan colored text.
func (o *Output) Cyan(text string) string { return o.cyan.Sprint(text) }

// BoldText returns bold text.
func (o *Output) BoldText(text string) string { return o.bold.Sprint(text) }

// DimText returns dimmed text.
func (o *Output) DimText(text string) string { return o.dim.Sprint(text) }

// SourceTag returns a short tag naming where a price came from.
func (o *Output) SourceTag(source prices.Source) string {
	switch source {
	case prices.SourceAMFI:
		return o.blue.Sprint("[AMFI]")
	case prices.SourceYahoo:
		return o.magenta.Sprint("[YF]")
	}
	return o.dim.Sprint("[" + string(source) + "]")
}

// gainColor picks green for gains (including break-even) and red for losses.
func (o *Output) gainColor(v float64) *color.Color {
	if v < 0 {
		return o.red
	}
	return o.green
}

// FormatPnL formats a gain or loss in INR with sign and color.
func (o *Output) FormatPnL(pnl float64) string {
	return o.gainColor(pnl).Sprint(FormatPnL(pnl))
}

// FormatPercent formats a return percentage with sign and color.
func (o *Output) FormatPercent(pct float64) string {
	return o.gainColor(pct).Sprint(FormatPercent(pct))
}

// MarketStatus renders a market session state.
func (o *Output) MarketStatus(status utils.MarketStatus) string {
	switch status {
	case utils.MarketOpen:
		return o.Green("● OPEN")
	case utils.MarketClosed:
		return o.Red("● CLOSED")
	case utils.MarketPreOpen:
		return o.Yellow("● PRE-OPEN")
	default:
		return string(status)
	}
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		right:   make(map[int]bool),
		output:  output,
	}
}

// AlignRight right-aligns column i, for amounts.
func (t *Table) AlignRight(i int) {
	t.right[i] = true
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := displayWidth(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		pad := strings.Repeat(" ", max(0, widths[i]-displayWidth(cell)))
		padded := cell + pad
		if t.right[i] {
			padded = pad + cell
		}
		if isHeader {
			padded = t.output.bold.Sprint(padded)
		}
		parts = append(parts, padded)
	}
	t.output.Println(strings.Join(parts, "  "))
}

func (t *Table) printSeparator(widths []int) {
	var parts []string
	for _, w := range widths {
		parts = append(parts, strings.Repeat("─", w))
	}
	t.output.Println(t.output.dim.Sprint(strings.Join(parts, "──")))
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI removes ANSI escape codes from a string.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func displayWidth(s string) int {
	return utf8.RuneCountInString(stripANSI(s))
}

// Box draws a box around content.
func (o *Output) Box(title string, content []string) {
	width := displayWidth(title)
	for _, line := range content {
		if w := displayWidth(line); w > width {
			width = w
		}
	}

	border := strings.Repeat("─", width+2)
	o.Println(o.dim.Sprint("┌" + border + "┐"))
	o.Printf("%s %s%s %s\n", o.dim.Sprint("│"), o.bold.Sprint(title), strings.Repeat(" ", width-displayWidth(title)), o.dim.Sprint("│"))
	o.Println(o.dim.Sprint("├" + border + "┤"))
	for _, line := range content {
		o.Printf("%s %s%s %s\n", o.dim.Sprint("│"), line, strings.Repeat(" ", width-displayWidth(line)), o.dim.Sprint("│"))
	}
	o.Println(o.dim.Sprint("└" + border + "┘"))
}
