package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled is off when NO_COLOR is set.
var colorEnabled = os.Getenv("NO_COLOR") == ""

// SetColor turns ANSI colors in Format on or off.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func paint(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// subject returns the label Format puts before a short Detail, or "".
func (e *InkError) subject() string {
	return registry[e.Code].Subject
}

// Format renders the error for a terminal:
//
//	ERROR E102 [settings] Invalid setting value
//
//	  Setting: pen.color
//	  Cause:   color "#zz" must look like #rrggbb or #rrggbbaa
//	  Hint:    Use a value such as #1e90ff
func (e *InkError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(paint(colorRed+colorBold, "ERROR"))
	if e.Code != "" {
		b.WriteString(" " + paint(colorBold, e.Code))
	}
	if e.Category != "" {
		b.WriteString(" " + paint(colorGray, "["+string(e.Category)+"]"))
	}
	b.WriteString(" " + e.Message + "\n\n")

	var rows [][2]string
	if e.Detail != "" {
		if label := e.subject(); label != "" {
			rows = append(rows, [2]string{label, e.Detail})
		} else {
			for _, line := range wrapText(e.Detail, 70) {
				b.WriteString("  " + line + "\n")
			}
			b.WriteString("\n")
		}
	}
	if e.Wrapped != nil {
		rows = append(rows, [2]string{"Cause", e.Wrapped.Error()})
	}
	if e.Suggestion != "" {
		rows = append(rows, [2]string{"Hint", e.Suggestion})
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row[0]))
	}
	for _, row := range rows {
		label := fmt.Sprintf("%-*s", width+1, row[0]+":")
		if row[0] == "Hint" {
			label = paint(colorCyan, label)
		} else {
			label = paint(colorGray, label)
		}
		b.WriteString("  " + label + " " + row[1] + "\n")
	}
	if len(rows) > 0 {
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a single-line form, e.g. for log fields.
func (e *InkError) FormatCompact() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code + " ")
	}
	if e.Category != "" {
		b.WriteString("[" + string(e.Category) + "] ")
	}
	b.WriteString(e.Message)
	if e.Detail != "" && e.subject() != "" {
		b.WriteString(" (" + strings.ToLower(e.subject()) + " " + e.Detail + ")")
	}
	return b.String()
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Fprint writes err to w, using Format when err carries an InkError.
func Fprint(w io.Writer, err error) {
	var ie *InkError
	if stderrors.As(err, &ie) {
		fmt.Fprint(w, ie.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(colorRed+colorBold, "ERROR"), err.Error())
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
