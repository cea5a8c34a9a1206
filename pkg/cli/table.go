package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// columnGap separates columns.
const columnGap = 2

// Table buffers rows and writes them column-aligned on Flush. When stdout is
// a terminal, columns wider than the terminal are narrowed (never below the
// header width) and their cells wrapped. Empty tables produce no output.
type Table struct {
	out     io.Writer
	width   int
	headers []string
	rows    [][]string
	prefix  string
}

// NewTable creates a table on stdout with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		out:     os.Stdout,
		width:   terminalWidth(),
		headers: headers,
	}
}

// WithWriter sends output to w. Width capping is disabled.
func (t *Table) WithWriter(w io.Writer) *Table {
	t.out = w
	t.width = 0
	return t
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// Row adds a row. Missing trailing cells are blank.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes the table. If no rows were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := visualLen(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, visualLen(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.writeLine(t.headers, widths)
	t.writeLine(dividers, widths)

	for _, row := range t.rows {
		cells := make([][]string, len(widths))
		height := 1
		for i := range widths {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells[i] = wrapCell(val, widths[i])
			if len(cells[i]) > height {
				height = len(cells[i])
			}
		}
		for line := 0; line < height; line++ {
			vals := make([]string, len(widths))
			for i := range widths {
				if line < len(cells[i]) {
					vals[i] = cells[i][line]
				}
			}
			t.writeLine(vals, widths)
		}
	}
}

func (t *Table) writeLine(vals []string, widths []int) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, v := range vals {
		b.WriteString(v)
		if i == len(vals)-1 {
			break
		}
		pad := widths[i] - visualLen(v) + columnGap
		if pad < 1 {
			pad = 1
		}
		b.WriteString(strings.Repeat(" ", pad))
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

// capWidths shrinks the widest columns until the row fits termWidth. No
// column goes below its header width, so the result may still overflow.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	got := append([]int(nil), widths...)
	total := func() int {
		sum := prefix + columnGap*(len(got)-1)
		for _, w := range got {
			sum += w
		}
		return sum
	}

	for excess := total() - termWidth; excess > 0; excess = total() - termWidth {
		widest := -1
		for i, w := range got {
			if w > visualLen(headers[i]) && (widest < 0 || w > got[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		room := got[widest] - visualLen(headers[widest])
		if room > excess {
			room = excess
		}
		got[widest] -= room
	}
	return got
}

// wrapCell splits s into lines of at most width columns, breaking at spaces
// and hard-breaking words longer than width.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}

	var lines []string
	cur := ""
	for _, word := range strings.Fields(s) {
		for len(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// visualLen is the printed width of s, ignoring ANSI SGR sequences.
func visualLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
