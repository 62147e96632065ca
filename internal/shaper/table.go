package shaper

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/dbbridge/pkg/core"
	"github.com/leapstack-labs/dbbridge/pkg/envelope"
)

// table renders the aligned text view. Without noLimit only the peek window
// is rendered.
func (s *Shaper) table(win *window, noLimit bool) (envelope.Response, error) {
	if len(win.headers) == 0 && len(win.rows) == 0 {
		return envelope.Print(NoResults), nil
	}

	widths := make([]int, len(win.headers))
	for i, h := range win.headers {
		widths[i] = utf8.RuneCountInString(h)
	}

	var cells [][]string
	err := win.each(noLimit, func(row []any) error {
		line := make([]string, len(widths))
		for i := range widths {
			var v any
			if i < len(row) {
				v = row[i]
			}
			line[i] = cellString(v)
			widths[i] = max(widths[i], utf8.RuneCountInString(line[i]))
		}
		cells = append(cells, line)
		return nil
	})
	if err != nil {
		return envelope.Response{}, err
	}

	lines := make([]string, 0, len(cells)+3)
	lines = append(lines, formatLine(win.headers, widths), separator(widths))
	for _, row := range cells {
		lines = append(lines, formatLine(row, widths))
	}
	if len(cells) == 0 {
		lines = append(lines, ZeroRowsLine)
	}

	output := strings.Join(lines, "\n")
	if len(lines) <= MaxInlineLines {
		return envelope.Print(output), nil
	}

	f, err := s.createTemp(".txt")
	if err != nil {
		return envelope.Response{}, err
	}
	if err := spoolText(f, output); err != nil {
		return envelope.Response{}, err
	}
	return envelope.Page(f.Name(), s.pager), nil
}

// spoolText writes text into f and closes it. The file is removed when
// either step fails.
func spoolText(f *os.File, text string) error {
	_, err := f.WriteString(text)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return &core.IOError{Op: "failed to write temp file", Err: err}
	}
	return nil
}

func formatLine(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = fmt.Sprintf("%-*s", w, cells[i])
	}
	return strings.Join(parts, " | ")
}

func separator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	return strings.Join(parts, "-+-")
}
