package shaper

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/dbbridge/pkg/core"
	"github.com/leapstack-labs/dbbridge/pkg/envelope"
)

type exportFormat struct {
	label string
	ext   string
	// inline renders a small result into the response.
	inline func(headers []string, rows [][]any) (string, error)
	// stream writes the full result to w.
	stream func(w io.Writer, win *window) error
}

var (
	jsonFormat = exportFormat{label: "JSON", ext: ".json", inline: inlineJSON, stream: streamJSON}
	csvFormat  = exportFormat{label: "CSV", ext: ".csv", inline: inlineCSV, stream: streamCSV}
)

var (
	compactJSON = jsoniter.ConfigCompatibleWithStandardLibrary
	prettyJSON  = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		IndentionStep:          4,
	}.Froze()
)

// export writes the complete result as JSON or CSV.
func (s *Shaper) export(win *window, format exportFormat, output, cwd string) (envelope.Response, error) {
	if output != "" {
		path := resolveOutput(output, cwd)
		if err := checkWritable(path); err != nil {
			return envelope.Response{}, err
		}
		if err := writeFile(path, win, format); err != nil {
			return envelope.Response{}, err
		}
		return envelope.Print(fmt.Sprintf("Saved %s to: %s", format.label, path)), nil
	}

	if !win.large {
		data, err := format.inline(win.headers, win.rows)
		if err != nil {
			return envelope.Response{}, err
		}
		return envelope.Print(data), nil
	}

	f, err := s.createTemp(format.ext)
	if err != nil {
		return envelope.Response{}, err
	}
	path := f.Name()
	if err := writeTo(f, win, format); err != nil {
		_ = os.Remove(path)
		return envelope.Response{}, err
	}
	s.logger.Debug("spooled export", slog.String("path", path))
	return envelope.Page(path, ExportPager), nil
}

func resolveOutput(output, cwd string) string {
	if filepath.IsAbs(output) || cwd == "" {
		return filepath.Clean(output)
	}
	return filepath.Join(cwd, output)
}

// checkWritable verifies that a file can be created next to path without
// touching path itself.
func checkWritable(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return &core.PermissionError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return &core.PermissionError{Path: path, Err: fmt.Errorf("%s is not a directory", dir)}
	}

	probe, err := os.CreateTemp(dir, ".dbbridge-probe-*")
	if err != nil {
		return &core.PermissionError{Path: path, Err: err}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

func writeFile(path string, win *window, format exportFormat) error {
	//nolint:gosec // path is the user's explicit output location
	f, err := os.Create(path)
	if err != nil {
		return &core.PermissionError{Path: path, Err: err}
	}
	if err := writeTo(f, win, format); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// writeTo streams the result into f and closes it.
func writeTo(f *os.File, win *window, format exportFormat) error {
	bw := bufio.NewWriter(f)
	if err := format.stream(bw, win); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return &core.IOError{Op: "failed to write " + f.Name(), Err: err}
	}
	if err := f.Close(); err != nil {
		return &core.IOError{Op: "failed to write " + f.Name(), Err: err}
	}
	return nil
}

// objectField places one JSON key and the column its value is read from.
type objectField struct {
	name   string
	column int
}

// objectFields lays out the keys of a row object. A repeated column name
// appears once, at its first position, holding the last column's value.
func objectFields(headers []string) []objectField {
	fields := make([]objectField, 0, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		if at, ok := seen[h]; ok {
			fields[at].column = i
			continue
		}
		seen[h] = len(fields)
		fields = append(fields, objectField{name: h, column: i})
	}
	return fields
}

func writeObject(stream *jsoniter.Stream, fields []objectField, row []any) {
	stream.WriteObjectStart()
	for i, f := range fields {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(f.name)
		var v any
		if f.column < len(row) {
			v = row[f.column]
		}
		stream.WriteVal(jsonValue(v))
	}
	stream.WriteObjectEnd()
}

// inlineJSON renders rows as an indented array of objects in column order.
func inlineJSON(headers []string, rows [][]any) (string, error) {
	if len(rows) == 0 {
		return "[]", nil
	}

	var b strings.Builder
	stream := prettyJSON.BorrowStream(&b)
	defer prettyJSON.ReturnStream(stream)

	fields := objectFields(headers)
	stream.WriteArrayStart()
	for i, row := range rows {
		if i > 0 {
			stream.WriteMore()
		}
		writeObject(stream, fields, row)
	}
	stream.WriteArrayEnd()

	if stream.Error != nil {
		return "", &core.IOError{Op: "failed to encode JSON", Err: stream.Error}
	}
	if err := stream.Flush(); err != nil {
		return "", &core.IOError{Op: "failed to encode JSON", Err: err}
	}
	return b.String(), nil
}

// streamJSON writes one compact object per line inside a JSON array.
func streamJSON(w io.Writer, win *window) error {
	stream := compactJSON.BorrowStream(w)
	defer compactJSON.ReturnStream(stream)

	fields := objectFields(win.headers)
	stream.WriteRaw("[\n")
	first := true
	err := win.each(true, func(row []any) error {
		if !first {
			stream.WriteRaw(",\n")
		}
		first = false
		writeObject(stream, fields, row)
		if stream.Error != nil {
			return &core.IOError{Op: "failed to encode JSON", Err: stream.Error}
		}
		if stream.Buffered() >= 64*1024 {
			if err := stream.Flush(); err != nil {
				return &core.IOError{Op: "failed to write JSON", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	stream.WriteRaw("\n]")
	if err := stream.Flush(); err != nil {
		return &core.IOError{Op: "failed to write JSON", Err: err}
	}
	return nil
}

func inlineCSV(headers []string, rows [][]any) (string, error) {
	var b strings.Builder
	cw := csv.NewWriter(&b)
	if err := writeCSVRows(cw, headers, rows); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func writeCSVRows(cw *csv.Writer, headers []string, rows [][]any) error {
	if err := cw.Write(headers); err != nil {
		return &core.IOError{Op: "failed to write CSV", Err: err}
	}
	for _, row := range rows {
		if err := cw.Write(csvRecord(len(headers), row)); err != nil {
			return &core.IOError{Op: "failed to write CSV", Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &core.IOError{Op: "failed to write CSV", Err: err}
	}
	return nil
}

func streamCSV(w io.Writer, win *window) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(win.headers); err != nil {
		return &core.IOError{Op: "failed to write CSV", Err: err}
	}
	err := win.each(true, func(row []any) error {
		if err := cw.Write(csvRecord(len(win.headers), row)); err != nil {
			return &core.IOError{Op: "failed to write CSV", Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &core.IOError{Op: "failed to write CSV", Err: err}
	}
	return nil
}

func csvRecord(n int, row []any) []string {
	record := make([]string, n)
	for i := range record {
		if i < len(row) {
			record[i] = csvString(row[i])
		}
	}
	return record
}
