// Package query turns the raw text a user typed into an executable request.
//
// Preprocessing expands saved queries, extracts output flags and guards plain
// SELECT statements with a row limit.
package query

import (
	"strconv"
	"strings"
	"unicode"
)

// SafetyLimit is the row cap appended to unguarded SELECT statements.
const SafetyLimit = 1000

var limitSuffix = " LIMIT " + strconv.Itoa(SafetyLimit)

// Flag tokens recognised anywhere in the input.
const (
	FlagJSON    = "--json"
	FlagCSV     = "--csv"
	FlagNoLimit = "--no-limit"
	FlagOutput  = "--output"
)

// hangingKeywords end a statement that is still being written.
var hangingKeywords = map[string]bool{
	"where": true,
	"by":    true,
	"and":   true,
	"or":    true,
	"in":    true,
	"set":   true,
	"from":  true,
}

// Request is a preprocessed query.
type Request struct {
	// Raw is the input as received.
	Raw string
	// SQL is the statement to execute.
	SQL string

	JSON    bool
	CSV     bool
	NoLimit bool

	// Output is the explicit export path, empty when none was given.
	Output string
}

// Exporting reports whether a file format was requested.
func (r Request) Exporting() bool {
	return r.JSON || r.CSV
}

// Preprocess expands saved queries, extracts flags and applies the safety limit.
// queries maps saved names to SQL and may be nil.
func Preprocess(raw string, queries map[string]string) Request {
	req := Request{Raw: raw}

	text := strings.TrimSpace(raw)
	expanded := false
	if mapped, ok := queries[text]; ok {
		text = mapped
		expanded = true
	}

	text = req.extractFlags(text)

	// A saved name followed by flags, e.g. "top_users --csv".
	if !expanded {
		if mapped, ok := queries[text]; ok {
			text = req.extractFlags(mapped)
		}
	}

	req.SQL = ApplyLimit(text, req.JSON || req.CSV || req.NoLimit)
	return req
}

// extractFlags removes flag tokens from text, merging them into r.
func (r *Request) extractFlags(text string) string {
	spans := tokenSpans(text)
	if len(spans) == 0 {
		return ""
	}

	// --output consumes the next token; only the first occurrence is taken.
	for i, s := range spans {
		if text[s[0]:s[1]] != FlagOutput || i+1 >= len(spans) {
			continue
		}
		next := spans[i+1]
		r.Output = text[next[0]:next[1]]
		text = text[:s[0]] + text[next[1]:]
		break
	}

	for _, flag := range []struct {
		token string
		set   *bool
	}{
		{FlagJSON, &r.JSON},
		{FlagCSV, &r.CSV},
		{FlagNoLimit, &r.NoLimit},
	} {
		var found bool
		text, found = stripToken(text, flag.token)
		if found {
			*flag.set = true
		}
	}

	return strings.TrimSpace(text)
}

// ApplyLimit appends the safety limit to a top-level SELECT unless disabled.
// A trailing statement terminator stays after the limit.
func ApplyLimit(sql string, disabled bool) string {
	if disabled {
		return sql
	}

	lower := strings.ToLower(sql)
	if !strings.HasPrefix(lower, "select") || strings.Contains(lower, "limit") {
		return sql
	}

	body := strings.TrimRight(sql, "; \t\r\n")
	fields := strings.Fields(strings.ToLower(body))
	if len(fields) == 0 || hangingKeywords[fields[len(fields)-1]] {
		return sql
	}
	return body + limitSuffix + sql[len(body):]
}

// stripToken removes every whole-token occurrence of tok.
func stripToken(text, tok string) (string, bool) {
	spans := tokenSpans(text)
	var b strings.Builder
	last := 0
	found := false
	for _, s := range spans {
		if text[s[0]:s[1]] != tok {
			continue
		}
		b.WriteString(text[last:s[0]])
		last = s[1]
		found = true
	}
	if !found {
		return text, false
	}
	b.WriteString(text[last:])
	return b.String(), true
}

// tokenSpans returns the [start,end) byte offsets of each whitespace-delimited token.
func tokenSpans(text string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range text {
		space := unicode.IsSpace(r)
		switch {
		case space && start >= 0:
			spans = append(spans, [2]int{start, i})
			start = -1
		case !space && start < 0:
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(text)})
	}
	return spans
}
