// Package quoted splits and joins comma-delimited records whose fields may be
// wrapped in double quotes. It is the single parser used for every log line
// and every stored blob in the tracker.
package quoted

import "strings"

const (
	delimiter = ','
	quote     = '"'
)

// EscapeField quotes s when it contains the delimiter, a quote or a line
// break, doubling any embedded quotes. Other values are returned as is.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// JoinLine escapes every field and joins them with the delimiter.
func JoinLine(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(delimiter)
		}
		b.WriteString(EscapeField(f))
	}
	return b.String()
}

// ParseLine splits one record into fields. It never fails: malformed quoting
// degrades to literal text.
func ParseLine(line string) []string {
	records := scan(line, false)
	if len(records) == 0 {
		return []string{""}
	}
	return records[0]
}

// ParseRecords splits a whole blob into records. Line breaks inside quoted
// fields stay part of the field, a trailing carriage return is dropped and
// blank lines are skipped.
func ParseRecords(data string) [][]string {
	return scan(data, true)
}

// scan walks data once. A quote opens a quoted span only at the start of a
// field; inside a span a doubled quote is a literal quote. When a span is
// never closed the scan rewinds to the opening quote and treats it as text.
func scan(data string, multiline bool) [][]string {
	var (
		records [][]string
		fields  []string
		buf     []byte
		inQuote bool
		atStart = true
		quoteAt = -1
	)

	endField := func() {
		fields = append(fields, string(buf))
		buf = buf[:0]
		atStart = true
	}
	endRecord := func() {
		endField()
		if !multiline || len(fields) > 1 || fields[0] != "" {
			records = append(records, fields)
		}
		fields = nil
	}

	for i := 0; i <= len(data); i++ {
		if i == len(data) {
			if inQuote {
				// unterminated: replay the span as literal text
				inQuote = false
				atStart = false
				buf = append(buf[:0], quote)
				i = quoteAt
				continue
			}
			if multiline && len(fields) == 0 && len(buf) == 0 {
				break
			}
			endRecord()
			break
		}

		c := data[i]
		if inQuote {
			if c != quote {
				buf = append(buf, c)
				continue
			}
			if i+1 < len(data) && data[i+1] == quote {
				buf = append(buf, quote)
				i++
				continue
			}
			inQuote = false
			continue
		}

		switch {
		case c == quote && atStart:
			inQuote = true
			atStart = false
			quoteAt = i
		case c == delimiter:
			endField()
		case c == '\n' && multiline:
			if n := len(buf); n > 0 && buf[n-1] == '\r' {
				buf = buf[:n-1]
			}
			endRecord()
		default:
			buf = append(buf, c)
			atStart = false
		}
	}
	return records
}
