// Package fields splits lines of the spell dataset dialect into field values.
//
// The dialect is comma separated. A field that starts with a quote followed by
// a non-quote character is quoted: it runs to the next quote that is not
// doubled, and a doubled quote inside it stands for one literal quote. Every
// field is trimmed of surrounding whitespace.
package fields

import "strings"

const (
	quote = '"'
	comma = ','
)

// Sequence is the ordered list of field values recovered from one line.
// Empty fields are kept so that positions always match columns.
type Sequence []string

// Split parses one line into its fields. An empty line yields no fields.
//
// After a quoted field the scan skips the byte following the closing quote
// without looking at it (normally the separating comma). A field that is
// exactly "" does not open a quoted field and is returned verbatim.
func Split(line string) Sequence {
	line = strings.TrimSpace(line)
	fields := Sequence{}
	from := 0
	for from < len(line) {
		if line[from] == quote && from+1 < len(line) && line[from+1] != quote {
			from++
			to := from
			for ; to < len(line); to++ {
				if line[to] != quote {
					continue
				}
				if to+1 < len(line) && line[to+1] == quote {
					to++
					continue
				}
				break
			}
			chunk := strings.TrimSpace(line[from:min(to, len(line))])
			fields = append(fields, strings.ReplaceAll(chunk, `""`, `"`))
			from = to + 2
			continue
		}

		to := strings.IndexByte(line[from:], comma)
		if to < 0 {
			to = len(line)
		} else {
			to += from
		}
		fields = append(fields, strings.TrimSpace(line[from:to]))
		from = to + 1
	}
	return fields
}

// Quote renders one value as a quoted field, doubling inner quotes.
func Quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Join renders values as one line. Values holding a comma or a quote are
// quoted; everything else is written bare.
//
// Split reads the line back unchanged provided no value has surrounding
// whitespace, no value starts with a quote, and the last value is not empty
// (a trailing separator does not produce a field).
func Join(values []string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(comma)
		}
		if strings.ContainsAny(v, `,"`) {
			b.WriteString(Quote(v))
		} else {
			b.WriteString(v)
		}
	}
	return b.String()
}
