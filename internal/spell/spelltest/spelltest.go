// Package spelltest builds dataset rows and records for tests.
package spelltest

import (
	"strconv"
	"strings"

	"github.com/hpungsan/spellbook/internal/fields"
	"github.com/hpungsan/spellbook/internal/spell"
)

// Header is a dataset header line with the right number of columns.
var Header = func() string {
	cols := make([]string, 46)
	for i := range cols {
		cols[i] = "col" + strconv.Itoa(i)
	}
	cols[0] = "name"
	return strings.Join(cols, ",")
}()

// Row describes one dataset line. Zero values leave columns empty.
type Row struct {
	Name        string
	School      string
	SubSchool   string
	Descriptor  string
	CastingTime string
	Components  string
	Range       string
	Area        string
	Duration    string
	Saving      string
	Resistance  string
	Description string // rich description column
	Summary     string
	Flags       map[int]string // raw column overrides by index
	Levels      map[spell.Category]int
}

// Fields renders the row as a field sequence of 46 columns.
func (r Row) Fields() fields.Sequence {
	f := make(fields.Sequence, 46)
	f[0] = r.Name
	f[1] = r.School
	f[2] = r.SubSchool
	f[3] = r.Descriptor
	f[5] = r.CastingTime
	f[6] = r.Components
	f[8] = r.Range
	f[9] = r.Area
	f[12] = r.Duration
	f[15] = r.Saving
	f[16] = r.Resistance
	f[17] = r.Description
	f[18] = r.Description
	f[19] = "PFRPG Core"
	for _, c := range spell.Categories() {
		f[26+int(c)] = "NULL"
	}
	for c, n := range r.Levels {
		f[26+int(c)] = strconv.Itoa(n)
	}
	f[44] = r.Summary
	f[45] = "end"
	for i, v := range r.Flags {
		f[i] = v
	}
	return f
}

// Line renders the row as one dataset line.
func (r Row) Line() string {
	return fields.Join(r.Fields())
}

// Record maps the row through spell.FromFields and panics on failure.
func (r Row) Record() *spell.Record {
	rec, err := spell.FromFields(r.Fields())
	if err != nil {
		panic(err)
	}
	return rec
}

// CSV renders a dataset with a header and one line per row.
func CSV(rows ...Row) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(r.Line())
		b.WriteByte('\n')
	}
	return b.String()
}

// Records maps every row.
func Records(rows ...Row) []*spell.Record {
	out := make([]*spell.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}
