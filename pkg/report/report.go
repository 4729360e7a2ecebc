// Package report holds analysis output as an ordered sequence of
// structured entries. Rendering to a terminal or to a plain text blob
// is a separate, stateless step over the same data.
package report

import (
	"fmt"
)

// Severity classifies a report entry
type Severity int

const (
	// SeverityInfo is a plain progress or result line
	SeverityInfo Severity = iota
	// SeverityAlert flags an integrity or recency violation
	SeverityAlert
)

// String returns the string representation of a severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// Entry is a single report line with its nesting depth
type Entry struct {
	Text     string
	Indent   int
	Severity Severity
}

// Report is an ordered collection of entries
type Report struct {
	entries []Entry
}

// New creates an empty report
func New() *Report {
	return &Report{entries: make([]Entry, 0)}
}

// Info appends an info entry at the given indentation depth
func (r *Report) Info(indent int, text string) {
	r.entries = append(r.entries, Entry{Text: text, Indent: indent, Severity: SeverityInfo})
}

// Infof appends a formatted info entry
func (r *Report) Infof(indent int, format string, args ...any) {
	r.Info(indent, fmt.Sprintf(format, args...))
}

// Alert appends an alert entry at the given indentation depth
func (r *Report) Alert(indent int, text string) {
	r.entries = append(r.entries, Entry{Text: text, Indent: indent, Severity: SeverityAlert})
}

// Alertf appends a formatted alert entry
func (r *Report) Alertf(indent int, format string, args ...any) {
	r.Alert(indent, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the report entries in order
func (r *Report) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries
func (r *Report) Len() int {
	return len(r.entries)
}

// AlertCount returns the number of alert entries
func (r *Report) AlertCount() int {
	n := 0
	for _, e := range r.entries {
		if e.Severity == SeverityAlert {
			n++
		}
	}
	return n
}
