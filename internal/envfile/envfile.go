// Package envfile implements an order-preserving line model for dotenv
// files. Parsing records enough detail (quote style, comment text,
// blank lines, trailing newline) that serializing an unmodified model
// reproduces the source byte for byte.
package envfile

import (
	"fmt"
	"regexp"
	"strings"
)

// Quote records how an assignment value was quoted in the source.
type Quote int

const (
	QuoteNone Quote = iota
	QuoteSingle
	QuoteDouble
)

// Kind discriminates the line variants.
type Kind int

const (
	KindBlank Kind = iota
	KindComment
	KindAssignment
)

// Line is one source line. Comment and Blank lines keep their raw text
// so they round-trip exactly, including leading whitespace.
type Line struct {
	Kind  Kind
	Raw   string // verbatim text for Blank and Comment lines
	Key   string
	Value string // unquoted value for Assignment lines
	Quote Quote
}

// File is an ordered sequence of lines plus the trailing-newline state
// of the source.
type File struct {
	Path            string
	Lines           []Line
	TrailingNewline bool
}

// ParseError reports a structurally malformed assignment line.
type ParseError struct {
	Path string
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Path, e.Line, e.Msg, e.Text)
}

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse splits text into the line model. path is used only for error
// reporting. A line is a Comment when its first non-blank character is
// '#', Blank when it contains only whitespace, and otherwise must be a
// KEY=VALUE assignment with optional single or double quoting.
func Parse(path, text string) (*File, error) {
	f := &File{Path: path}

	if text == "" {
		return f, nil
	}

	f.TrailingNewline = strings.HasSuffix(text, "\n")
	body := text
	if f.TrailingNewline {
		body = strings.TrimSuffix(body, "\n")
	}

	for i, raw := range strings.Split(body, "\n") {
		line, err := parseLine(path, i+1, raw)
		if err != nil {
			return nil, err
		}
		f.Lines = append(f.Lines, line)
	}

	return f, nil
}

func parseLine(path string, num int, raw string) (Line, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return Line{Kind: KindBlank, Raw: raw}, nil
	}
	if strings.HasPrefix(trimmed, "#") {
		return Line{Kind: KindComment, Raw: raw}, nil
	}

	eq := strings.Index(raw, "=")
	if eq < 0 {
		return Line{}, &ParseError{Path: path, Line: num, Text: raw, Msg: "missing '=' in assignment"}
	}

	key := raw[:eq]
	if !keyPattern.MatchString(key) {
		return Line{}, &ParseError{Path: path, Line: num, Text: raw, Msg: "invalid variable name"}
	}

	value, quote := unquote(raw[eq+1:])
	return Line{Kind: KindAssignment, Key: key, Value: value, Quote: quote}, nil
}

func unquote(v string) (string, Quote) {
	if len(v) >= 2 {
		switch {
		case v[0] == '"' && v[len(v)-1] == '"':
			return v[1 : len(v)-1], QuoteDouble
		case v[0] == '\'' && v[len(v)-1] == '\'':
			return v[1 : len(v)-1], QuoteSingle
		}
	}
	return v, QuoteNone
}

// Serialize emits the lines in original order, re-applying the recorded
// quote style. For an unmodified model the output equals the parsed
// source exactly.
func (f *File) Serialize() string {
	var b strings.Builder
	for i, line := range f.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.String())
	}
	if f.TrailingNewline {
		b.WriteByte('\n')
	}
	return b.String()
}

// String renders a single line as source text.
func (l Line) String() string {
	switch l.Kind {
	case KindAssignment:
		switch l.Quote {
		case QuoteDouble:
			return l.Key + `="` + l.Value + `"`
		case QuoteSingle:
			return l.Key + `='` + l.Value + `'`
		default:
			return l.Key + "=" + l.Value
		}
	default:
		return l.Raw
	}
}

// Lookup returns the value of the last assignment of key, matching
// shell-sourcing semantics where later duplicates shadow earlier ones.
func (f *File) Lookup(key string) (string, bool) {
	for i := len(f.Lines) - 1; i >= 0; i-- {
		if f.Lines[i].Kind == KindAssignment && f.Lines[i].Key == key {
			return f.Lines[i].Value, true
		}
	}
	return "", false
}

// Assignments returns the assignment lines in source order.
func (f *File) Assignments() []Line {
	var out []Line
	for _, line := range f.Lines {
		if line.Kind == KindAssignment {
			out = append(out, line)
		}
	}
	return out
}
