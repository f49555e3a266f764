// Package liner prefixes lines of text with their line numbers.
package liner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/sjson"
)

const numberWidth = 6

// Line is one input line; Text keeps its original terminator.
type Line struct {
	Number int
	Text   string
}

func Number(r io.Reader) ([]Line, error) {
	br := bufio.NewReader(r)

	var lines []Line
	for n := 1; ; n++ {
		text, err := br.ReadString('\n')
		if text != "" {
			lines = append(lines, Line{Number: n, Text: text})
		}

		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", n, err)
		}
	}
}

// FormatLine renders a line as its right-aligned number, a colon and the text.
func FormatLine(l Line) string {
	return fmt.Sprintf("%*d: %s", numberWidth, l.Number, l.Text)
}

func Format(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(FormatLine(l))
	}

	return b.String()
}

// FormatJSON renders lines as an array of {"number", "text"} objects with
// line terminators stripped.
func FormatJSON(lines []Line) ([]byte, error) {
	out := make([]byte, 0, 2+len(lines)*32)
	out = append(out, '[')

	for i, l := range lines {
		obj, err := sjson.SetBytes([]byte(`{}`), "number", l.Number)
		if err != nil {
			return nil, fmt.Errorf("set number of line %d: %w", l.Number, err)
		}

		obj, err = sjson.SetBytes(obj, "text", strings.TrimRight(l.Text, "\r\n"))
		if err != nil {
			return nil, fmt.Errorf("set text of line %d: %w", l.Number, err)
		}

		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, obj...)
	}

	return append(out, ']'), nil
}
