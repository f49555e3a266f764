// Package jsoncheck verifies that files hold well-formed JSON.
package jsoncheck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var (
	// ErrNotFound is wrapped when the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrSyntax matches any *SyntaxError.
	ErrSyntax = errors.New("invalid JSON")
)

// SyntaxError locates the first JSON syntax problem in a file.
type SyntaxError struct {
	Path    string
	Offset  int64
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "invalid JSON"
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d column %d (char %d)", e.Line, e.Column, e.Offset)
	}

	return msg
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// VerifyFile returns nil when path holds exactly one valid JSON document.
func VerifyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("read file: %w", err)
	}

	return Verify(path, data)
}

func Verify(path string, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	var v any
	if err := dec.Decode(&v); err != nil {
		return syntaxError(path, data, err)
	}

	// Anything but whitespace after the first value is an error.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		offset := dec.InputOffset()
		line, col := position(data, offset)

		return &SyntaxError{
			Path:    path,
			Offset:  offset,
			Line:    line,
			Column:  col,
			Message: "extra data",
		}
	}

	return nil
}

func syntaxError(path string, data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		// Offset counts the offending byte; report the byte itself.
		at := max(syntaxErr.Offset-1, 0)
		line, col := position(data, at)

		return &SyntaxError{
			Path:    path,
			Offset:  at,
			Line:    line,
			Column:  col,
			Message: syntaxErr.Error(),
		}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		line, col := position(data, int64(len(data)))

		return &SyntaxError{
			Path:    path,
			Offset:  int64(len(data)),
			Line:    line,
			Column:  col,
			Message: "unexpected end of JSON input",
		}
	}

	return &SyntaxError{Path: path, Message: err.Error()}
}

// position converts a byte offset into 1-based line and column numbers.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	prefix := data[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(prefix, '\n')

	return line, col
}
