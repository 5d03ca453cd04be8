// Package input reads answers to interactive prompts.
package input

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Reader is an interface for reading user input
type Reader interface {
	ReadString(delim byte) (string, error)
}

// LineReader reads delimited answers from any io.Reader.
type LineReader struct {
	reader *bufio.Reader
}

// NewReader wraps src.
func NewReader(src io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(src)}
}

// NewStdinReader reads answers from os.Stdin.
func NewStdinReader() *LineReader {
	return NewReader(os.Stdin)
}

// ReadString reads until delimiter
func (r *LineReader) ReadString(delim byte) (string, error) {
	return r.reader.ReadString(delim)
}

// StringReader replays canned answers, one per ReadString call. Each answer
// should already end with the delimiter (e.g. "yes\n"). io.EOF is returned
// once all answers are consumed.
type StringReader struct {
	inputs []string
	index  int
}

// NewStringReader creates a reader from strings.
func NewStringReader(inputs ...string) *StringReader {
	return &StringReader{inputs: inputs}
}

// ReadString returns the next answer; delim is ignored.
func (r *StringReader) ReadString(delim byte) (string, error) {
	if r.index >= len(r.inputs) {
		return "", io.EOF
	}
	result := r.inputs[r.index]
	r.index++
	return result, nil
}

// Confirm reads one line from r and reports whether it is "y" or "yes",
// ignoring case and surrounding space. A final line without newline still
// counts; read errors count as no.
func Confirm(r Reader) bool {
	answer, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
