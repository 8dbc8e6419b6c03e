// Package output writes query matches.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	yaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/treeq/internal/document"
	"github.com/jacoelho/treeq/internal/query"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Formatter writes one match at a time.
// Implementations decide how consecutive matches are separated.
type Formatter interface {
	Format(m query.Match) error
}

// New returns the formatter for format ("yaml" or "json") writing to stdout.
func New(format string) (Formatter, error) {
	return NewWithWriter(format, os.Stdout)
}

// NewWithWriter is New with a custom writer.
func NewWithWriter(format string, w io.Writer) (Formatter, error) {
	switch format {
	case "yaml":
		return &YAML{writer: w}, nil
	case "json":
		return &JSONLines{writer: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func record(m query.Match) yaml.MapSlice {
	return yaml.MapSlice{
		{Key: "path", Value: m.Path.String()},
		{Key: "value", Value: document.Ordered(m.Node)},
	}
}

// YAML writes every match as its own YAML document.
type YAML struct {
	writer io.Writer
	count  int
}

func (f *YAML) Format(m query.Match) error {
	var buf bytes.Buffer
	if f.count > 0 {
		buf.WriteString("---\n")
	}
	if err := yaml.NewEncoder(&buf).Encode(record(m)); err != nil {
		return fmt.Errorf("encode %s: %w", m.Path, err)
	}
	f.count++

	_, err := f.writer.Write(buf.Bytes())
	return err
}

// JSONLines writes one JSON object per match and line.
type JSONLines struct {
	writer io.Writer
}

func (f *JSONLines) Format(m query.Match) error {
	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf, yaml.JSON()).Encode(record(m)); err != nil {
		return fmt.Errorf("encode %s: %w", m.Path, err)
	}

	line := bytes.TrimSpace(buf.Bytes())
	line = append(line, '\n')
	_, err := f.writer.Write(line)
	return err
}
