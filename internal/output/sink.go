// Package output renders a completed exchange: the response body to
// stdout or a file, optional header blocks, JSON path extraction, and
// a machine-readable JSON report.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tessark/gurl/internal/client"
)

// Options selects how the response is presented.
type Options struct {
	// File receives the body instead of stdout when non-empty.
	File string

	// IncludeHeaders prints the status line and header block before
	// the body.
	IncludeHeaders bool

	// HeadOnly prints the status line and header block and nothing
	// else.
	HeadOnly bool

	// Silent suppresses the save confirmation note.
	Silent bool

	// JSON replaces the normal rendering with a JSON report.
	JSON bool

	// Extract is a gjson path; when set, the matched value is printed
	// instead of the raw body.
	Extract string
}

// Sink writes rendered responses. Stdout carries the payload, stderr
// carries notes.
type Sink struct {
	opts   Options
	stdout io.Writer
	stderr io.Writer
}

// NewSink creates a sink writing to the given streams.
func NewSink(opts Options, stdout, stderr io.Writer) *Sink {
	return &Sink{opts: opts, stdout: stdout, stderr: stderr}
}

// Write renders one exchange result according to the sink's options.
func (s *Sink) Write(res *client.Result) error {
	if s.opts.JSON {
		return s.writeJSONReport(res)
	}

	body := res.Body
	if !s.opts.HeadOnly && s.opts.Extract != "" {
		value, err := extract(body, s.opts.Extract)
		if err != nil {
			return err
		}
		body = append([]byte(value), '\n')
	}

	dest := s.stdout
	if s.opts.File != "" && s.opts.File != "-" {
		f, err := os.Create(s.opts.File)
		if err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		defer f.Close()
		dest = f
	}

	if s.opts.HeadOnly {
		s.writeHeaderBlock(dest, res)
	} else {
		if s.opts.IncludeHeaders {
			s.writeHeaderBlock(dest, res)
			fmt.Fprint(dest, "\r\n")
		}
		if _, err := dest.Write(body); err != nil {
			return fmt.Errorf("write body: %w", err)
		}
	}

	if dest != s.stdout && !s.opts.Silent {
		fmt.Fprintf(s.stderr, "Response body saved to %s\n", s.opts.File)
	}
	return nil
}

func (s *Sink) writeHeaderBlock(w io.Writer, res *client.Result) {
	fmt.Fprintf(w, "%s %d %s\r\n", res.Status.Proto, res.Status.Code, res.Status.Reason)
	for _, f := range res.Header.Fields() {
		fmt.Fprintf(w, "%s: %s\r\n", f.Name, f.Value)
	}
}

// extract applies a gjson path to the body and returns the matched
// value as text.
func extract(body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("extract: response body is not valid JSON")
	}
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", fmt.Errorf("extract: path %q matched nothing", path)
	}
	return strings.TrimSuffix(result.String(), "\n"), nil
}
