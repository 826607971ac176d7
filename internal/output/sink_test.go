package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tessark/gurl/internal/client"
	"github.com/tessark/gurl/internal/httpwire"
	"github.com/tessark/gurl/internal/target"
)

func sampleResult(t *testing.T, body string) *client.Result {
	t.Helper()
	u, err := target.Parse("http://example.com/data")
	if err != nil {
		t.Fatalf("parse target: %v", err)
	}
	header := &httpwire.Header{}
	header.Add("Content-Type", "application/json")
	header.Add("X-Token", "abc")
	return &client.Result{
		Status:  httpwire.Status{Proto: "HTTP/1.1", Code: 200, Reason: "OK"},
		Header:  header,
		Body:    []byte(body),
		Target:  u,
		Hops:    1,
		Elapsed: 42 * time.Millisecond,
	}
}

func TestWriteBodyToStdout(t *testing.T) {
	var out, errOut strings.Builder
	s := NewSink(Options{}, &out, &errOut)
	if err := s.Write(sampleResult(t, `{"ok":true}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if out.String() != `{"ok":true}` {
		t.Fatalf("stdout = %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected stderr output: %q", errOut.String())
	}
}

func TestWriteIncludeHeaders(t *testing.T) {
	var out strings.Builder
	s := NewSink(Options{IncludeHeaders: true}, &out, &strings.Builder{})
	if err := s.Write(sampleResult(t, "body")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: application/json\r\n" +
		"X-Token: abc\r\n" +
		"\r\n" +
		"body"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestWriteHeadOnly(t *testing.T) {
	var out strings.Builder
	s := NewSink(Options{HeadOnly: true}, &out, &strings.Builder{})
	if err := s.Write(sampleResult(t, "should not appear")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.Contains(out.String(), "should not appear") {
		t.Fatalf("head-only output leaked the body: %q", out.String())
	}
	if !strings.HasPrefix(out.String(), "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("missing status line: %q", out.String())
	}
}

func TestWriteHeadOnlyToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.txt")
	var out strings.Builder
	s := NewSink(Options{HeadOnly: true, File: path}, &out, &strings.Builder{})
	if err := s.Write(sampleResult(t, "ignored")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if !strings.HasPrefix(string(data), "HTTP/1.1 200 OK\r\n") || strings.Contains(string(data), "ignored") {
		t.Fatalf("file contents = %q", data)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout must stay empty for file output, got %q", out.String())
	}
}

func TestWriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	var out, errOut strings.Builder
	s := NewSink(Options{File: path}, &out, &errOut)
	if err := s.Write(sampleResult(t, "saved body")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if string(data) != "saved body" {
		t.Fatalf("file contents = %q", data)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout must stay empty for file output, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Response body saved to "+path) {
		t.Fatalf("missing save note: %q", errOut.String())
	}
}

func TestWriteToFileSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	var errOut strings.Builder
	s := NewSink(Options{File: path, Silent: true}, &strings.Builder{}, &errOut)
	if err := s.Write(sampleResult(t, "x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if errOut.Len() != 0 {
		t.Fatalf("silent mode must suppress the note, got %q", errOut.String())
	}
}

func TestWriteExtract(t *testing.T) {
	var out strings.Builder
	s := NewSink(Options{Extract: "user.name"}, &out, &strings.Builder{})
	if err := s.Write(sampleResult(t, `{"user":{"name":"ada","id":7}}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if out.String() != "ada\n" {
		t.Fatalf("extracted = %q", out.String())
	}
}

func TestWriteExtractErrors(t *testing.T) {
	s := NewSink(Options{Extract: "missing"}, &strings.Builder{}, &strings.Builder{})
	if err := s.Write(sampleResult(t, `{"a":1}`)); err == nil {
		t.Fatalf("expected error for unmatched path")
	}

	s = NewSink(Options{Extract: "a"}, &strings.Builder{}, &strings.Builder{})
	if err := s.Write(sampleResult(t, "not json")); err == nil {
		t.Fatalf("expected error for non-JSON body")
	}
}

func TestWriteJSONReport(t *testing.T) {
	var out strings.Builder
	s := NewSink(Options{JSON: true}, &out, &strings.Builder{})
	if err := s.Write(sampleResult(t, "payload")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var report Report
	if err := json.Unmarshal([]byte(out.String()), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, out.String())
	}
	if report.URL != "http://example.com/data" || report.Status != 200 {
		t.Fatalf("report = %+v", report)
	}
	if report.Redirects != 1 || report.ElapsedMS != 42 {
		t.Fatalf("report timing = %+v", report)
	}
	if len(report.Headers) != 2 || report.Headers[0].Name != "Content-Type" {
		t.Fatalf("report headers = %+v", report.Headers)
	}
	if report.Body != "payload" {
		t.Fatalf("report body = %q", report.Body)
	}
}
