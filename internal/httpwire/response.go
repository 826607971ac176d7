package httpwire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FramingKind selects the rule that determines where a response body ends.
type FramingKind int

const (
	FramingNoBody FramingKind = iota
	FramingContentLength
	FramingChunked
	FramingUntilClose
)

// Framing is the body framing decision for one response, resolved once
// from the status code, request method, and headers.
type Framing struct {
	Kind   FramingKind
	Length int64 // body length, FramingContentLength only
}

// Status is a parsed response status line.
type Status struct {
	Proto  string
	Code   int
	Reason string
}

// Response is one fully decoded response.
type Response struct {
	Status  Status
	Header  *Header
	Framing Framing
	Body    []byte
}

// Limits bound how much of a response the reader will buffer.
type Limits struct {
	MaxHeaderBytes int
	MaxBodyBytes   int64
}

const (
	DefaultMaxHeaderBytes = 64 << 10
	DefaultMaxBodyBytes   = 10 << 20

	// Chunk-size lines are tiny; anything longer is garbage.
	maxChunkSizeLine = 256

	readChunkSize = 8 << 10
)

var (
	errLineTooLong = errors.New("line too long")
	errBareLF      = errors.New("line not terminated by CRLF")
)

// Reader decodes one HTTP/1.1 response from a byte stream. It advances
// through status line, header block, and body; any failure leaves the
// stream unusable.
type Reader struct {
	br     *bufio.Reader
	limits Limits
}

// NewReader wraps the connection's read side. Zero limit fields fall
// back to the package defaults.
func NewReader(r io.Reader, limits Limits) *Reader {
	if limits.MaxHeaderBytes <= 0 {
		limits.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if limits.MaxBodyBytes <= 0 {
		limits.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Reader{br: bufio.NewReader(r), limits: limits}
}

// ReadResponse runs the full decode: status line, headers, framing
// decision, body. The request method is needed because HEAD responses
// carry headers describing a body that is never sent.
func (r *Reader) ReadResponse(method string) (*Response, error) {
	status, err := r.ReadStatusLine()
	if err != nil {
		return nil, err
	}
	header, err := r.ReadHeaders()
	if err != nil {
		return nil, err
	}
	framing, err := DecideFraming(method, status.Code, header)
	if err != nil {
		return nil, err
	}
	body, err := r.readBody(framing)
	if err != nil {
		return nil, err
	}
	return &Response{Status: status, Header: header, Framing: framing, Body: body}, nil
}

// ReadStatusLine parses `HTTP/<ver> SP <code> SP <reason>`. The reason
// phrase may be empty; the code must be a 3-digit integer in 100-599.
func (r *Reader) ReadStatusLine() (Status, error) {
	line, err := r.readLine(r.limits.MaxHeaderBytes)
	if err != nil {
		switch {
		case errors.Is(err, errLineTooLong):
			return Status{}, fmt.Errorf("%w: status line", ErrHeadersTooLarge)
		case errors.Is(err, io.EOF), errors.Is(err, errBareLF):
			return Status{}, fmt.Errorf("%w: %v", ErrMalformedStatusLine, err)
		}
		return Status{}, fmt.Errorf("read status line: %w", err)
	}

	proto, rest, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return Status{}, fmt.Errorf("%w: %q", ErrMalformedStatusLine, line)
	}
	codeStr, reason, _ := strings.Cut(rest, " ")
	if len(codeStr) != 3 {
		return Status{}, fmt.Errorf("%w: status code %q", ErrMalformedStatusLine, codeStr)
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 100 || code > 599 {
		return Status{}, fmt.Errorf("%w: status code %q", ErrMalformedStatusLine, codeStr)
	}
	return Status{Proto: proto, Code: code, Reason: reason}, nil
}

// ReadHeaders consumes the header block up to and including the blank
// line. Each line splits on the first colon; values are trimmed. The
// whole block is bounded by MaxHeaderBytes.
func (r *Reader) ReadHeaders() (*Header, error) {
	header := &Header{}
	remaining := r.limits.MaxHeaderBytes
	for {
		line, err := r.readLine(remaining)
		if err != nil {
			switch {
			case errors.Is(err, errLineTooLong):
				return nil, fmt.Errorf("%w: limit %d bytes", ErrHeadersTooLarge, r.limits.MaxHeaderBytes)
			case errors.Is(err, io.EOF):
				return nil, fmt.Errorf("%w: connection closed inside header block", ErrMalformedHeader)
			case errors.Is(err, errBareLF):
				return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		remaining -= len(line) + 2
		if line == "" {
			return header, nil
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		header.Add(name, strings.Trim(value, " \t"))
	}
}

// DecideFraming resolves the body framing rule once per response.
// Transfer-Encoding: chunked takes precedence over Content-Length.
func DecideFraming(method string, code int, header *Header) (Framing, error) {
	if strings.EqualFold(strings.TrimSpace(method), "HEAD") ||
		(code >= 100 && code < 200) || code == 204 || code == 304 {
		return Framing{Kind: FramingNoBody}, nil
	}
	for _, te := range header.Values("Transfer-Encoding") {
		if strings.Contains(strings.ToLower(te), "chunked") {
			return Framing{Kind: FramingChunked}, nil
		}
	}
	if cl, ok := header.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return Framing{}, fmt.Errorf("%w: Content-Length %q", ErrMalformedHeader, cl)
		}
		return Framing{Kind: FramingContentLength, Length: n}, nil
	}
	return Framing{Kind: FramingUntilClose}, nil
}

func (r *Reader) readBody(framing Framing) ([]byte, error) {
	switch framing.Kind {
	case FramingNoBody:
		return nil, nil
	case FramingContentLength:
		return r.readContentLength(framing.Length)
	case FramingChunked:
		return r.readChunked()
	default:
		return r.readUntilClose()
	}
}

func (r *Reader) readContentLength(length int64) ([]byte, error) {
	if length > r.limits.MaxBodyBytes {
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d", ErrResponseTooLarge, length, r.limits.MaxBodyBytes)
	}
	body := make([]byte, length)
	n, err := io.ReadFull(r.br, body)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedBody, n, length)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// readChunked decodes chunked transfer-encoding: hex size lines with
// optional extensions, chunk payloads each followed by CRLF, terminated
// by a zero-size chunk and an optional trailer section that is read and
// discarded. Only the concatenated payloads are returned.
func (r *Reader) readChunked() ([]byte, error) {
	var body []byte
	for {
		line, err := r.readLine(maxChunkSizeLine)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: connection closed inside chunked body after %d bytes", ErrTruncatedBody, len(body))
			}
			if errors.Is(err, errLineTooLong) || errors.Is(err, errBareLF) {
				return nil, fmt.Errorf("%w: %v", ErrMalformedChunkSize, err)
			}
			return nil, fmt.Errorf("read chunk size: %w", err)
		}
		sizeStr, _, _ := strings.Cut(line, ";")
		size, err := strconv.ParseUint(strings.TrimSpace(sizeStr), 16, 63)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedChunkSize, line)
		}
		if size == 0 {
			if err := r.discardTrailers(); err != nil {
				return nil, err
			}
			return body, nil
		}
		// Compare in uint64 space so a huge declared size cannot wrap
		// the sum negative and slip past the cap.
		if size > uint64(r.limits.MaxBodyBytes-int64(len(body))) {
			return nil, fmt.Errorf("%w: %d bytes decoded, limit %d", ErrResponseTooLarge, len(body), r.limits.MaxBodyBytes)
		}

		chunk := make([]byte, size)
		n, err := io.ReadFull(r.br, chunk)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: got %d of %d chunk bytes", ErrTruncatedBody, n, size)
			}
			return nil, fmt.Errorf("read chunk: %w", err)
		}
		var crlf [2]byte
		if _, err := io.ReadFull(r.br, crlf[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedChunkTerminator, err)
		}
		if crlf[0] != '\r' || crlf[1] != '\n' {
			return nil, fmt.Errorf("%w: got %q", ErrMalformedChunkTerminator, string(crlf[:]))
		}
		body = append(body, chunk...)
	}
}

// discardTrailers reads trailer headers after the terminal chunk up to
// the final blank line. They are not exposed to the caller.
func (r *Reader) discardTrailers() error {
	remaining := r.limits.MaxHeaderBytes
	for {
		line, err := r.readLine(remaining)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				return fmt.Errorf("%w: trailer section", ErrHeadersTooLarge)
			}
			if errors.Is(err, io.EOF) || errors.Is(err, errBareLF) {
				return fmt.Errorf("%w: trailer %v", ErrMalformedChunkTerminator, err)
			}
			return fmt.Errorf("read trailer: %w", err)
		}
		remaining -= len(line) + 2
		if line == "" {
			return nil
		}
	}
}

// readUntilClose buffers until the peer closes the stream. There is no
// explicit terminator under this framing, so a mid-stream read error is
// reported as-is rather than synthesized into a truncation error.
func (r *Reader) readUntilClose() ([]byte, error) {
	var body []byte
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.br.Read(buf)
		if n > 0 {
			if int64(len(body))+int64(n) > r.limits.MaxBodyBytes {
				return nil, fmt.Errorf("%w: %d bytes read, limit %d", ErrResponseTooLarge, len(body)+n, r.limits.MaxBodyBytes)
			}
			body = append(body, buf[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return body, nil
			}
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
}

// readLine reads one CRLF-terminated line, returning it without the
// terminator. Lines longer than max fail with errLineTooLong; a bare LF
// fails with errBareLF.
func (r *Reader) readLine(max int) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			break
		}
		sb.WriteByte(b)
		if sb.Len() > max {
			return "", errLineTooLong
		}
	}
	line := sb.String()
	if !strings.HasSuffix(line, "\r") {
		return "", errBareLF
	}
	return strings.TrimSuffix(line, "\r"), nil
}
