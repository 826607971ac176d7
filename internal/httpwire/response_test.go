package httpwire

import (
	"errors"
	"strings"
	"testing"
)

func readString(t *testing.T, method, raw string, limits Limits) (*Response, error) {
	t.Helper()
	return NewReader(strings.NewReader(raw), limits).ReadResponse(method)
}

func TestReadResponseContentLength(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhellotrailing garbage ignored"
	resp, err := readString(t, "GET", raw, Limits{})
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if resp.Status.Code != 200 || resp.Status.Reason != "OK" {
		t.Fatalf("unexpected status: %+v", resp.Status)
	}
	if resp.Framing.Kind != FramingContentLength || resp.Framing.Length != 5 {
		t.Fatalf("unexpected framing: %+v", resp.Framing)
	}
	if string(resp.Body) != "hello" {
		t.Fatalf("body = %q, want %q", resp.Body, "hello")
	}
}

func TestReadResponseTruncatedBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nhel"
	_, err := readString(t, "GET", raw, Limits{})
	if !errors.Is(err, ErrTruncatedBody) {
		t.Fatalf("err = %v, want ErrTruncatedBody", err)
	}
	if !strings.Contains(err.Error(), "3 of 10") {
		t.Fatalf("error should report partial byte count, got %v", err)
	}
}

func TestReadResponseChunked(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"
	resp, err := readString(t, "GET", raw, Limits{})
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if resp.Framing.Kind != FramingChunked {
		t.Fatalf("unexpected framing: %+v", resp.Framing)
	}
	if string(resp.Body) != "Wikipedia" {
		t.Fatalf("body = %q, want %q", resp.Body, "Wikipedia")
	}
}

func TestReadResponseChunkedExtensionAndTrailers(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5;ext=ignored\r\nhello\r\n0\r\nExpires: never\r\nX-Checksum: abc\r\n\r\n"
	resp, err := readString(t, "GET", raw, Limits{})
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if string(resp.Body) != "hello" {
		t.Fatalf("body = %q, want %q", resp.Body, "hello")
	}
	if resp.Header.Has("X-Checksum") {
		t.Fatalf("trailer headers must be discarded, got %v", resp.Header.Fields())
	}
}

func TestReadResponseChunkedPrecedence(t *testing.T) {
	// Transfer-Encoding wins even with a simultaneous Content-Length.
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 9999\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"2\r\nok\r\n0\r\n\r\n"
	resp, err := readString(t, "GET", raw, Limits{})
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if resp.Framing.Kind != FramingChunked {
		t.Fatalf("framing = %+v, want chunked", resp.Framing)
	}
	if string(resp.Body) != "ok" {
		t.Fatalf("body = %q, want %q", resp.Body, "ok")
	}
}

func TestReadResponseMalformedChunkSize(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\n"
	_, err := readString(t, "GET", raw, Limits{})
	if !errors.Is(err, ErrMalformedChunkSize) {
		t.Fatalf("err = %v, want ErrMalformedChunkSize", err)
	}
}

func TestReadResponseMalformedChunkTerminator(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWikiXX5\r\npedia\r\n0\r\n\r\n"
	_, err := readString(t, "GET", raw, Limits{})
	if !errors.Is(err, ErrMalformedChunkTerminator) {
		t.Fatalf("err = %v, want ErrMalformedChunkTerminator", err)
	}
}

func TestReadResponseUntilClose(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n<html>no framing headers</html>"
	resp, err := readString(t, "GET", raw, Limits{})
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if resp.Framing.Kind != FramingUntilClose {
		t.Fatalf("framing = %+v, want until-close", resp.Framing)
	}
	if string(resp.Body) != "<html>no framing headers</html>" {
		t.Fatalf("body = %q", resp.Body)
	}
}

func TestReadResponseNoBody(t *testing.T) {
	cases := []struct {
		name   string
		method string
		raw    string
	}{
		{"head request", "HEAD", "HTTP/1.1 200 OK\r\nContent-Length: 1234\r\n\r\n"},
		{"204", "GET", "HTTP/1.1 204 No Content\r\n\r\n"},
		{"304", "GET", "HTTP/1.1 304 Not Modified\r\nContent-Length: 10\r\n\r\n"},
		{"1xx", "GET", "HTTP/1.1 100 Continue\r\n\r\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := readString(t, tc.method, tc.raw, Limits{})
			if err != nil {
				t.Fatalf("ReadResponse failed: %v", err)
			}
			if resp.Framing.Kind != FramingNoBody {
				t.Fatalf("framing = %+v, want no-body", resp.Framing)
			}
			if len(resp.Body) != 0 {
				t.Fatalf("expected empty body, got %q", resp.Body)
			}
		})
	}
}

func TestReadResponseTooLarge(t *testing.T) {
	t.Run("declared content length", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n" + strings.Repeat("x", 100)
		_, err := readString(t, "GET", raw, Limits{MaxBodyBytes: 10})
		if !errors.Is(err, ErrResponseTooLarge) {
			t.Fatalf("err = %v, want ErrResponseTooLarge", err)
		}
	})

	t.Run("until close", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\n\r\n" + strings.Repeat("x", 100)
		_, err := readString(t, "GET", raw, Limits{MaxBodyBytes: 10})
		if !errors.Is(err, ErrResponseTooLarge) {
			t.Fatalf("err = %v, want ErrResponseTooLarge", err)
		}
	})

	t.Run("chunked", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n64\r\n" + strings.Repeat("x", 100) + "\r\n0\r\n\r\n"
		_, err := readString(t, "GET", raw, Limits{MaxBodyBytes: 10})
		if !errors.Is(err, ErrResponseTooLarge) {
			t.Fatalf("err = %v, want ErrResponseTooLarge", err)
		}
	})

	t.Run("chunked size near int64 max", func(t *testing.T) {
		// The declared size plus the bytes already decoded must not wrap
		// the cap comparison; this must fail cleanly, not allocate.
		raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n1\r\nx\r\n7FFFFFFFFFFFFFFF\r\n"
		_, err := readString(t, "GET", raw, Limits{MaxBodyBytes: 10})
		if !errors.Is(err, ErrResponseTooLarge) {
			t.Fatalf("err = %v, want ErrResponseTooLarge", err)
		}
	})
}

func TestReadStatusLineErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not http", "ICY 200 OK\r\n\r\n"},
		{"missing code", "HTTP/1.1\r\n\r\n"},
		{"short code", "HTTP/1.1 20 OK\r\n\r\n"},
		{"non-numeric code", "HTTP/1.1 2x0 OK\r\n\r\n"},
		{"code out of range", "HTTP/1.1 999 Strange\r\n\r\n"},
		{"empty stream", ""},
		{"bare lf", "HTTP/1.1 200 OK\n\r\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readString(t, "GET", tc.raw, Limits{})
			if !errors.Is(err, ErrMalformedStatusLine) {
				t.Fatalf("err = %v, want ErrMalformedStatusLine", err)
			}
		})
	}
}

func TestReadHeadersErrors(t *testing.T) {
	t.Run("missing colon", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nBogusHeaderWithoutColon\r\n\r\n"
		_, err := readString(t, "GET", raw, Limits{})
		if !errors.Is(err, ErrMalformedHeader) {
			t.Fatalf("err = %v, want ErrMalformedHeader", err)
		}
	})

	t.Run("block exceeds cap", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nX-Big: " + strings.Repeat("v", 4096) + "\r\n\r\n"
		_, err := readString(t, "GET", raw, Limits{MaxHeaderBytes: 512})
		if !errors.Is(err, ErrHeadersTooLarge) {
			t.Fatalf("err = %v, want ErrHeadersTooLarge", err)
		}
	})

	t.Run("invalid content length value", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nContent-Length: banana\r\n\r\n"
		_, err := readString(t, "GET", raw, Limits{})
		if !errors.Is(err, ErrMalformedHeader) {
			t.Fatalf("err = %v, want ErrMalformedHeader", err)
		}
	})
}

func TestReadHeadersPreservesOrderAndDuplicates(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n" +
		"Set-Cookie: a=1\r\n" +
		"Content-Length: 0\r\n" +
		"Set-Cookie: b=2\r\n" +
		"\r\n"
	resp, err := readString(t, "GET", raw, Limits{})
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	cookies := resp.Header.Values("Set-Cookie")
	if len(cookies) != 2 || cookies[0] != "a=1" || cookies[1] != "b=2" {
		t.Fatalf("duplicate headers lost or reordered: %v", cookies)
	}
	fields := resp.Header.Fields()
	if fields[0].Name != "Set-Cookie" || fields[1].Name != "Content-Length" {
		t.Fatalf("header order not preserved: %v", fields)
	}
}

func TestDecideFramingTable(t *testing.T) {
	mkHeader := func(pairs ...string) *Header {
		h := &Header{}
		for i := 0; i+1 < len(pairs); i += 2 {
			h.Add(pairs[i], pairs[i+1])
		}
		return h
	}

	cases := []struct {
		name   string
		method string
		code   int
		header *Header
		want   FramingKind
	}{
		{"head beats content length", "HEAD", 200, mkHeader("Content-Length", "10"), FramingNoBody},
		{"chunked case insensitive", "GET", 200, mkHeader("Transfer-Encoding", "CHUNKED"), FramingChunked},
		{"chunked in compound value", "GET", 200, mkHeader("Transfer-Encoding", "gzip, chunked"), FramingChunked},
		{"content length", "GET", 200, mkHeader("Content-Length", "42"), FramingContentLength},
		{"until close fallback", "GET", 200, mkHeader(), FramingUntilClose},
		{"204 no body", "GET", 204, mkHeader("Content-Length", "5"), FramingNoBody},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			framing, err := DecideFraming(tc.method, tc.code, tc.header)
			if err != nil {
				t.Fatalf("DecideFraming failed: %v", err)
			}
			if framing.Kind != tc.want {
				t.Fatalf("framing = %+v, want kind %v", framing, tc.want)
			}
		})
	}
}
