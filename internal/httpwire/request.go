package httpwire

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/tessark/gurl/internal/target"
)

// RequestSpec describes one outgoing request. Headers are the caller's
// own fields, transmitted verbatim in order; the serializer fills in
// the protocol-mandated ones around them.
type RequestSpec struct {
	Method string
	Header *Header
	Body   []byte

	// UserAgent replaces the default User-Agent unless the caller's
	// Header already carries one.
	UserAgent string

	// Authorization, when non-empty, is emitted as an Authorization
	// header unless the caller's Header already carries one. The value
	// includes the scheme, e.g. "Basic dXNlcjpwYXNz".
	Authorization string
}

// DefaultUserAgent identifies the client when no override is given.
const DefaultUserAgent = "gurl/1.0"

// Serialize renders the request spec as the exact byte sequence sent
// over the connection: request line, headers, blank line, body.
//
// Connection: close is always forced, regardless of caller headers, so
// the server terminates the connection and until-close framing stays
// unambiguous. A body supplied alongside a HEAD request is a documented
// precondition violation and is dropped without error.
func (r *RequestSpec) Serialize(u target.ParsedURL) []byte {
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		method = "GET"
	}

	body := r.Body
	if method == "HEAD" {
		body = nil
	}

	var buf bytes.Buffer
	buf.WriteString(method)
	buf.WriteByte(' ')
	buf.WriteString(u.RequestURI())
	buf.WriteString(" HTTP/1.1\r\n")

	if !r.Header.Has("Host") {
		writeField(&buf, "Host", u.HostHeader())
	}
	if !r.Header.Has("User-Agent") {
		ua := r.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		writeField(&buf, "User-Agent", ua)
	}
	writeField(&buf, "Connection", "close")
	if len(body) > 0 && !r.Header.Has("Content-Length") {
		writeField(&buf, "Content-Length", strconv.Itoa(len(body)))
	}
	if r.Authorization != "" && !r.Header.Has("Authorization") {
		writeField(&buf, "Authorization", r.Authorization)
	}

	for _, f := range r.Header.Fields() {
		// Connection is fixed above; a caller override would break framing.
		if strings.EqualFold(f.Name, "Connection") {
			continue
		}
		writeField(&buf, f.Name, f.Value)
	}

	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}
