// Package target resolves absolute HTTP and HTTPS URLs into the pieces
// the transport and request builder need: scheme, host, port, and the
// verbatim path+query for the request line.
package target

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Scheme identifies the transport flavor of a parsed URL.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// ErrInvalidURL is returned when a URL cannot be resolved into a target.
var ErrInvalidURL = errors.New("invalid URL")

// ParsedURL is one resolved request target. It is immutable after Parse.
type ParsedURL struct {
	Scheme Scheme
	Host   string
	Port   int
	Path   string
	Query  string
}

// Parse resolves an absolute URL string. The scheme must be http or
// https; the port defaults to 80 or 443 by scheme; the path defaults to
// "/". No percent-decoding is performed: path and query are kept
// verbatim for the request line.
func Parse(raw string) (ParsedURL, error) {
	var parsed ParsedURL

	switch {
	case strings.HasPrefix(raw, "http://"):
		parsed.Scheme = SchemeHTTP
		parsed.Port = 80
		raw = strings.TrimPrefix(raw, "http://")
	case strings.HasPrefix(raw, "https://"):
		parsed.Scheme = SchemeHTTPS
		parsed.Port = 443
		raw = strings.TrimPrefix(raw, "https://")
	default:
		return ParsedURL{}, fmt.Errorf("%w: URL must start with http:// or https://", ErrInvalidURL)
	}

	hostport := raw
	rest := ""
	if idx := strings.IndexAny(raw, "/?"); idx >= 0 {
		hostport = raw[:idx]
		rest = raw[idx:]
	}

	host, port, err := splitHostPort(hostport)
	if err != nil {
		return ParsedURL{}, err
	}
	parsed.Host = host
	if port != 0 {
		parsed.Port = port
	}

	if parsed.Host == "" {
		return ParsedURL{}, fmt.Errorf("%w: empty host", ErrInvalidURL)
	}

	parsed.Path = "/"
	if strings.HasPrefix(rest, "/") {
		if q := strings.Index(rest, "?"); q >= 0 {
			parsed.Path = rest[:q]
			parsed.Query = rest[q+1:]
		} else {
			parsed.Path = rest
		}
	} else if strings.HasPrefix(rest, "?") {
		parsed.Query = rest[1:]
	}

	return parsed, nil
}

// splitHostPort separates host from an optional :port suffix. Bracketed
// IPv6 literals keep their colons.
func splitHostPort(hostport string) (string, int, error) {
	host := hostport
	portPart := ""

	if strings.HasPrefix(hostport, "[") {
		end := strings.Index(hostport, "]")
		if end < 0 {
			return "", 0, fmt.Errorf("%w: unterminated IPv6 literal", ErrInvalidURL)
		}
		host = hostport[:end+1]
		if rest := hostport[end+1:]; rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return "", 0, fmt.Errorf("%w: malformed host %q", ErrInvalidURL, hostport)
			}
			portPart = rest[1:]
		}
	} else if idx := strings.Index(hostport, ":"); idx >= 0 {
		host = hostport[:idx]
		portPart = hostport[idx+1:]
	}

	if portPart == "" {
		return host, 0, nil
	}
	port, err := strconv.Atoi(portPart)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: invalid port %q", ErrInvalidURL, portPart)
	}
	return host, port, nil
}

// RequestURI returns path plus any query, exactly as written on the
// request line.
func (u ParsedURL) RequestURI() string {
	if u.Query != "" {
		return u.Path + "?" + u.Query
	}
	return u.Path
}

// HostHeader returns the Host header value: host alone on the scheme's
// default port, host:port otherwise.
func (u ParsedURL) HostHeader() string {
	if u.defaultPort() {
		return u.Host
	}
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}

// Address returns the host:port dial target.
func (u ParsedURL) Address() string {
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}

// URL reassembles the absolute URL, mainly for verbose output and
// redirect narration.
func (u ParsedURL) URL() string {
	var b strings.Builder
	b.WriteString(string(u.Scheme))
	b.WriteString("://")
	b.WriteString(u.HostHeader())
	b.WriteString(u.RequestURI())
	return b.String()
}

func (u ParsedURL) defaultPort() bool {
	return (u.Scheme == SchemeHTTP && u.Port == 80) || (u.Scheme == SchemeHTTPS && u.Port == 443)
}
