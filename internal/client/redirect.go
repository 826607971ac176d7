package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tessark/gurl/internal/target"
)

var (
	// ErrMissingRedirectTarget reports a 3xx response with no usable
	// Location header while redirect following is enabled.
	ErrMissingRedirectTarget = errors.New("redirect response without Location header")

	// ErrTooManyRedirects reports a redirect chain longer than the
	// configured hop limit.
	ErrTooManyRedirects = errors.New("too many redirects")
)

func isRedirect(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

// redirectMethodAndBody applies RFC 7231 method rewriting for a
// followed redirect. 303 always switches to GET and drops the body.
// 301 and 302 do the same only when the current method is POST. 307
// and 308 preserve both method and body.
func redirectMethodAndBody(code int, method string, body []byte) (string, []byte) {
	switch code {
	case 303:
		return "GET", nil
	case 301, 302:
		if method == "POST" {
			return "GET", nil
		}
	}
	return method, body
}

// ResolveLocation turns a Location header value into the next target,
// resolving scheme-relative, absolute-path, and relative-path forms
// against the URL that produced the redirect.
func ResolveLocation(base target.ParsedURL, location string) (target.ParsedURL, error) {
	location = strings.TrimSpace(location)

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		next, err := target.Parse(location)
		if err != nil {
			return target.ParsedURL{}, fmt.Errorf("resolve Location %q: %w", location, err)
		}
		return next, nil

	case strings.HasPrefix(location, "//"):
		next, err := target.Parse(string(base.Scheme) + ":" + location)
		if err != nil {
			return target.ParsedURL{}, fmt.Errorf("resolve Location %q: %w", location, err)
		}
		return next, nil
	}

	next := base
	switch {
	case strings.HasPrefix(location, "/"):
		next.Path, next.Query = splitPathQuery(location)

	case strings.HasPrefix(location, "?"):
		next.Query = strings.TrimPrefix(location, "?")

	default:
		// Relative path: resolve against the directory of the
		// current path.
		dir := base.Path[:strings.LastIndex(base.Path, "/")+1]
		next.Path, next.Query = splitPathQuery(dir + location)
	}
	return next, nil
}

func splitPathQuery(ref string) (path, query string) {
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}
