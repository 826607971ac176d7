// Package auth supplies Authorization header values for outgoing
// requests.
package auth

import "context"

// Provider produces the Authorization header value for a request
// attempt. The same provider is consulted on every redirect hop.
type Provider interface {
	// Authorization returns the full header value including the scheme,
	// e.g. "Basic dXNlcjpwYXNz". An empty value means no header.
	Authorization(ctx context.Context) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}
