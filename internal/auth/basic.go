package auth

import (
	"context"
	"encoding/base64"
)

// BasicProvider implements HTTP Basic authentication from a user:pass
// credential string, as supplied by the -u flag.
type BasicProvider struct {
	userinfo string
}

// NewBasicProvider creates a provider for the given user:pass string.
// The string is encoded as given; a missing password encodes as "user".
func NewBasicProvider(userinfo string) *BasicProvider {
	return &BasicProvider{userinfo: userinfo}
}

// Authorization returns the Basic credential without any network calls.
func (p *BasicProvider) Authorization(ctx context.Context) (string, error) {
	if p.userinfo == "" {
		return "", nil
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(p.userinfo)), nil
}

// Close is a no-op for basic credential providers.
func (p *BasicProvider) Close() error {
	return nil
}
