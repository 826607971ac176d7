package httpwire

import "errors"

// Protocol errors surfaced while decoding a response. All of them are
// terminal for the current exchange; the caller closes the connection
// before returning them.
var (
	ErrMalformedStatusLine      = errors.New("malformed status line")
	ErrMalformedHeader          = errors.New("malformed header")
	ErrHeadersTooLarge          = errors.New("header block too large")
	ErrTruncatedBody            = errors.New("truncated body")
	ErrMalformedChunkSize       = errors.New("malformed chunk size")
	ErrMalformedChunkTerminator = errors.New("malformed chunk terminator")
	ErrResponseTooLarge         = errors.New("response too large")
)
