// Package httpwire implements the HTTP/1.1 wire protocol for a single
// request/response exchange: request serialization, response framing,
// and body decoding (Content-Length, chunked transfer-encoding, and
// read-until-close).
//
// The package operates on plain byte streams and is independent of the
// transport: callers hand it an io.Reader/io.Writer pair obtained from
// an open connection.
package httpwire
