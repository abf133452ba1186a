package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrTokenTooLong         = errors.New("request token too long")
)

// RequestLine holds the two tokens the server acts on. Everything after the
// path, headers included, is left unread on the connection.
type RequestLine struct {
	Method string
	Path   string
}

// ReadRequestLine reads the method and path tokens from r. Both must be
// present; a stream that ends before the path is a malformed request.
func ReadRequestLine(r io.Reader) (*RequestLine, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	method, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("reading method: %w", err)
	}

	path, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("reading path: %w", err)
	}

	return &RequestLine{
		Method: method,
		Path:   path,
	}, nil
}
