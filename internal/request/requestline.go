package request

import (
	"errors"
	"io"
)

// maxTokenSize bounds a single token so a client cannot grow the buffer
// without limit.
const maxTokenSize = 8192

// readToken skips leading whitespace and returns the run of bytes up to the
// next whitespace byte. The delimiter is consumed. A token cut off by EOF is
// still returned; EOF before any token byte is ErrMalformedRequestLine.
func readToken(br io.ByteReader) (string, error) {
	var tok []byte

	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(tok) > 0 {
					return string(tok), nil
				}
				return "", ErrMalformedRequestLine
			}
			return "", err
		}

		if isSpace(b) {
			if len(tok) == 0 {
				continue
			}
			return string(tok), nil
		}

		if len(tok) >= maxTokenSize {
			return "", ErrTokenTooLong
		}
		tok = append(tok, b)
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
