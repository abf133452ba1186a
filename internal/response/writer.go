package response

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/Brownie44l1/fileserver/internal/headers"
)

// writerState tracks what's been written so far
type writerState int

const (
	stateStart writerState = iota
	stateStatusWritten
	stateHeadersWritten
	stateBodyWritten
)

// Writer writes one HTTP response to an io.Writer. Output is buffered until
// Flush or until the body is streamed.
type Writer struct {
	w          *bufio.Writer
	state      writerState
	statusCode StatusCode
	bodyBytes  int64
	hadError   bool

	// contentLength is the announced body size, -1 when none was sent.
	contentLength int64
}

// NewWriter creates a new response writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:             bufio.NewWriterSize(w, 4096),
		state:         stateStart,
		contentLength: -1,
	}
}

// WriteStatusLine writes the HTTP status line
func (w *Writer) WriteStatusLine(code StatusCode) error {
	if w.state != stateStart {
		return fmt.Errorf("status line already written")
	}

	_, err := fmt.Fprintf(w.w, "HTTP/1.1 %d %s\r\n", code, StatusText(code))
	if err != nil {
		w.hadError = true
		return err
	}

	w.statusCode = code
	w.state = stateStatusWritten
	return nil
}

// WriteHeaders writes all headers and the blank line that ends them
func (w *Writer) WriteHeaders(h *headers.Headers) error {
	if w.state != stateStatusWritten {
		return fmt.Errorf("must write status line before headers")
	}

	if cl, ok := h.Get("Content-Length"); ok {
		length, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || length < 0 {
			return fmt.Errorf("invalid content-length: %q", cl)
		}
		w.contentLength = length
	}

	if _, err := h.WriteTo(w.w); err != nil {
		w.hadError = true
		return err
	}

	w.state = stateHeadersWritten
	return nil
}

// WriteBody writes p as (part of) the response body
func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != stateHeadersWritten && w.state != stateBodyWritten {
		return 0, fmt.Errorf("must write headers before body")
	}

	n, err := w.w.Write(p)
	w.bodyBytes += int64(n)
	if err != nil {
		w.hadError = true
		return n, err
	}

	w.state = stateBodyWritten
	return n, nil
}

// WriteBodyFrom copies src to the body and flushes the connection. With a
// Content-Length announced, nothing past that many body bytes is sent.
func (w *Writer) WriteBodyFrom(src io.Reader) (int64, error) {
	if w.state != stateHeadersWritten && w.state != stateBodyWritten {
		return 0, fmt.Errorf("must write headers before body")
	}

	if w.contentLength >= 0 {
		src = io.LimitReader(src, w.contentLength-w.bodyBytes)
	}

	n, err := Stream(w.w, src)
	w.bodyBytes += n
	if err != nil {
		w.hadError = true
		return n, err
	}

	w.state = stateBodyWritten
	return n, nil
}

// Flush sends anything still buffered
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		w.hadError = true
		return err
	}
	return nil
}

func (w *Writer) HadError() bool {
	return w.hadError
}

// HeadersWritten reports whether the header block has been handed to the
// buffer, after which no other response may be started.
func (w *Writer) HeadersWritten() bool {
	return w.state >= stateHeadersWritten
}

func (w *Writer) StatusCode() StatusCode {
	return w.statusCode
}

func (w *Writer) BodyBytes() int64 {
	return w.bodyBytes
}

// ContentLength is the announced body size, or -1 if none was announced.
func (w *Writer) ContentLength() int64 {
	return w.contentLength
}
