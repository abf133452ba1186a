package response

import (
	"github.com/go-git/go-billy/v5"

	"github.com/Brownie44l1/fileserver/internal/headers"
)

const notImplementedBody = "Error: 501 Not Implemented"

// ErrorResponder writes the canned error responses. The 404 body is the file
// at Page inside FS; the 501 body is inline text.
type ErrorResponder struct {
	FS   billy.Filesystem
	Page string
}

// Respond writes a 404 for StatusNotFound and a 501 for any other code. A
// missing 404 page gives an empty body, not an error. The returned error is
// only a write failure on w, which the caller may log and drop.
func (e *ErrorResponder) Respond(w *Writer, code StatusCode) error {
	if code == StatusNotFound {
		return e.notFound(w)
	}
	return e.notImplemented(w)
}

func (e *ErrorResponder) notFound(w *Writer) error {
	if err := w.WriteStatusLine(StatusNotFound); err != nil {
		return err
	}

	h := headers.NewHeaders()
	h.Set("Connection", "close")
	h.Set("Content-Type", "text/html")
	if err := w.WriteHeaders(h); err != nil {
		return err
	}

	if e.FS == nil || e.Page == "" {
		return w.Flush()
	}

	// Anything but a readable regular file leaves the body empty.
	info, err := e.FS.Stat(e.Page)
	if err != nil || !info.Mode().IsRegular() {
		return w.Flush()
	}

	page, err := e.FS.Open(e.Page)
	if err != nil {
		return w.Flush()
	}
	defer page.Close()

	_, err = w.WriteBodyFrom(page)
	return err
}

func (e *ErrorResponder) notImplemented(w *Writer) error {
	if err := w.WriteStatusLine(StatusNotImplemented); err != nil {
		return err
	}

	h := headers.NewHeaders()
	h.Set("Connection", "close")
	h.Set("Content-Type", "text/plain")
	if err := w.WriteHeaders(h); err != nil {
		return err
	}

	if _, err := w.WriteBody([]byte(notImplementedBody)); err != nil {
		return err
	}
	return w.Flush()
}
