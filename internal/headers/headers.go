package headers

import (
	"bytes"
	"io"
	"strings"
)

type field struct {
	name  string
	value string
}

// Headers is an ordered set of response header fields. Names keep the case
// they were set with; lookups ignore case.
type Headers struct {
	fields []field
}

func NewHeaders() *Headers {
	return &Headers{
		fields: make([]field, 0, 4),
	}
}

// Get returns the value for a header
func (h *Headers) Get(key string) (string, bool) {
	if i := h.index(key); i >= 0 {
		return h.fields[i].value, true
	}
	return "", false
}

// Set replaces the value for a header, keeping its original position
func (h *Headers) Set(key, value string) {
	if i := h.index(key); i >= 0 {
		h.fields[i].value = value
		return
	}
	h.fields = append(h.fields, field{name: key, value: value})
}

// WriteTo writes every field as "Name: value\r\n" followed by the blank line
// that ends the header block.
func (h *Headers) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, f := range h.fields {
		buf.WriteString(f.name)
		buf.WriteString(": ")
		buf.WriteString(f.value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func (h *Headers) index(key string) int {
	for i, f := range h.fields {
		if strings.EqualFold(f.name, key) {
			return i
		}
	}
	return -1
}
