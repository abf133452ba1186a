package server

import (
	"bytes"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

const notFoundPage = "<html><body>404 - page not found</body></html>\n"

// newTestServer builds a server over an in-memory document root
func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()

	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}

	cfg := DefaultConfig()
	cfg.Filesystem = fs

	s, err := New(cfg)
	require.NoError(t, err)
	s.Logger = &NullLogger{}
	return s
}

// parsedResponse is a raw response split at the first blank line
type parsedResponse struct {
	StatusLine string
	Headers    map[string]string
	Body       string
}

func parseResponse(t *testing.T, raw string) parsedResponse {
	t.Helper()

	head, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found, "no header terminator in %q", raw)

	lines := strings.Split(head, "\r\n")
	resp := parsedResponse{
		StatusLine: lines[0],
		Headers:    make(map[string]string),
		Body:       body,
	}
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ": ")
		require.True(t, ok, "malformed header line %q", line)
		resp.Headers[name] = value
	}
	return resp
}

// skewedFS reports a fixed size from Stat regardless of what the file holds,
// as when a file changes between Stat and the read.
type skewedFS struct {
	billy.Filesystem
	size int64
}

func (fs *skewedFS) Stat(name string) (os.FileInfo, error) {
	info, err := fs.Filesystem.Stat(name)
	if err != nil {
		return nil, err
	}
	return skewedInfo{FileInfo: info, size: fs.size}, nil
}

type skewedInfo struct {
	os.FileInfo
	size int64
}

func (i skewedInfo) Size() int64 { return i.size }

// newSkewedServer serves name holding content while Stat claims size bytes
func newSkewedServer(t *testing.T, name, content string, size int64) *Server {
	t.Helper()

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))

	cfg := DefaultConfig()
	cfg.Filesystem = &skewedFS{Filesystem: fs, size: size}

	s, err := New(cfg)
	require.NoError(t, err)
	s.Logger = &NullLogger{}
	return s
}

type mockAddr struct {
	str string
}

func (m mockAddr) Network() string { return "tcp" }
func (m mockAddr) String() string  { return m.str }

// mockConn feeds reader to the handler and records what it writes. Writes
// fail with writeErr once writeLimit bytes have gone through (-1: never).
// Deadline setters return deadlineErr.
type mockConn struct {
	reader      io.Reader
	out         bytes.Buffer
	writeLimit  int
	writeErr    error
	deadlineErr error

	mu     sync.Mutex
	closes int
}

func newMockConn(request string) *mockConn {
	return &mockConn{
		reader:     strings.NewReader(request),
		writeLimit: -1,
	}
}

func (m *mockConn) Read(p []byte) (int, error) {
	return m.reader.Read(p)
}

func (m *mockConn) Write(p []byte) (int, error) {
	if m.writeLimit < 0 {
		return m.out.Write(p)
	}

	room := m.writeLimit - m.out.Len()
	if room <= 0 {
		return 0, m.writeErr
	}
	if len(p) > room {
		n, _ := m.out.Write(p[:room])
		return n, m.writeErr
	}
	return m.out.Write(p)
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *mockConn) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockConn) LocalAddr() net.Addr                { return mockAddr{"127.0.0.1:50505"} }
func (m *mockConn) RemoteAddr() net.Addr               { return mockAddr{"192.0.2.10:41234"} }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return m.deadlineErr }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return m.deadlineErr }

// panicReader blows up on the first read
type panicReader struct{}

func (panicReader) Read(p []byte) (int, error) {
	panic("reader exploded")
}
