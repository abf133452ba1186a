package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		entry := make(map[string]interface{})
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line %q", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestZerologLoggerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWriterLogger(buf)

	logger.Info("request", Field{"method", "GET"}, Field{"path", "/index.html"})
	logger.Warn("error while communicating with client", Field{"error", errors.New("broken pipe")})

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "request", entries[0]["message"])
	assert.Equal(t, "GET", entries[0]["method"])
	assert.Equal(t, "/index.html", entries[0]["path"])
	assert.Contains(t, entries[0], "time")

	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "broken pipe", entries[1]["error"])
}

func TestZerologLoggerTruncatesLongValues(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWriterLogger(buf)

	logger.Info("request", Field{"path", "/" + strings.Repeat("a", 500)})

	entries := decodeLines(t, buf)
	path := entries[0]["path"].(string)
	assert.True(t, strings.HasSuffix(path, "...[truncated]"))
	assert.Len(t, path, 100+len("...[truncated]"))
}

func TestHandlerLogsConnectionLifecycle(t *testing.T) {
	buf := &bytes.Buffer{}
	s := newTestServer(t, map[string]string{"index.html": "x"})
	s.Logger = NewWriterLogger(buf)

	s.HandleConn(newMockConn("GET /index.html HTTP/1.1\r\n\r\n"))

	var messages []string
	for _, entry := range decodeLines(t, buf) {
		messages = append(messages, entry["message"].(string))
	}
	assert.Equal(t, []string{"request", "connection closed"}, messages)
	assert.Contains(t, buf.String(), "192.0.2.10:41234")
}

func TestHandlerLogsDeadlineFailures(t *testing.T) {
	buf := &bytes.Buffer{}
	s := newTestServer(t, map[string]string{"index.html": "x"})
	s.Logger = NewWriterLogger(buf)
	s.config.ReadTimeout = time.Second
	s.config.WriteTimeout = time.Second

	conn := newMockConn("GET /index.html HTTP/1.1\r\n\r\n")
	conn.deadlineErr = errors.New("deadlines not supported")

	s.HandleConn(conn)

	var messages []string
	for _, entry := range decodeLines(t, buf) {
		messages = append(messages, entry["message"].(string))
		if strings.HasPrefix(entry["message"].(string), "set ") {
			assert.Equal(t, "debug", entry["level"])
			assert.Equal(t, "deadlines not supported", entry["error"])
		}
	}
	assert.Equal(t, []string{
		"set read deadline failed",
		"request",
		"set write deadline failed",
		"connection closed",
	}, messages)

	// The exchange still completes
	resp := parseResponse(t, conn.out.String())
	assert.Equal(t, "HTTP/1.1 200 OK", resp.StatusLine)
	assert.Equal(t, int64(1), s.Metrics().ResponsesOK.Load())
}

func TestHandlerLogsWriteFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	s := newTestServer(t, nil)
	s.Logger = NewWriterLogger(buf)

	conn := newMockConn("POST / HTTP/1.1\r\n\r\n")
	conn.writeLimit = 0
	conn.writeErr = errors.New("broken pipe")

	s.HandleConn(conn)

	var warned bool
	for _, entry := range decodeLines(t, buf) {
		if entry["message"] == "error while communicating with client" {
			warned = true
			assert.Equal(t, true, entry["write_failed"])
			assert.Equal(t, true, entry["headers_sent"])
		}
	}
	assert.True(t, warned)
}
