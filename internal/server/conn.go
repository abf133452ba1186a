package server

import (
	"errors"
	"fmt"
	"net"
	"path"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/Brownie44l1/fileserver/internal/headers"
	"github.com/Brownie44l1/fileserver/internal/mime"
	"github.com/Brownie44l1/fileserver/internal/request"
	"github.com/Brownie44l1/fileserver/internal/response"
)

var (
	ErrNotRegularFile = errors.New("not a regular file")
	ErrShortBody      = errors.New("file ended before announced length")
)

// HandleConn serves the single request on conn and closes it, whatever
// happens. Errors are logged here and never returned; a panic is recovered
// so it cannot reach the accept loop.
func (s *Server) HandleConn(conn net.Conn) {
	start := time.Now()
	remote := remoteAddr(conn)
	s.metrics.ActiveConnections.Add(1)

	w := response.NewWriter(conn)

	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordAborted()
			s.Logger.Error("handler panic",
				Field{"remote_addr", remote},
				Field{"error", fmt.Sprint(r)},
				Field{"stack", string(debug.Stack())},
			)
		}

		if err := conn.Close(); err != nil {
			s.Logger.Debug("close failed", Field{"remote_addr", remote}, Field{"error", err})
		}
		s.metrics.ActiveConnections.Add(-1)
		s.Logger.Info("connection closed", Field{"remote_addr", remote})
	}()

	if err := s.serve(conn, w); err != nil {
		s.metrics.RecordAborted()
		s.Logger.Warn("error while communicating with client",
			Field{"remote_addr", remote},
			Field{"headers_sent", w.HeadersWritten()},
			Field{"write_failed", w.HadError()},
			Field{"error", err},
		)
		return
	}

	s.metrics.RecordResponse(w.StatusCode(), w.BodyBytes(), time.Since(start))
}

// serve runs one exchange. A non-nil error means the client did not get a
// complete response.
func (s *Server) serve(conn net.Conn, w *response.Writer) error {
	if s.config.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
			s.Logger.Debug("set read deadline failed", Field{"remote_addr", remoteAddr(conn)}, Field{"error", err})
		}
	}

	req, err := request.ReadRequestLine(conn)
	if err != nil {
		return err
	}

	s.Logger.Info("request",
		Field{"method", req.Method},
		Field{"path", req.Path},
	)

	if s.config.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
			s.Logger.Debug("set write deadline failed", Field{"remote_addr", remoteAddr(conn)}, Field{"error", err})
		}
	}

	if req.Method != "GET" {
		return s.respondError(w, response.StatusNotImplemented)
	}

	file, size, err := s.open(req.Path)
	if err != nil {
		s.Logger.Debug("file not served", Field{"path", req.Path}, Field{"error", err})
		return s.respondError(w, response.StatusNotFound)
	}
	defer file.Close()

	if err := w.WriteStatusLine(response.StatusOK); err != nil {
		return err
	}

	h := headers.NewHeaders()
	h.Set("Connection", "close")
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	h.Set("Content-Type", mime.Resolve(req.Path))
	if err := w.WriteHeaders(h); err != nil {
		return err
	}

	// The writer stops at Content-Length, so a file that grew since Stat
	// is cut short rather than overrunning the header.
	n, err := w.WriteBodyFrom(file)
	if err != nil {
		return err
	}
	if n < size {
		return fmt.Errorf("%w: sent %d of %d bytes", ErrShortBody, n, size)
	}
	return nil
}

func (s *Server) respondError(w *response.Writer, code response.StatusCode) error {
	if err := s.errPages.Respond(w, code); err != nil {
		return fmt.Errorf("writing %d response: %w", code, err)
	}
	return nil
}

// resolve maps a request path to a name inside the document root. Cleaning
// it as a rooted path drops any ".." that would climb above the root.
func resolve(reqPath string) string {
	return path.Clean("/" + reqPath)
}

func (s *Server) open(reqPath string) (billy.File, int64, error) {
	name := resolve(reqPath)

	info, err := s.root.Stat(name)
	if err != nil {
		return nil, 0, err
	}
	if !info.Mode().IsRegular() {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotRegularFile, name)
	}

	f, err := s.root.Open(name)
	if err != nil {
		return nil, 0, err
	}
	return f, info.Size(), nil
}
