package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
)

var (
	ErrInvalidPort         = errors.New("port must be between 1024 and 65535 exclusive")
	ErrMissingDocumentRoot = errors.New("document root is required")
)

// Config is fixed for the life of a Server.
type Config struct {
	Port int

	// DocumentRoot is the directory request paths are resolved against.
	// Ignored when Filesystem is set.
	DocumentRoot string
	Filesystem   billy.Filesystem

	// NotFoundPage is the body of every 404, relative to the document root.
	NotFoundPage string

	// Zero means no deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxConnections caps concurrent handlers; zero is unbounded.
	MaxConnections int
}

// DefaultConfig returns the settings the server has always run with: no
// timeouts and a goroutine per connection without limit.
func DefaultConfig() Config {
	return Config{
		Port:         50505,
		DocumentRoot: ".",
		NotFoundPage: "path/404.html",
	}
}

func (c Config) Validate() error {
	if c.Port <= 1024 || c.Port >= 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.Filesystem == nil && c.DocumentRoot == "" {
		return ErrMissingDocumentRoot
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("max connections cannot be negative: %d", c.MaxConnections)
	}
	return nil
}

// Addr is the listen address for the configured port on all interfaces.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
