package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Brownie44l1/fileserver/internal/server"
)

func main() {
	config := server.DefaultConfig()

	flag.IntVar(&config.Port, "port", config.Port, "TCP port to listen on (1025-65534)")
	flag.StringVar(&config.DocumentRoot, "root", config.DocumentRoot, "directory files are served from")
	flag.StringVar(&config.NotFoundPage, "404", config.NotFoundPage, "404 page, relative to the root")
	flag.DurationVar(&config.ReadTimeout, "read-timeout", config.ReadTimeout, "request read deadline (0 disables)")
	flag.DurationVar(&config.WriteTimeout, "write-timeout", config.WriteTimeout, "response write deadline (0 disables)")
	flag.IntVar(&config.MaxConnections, "max-conns", config.MaxConnections, "concurrent connection limit (0 is unlimited)")
	console := flag.Bool("console", false, "human-readable log output instead of JSON")
	flag.Parse()

	var zl zerolog.Logger
	if *console {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		zl = zerolog.New(os.Stdout)
	}
	logger := server.NewZerologLogger(zl.With().Timestamp().Logger())

	srv, err := server.New(config)
	if err != nil {
		logger.Error("invalid configuration", server.Field{Key: "error", Value: err})
		os.Exit(2)
	}
	srv.Logger = logger

	// Termination is immediate; in-flight connections are not drained.
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		sig := <-stop

		stats := srv.Metrics().Snapshot()
		logger.Info("received signal, exiting",
			server.Field{Key: "signal", Value: sig.String()},
			server.Field{Key: "connections", Value: stats.ConnectionsTotal},
			server.Field{Key: "responses_ok", Value: stats.ResponsesOK},
			server.Field{Key: "responses_4xx", Value: stats.Responses4xx},
			server.Field{Key: "responses_5xx", Value: stats.Responses5xx},
			server.Field{Key: "aborted", Value: stats.Aborted},
			server.Field{Key: "bytes_sent", Value: stats.BytesSent},
		)
		os.Exit(0)
	}()

	err = srv.ListenAndServe()
	if errors.Is(err, server.ErrBind) {
		logger.Error("failed to create listening socket", server.Field{Key: "error", Value: err})
	} else {
		logger.Error("server socket shut down unexpectedly, exiting", server.Field{Key: "error", Value: err})
	}
	os.Exit(1)
}
