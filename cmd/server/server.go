package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/phrazzld/taskflow-api/internal/config"
)

// newHTTPServer configures the HTTP server with the configured timeouts.
func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
