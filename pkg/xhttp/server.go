// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xhttp

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Middleware = func(http.Handler) http.Handler

type Option func(w *Server)

func WithMiddleware(mw Middleware) Option {
	return func(w *Server) {
		w.router.Use(mw)
	}
}

func WithMetrics() Option {
	return func(w *Server) {
		w.router.Handle("/metrics", promhttp.Handler())
	}
}

func WithLogger() Option {
	return func(w *Server) {
		w.router.Use(requestLogger)
	}
}

// WithShutdownTimeout overrides how long Shutdown waits for in-flight
// requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(w *Server) {
		if d > 0 {
			w.shutdownTimeout = d
		}
	}
}

const defaultShutdownTimeout = 5 * time.Second

type Server struct {
	srv             *http.Server
	router          chi.Router
	shutdownTimeout time.Duration
}

func New(opts ...Option) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewDefault returns a server with the request logger and the
// prometheus endpoint pre-wired.
func NewDefault() *Server {
	return New(WithLogger(), WithMetrics())
}

func (w *Server) Router() chi.Router {
	return w.router
}

// Run starts the http server asynchronously.
func (w *Server) Run(addr string) error {
	w.srv = &http.Server{
		Handler: w.router,
		Addr:    addr,
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return xerror.EInternalError("failed to start http listener", err, zap.String("addr", addr))
	}

	zap.L().Info("starting HTTP server", zap.String("addr", addr))
	go func() {
		if err := w.srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			zap.L().Error("http listener failed", zap.String("addr", addr), zap.Error(err))
		}
	}()

	return nil
}

func (w *Server) Shutdown() error {
	if w.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	err := w.srv.Shutdown(ctx)
	w.srv = nil
	return err
}

func (w *Server) Running() bool {
	return w.srv != nil
}
