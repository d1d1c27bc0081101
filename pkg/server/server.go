// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server exposes a service.Service as a JSON polling API.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/metrics"
	"github.com/walteh/ferry/pkg/service"
)

// 🌐 Server routes HTTP requests to one Service
type Server struct {
	router  *gin.Engine
	svc     *service.Service
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// 🏭 New builds the router. ctx supplies the logger used for every request.
func New(ctx context.Context, svc *service.Service, m *metrics.Metrics) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		svc:     svc,
		metrics: m,
		logger:  *zerolog.Ctx(ctx),
	}
	router.Use(s.observe())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.POST("/search", s.startSearch)
	router.GET("/search", s.readSearch)
	router.DELETE("/search", s.terminateSearch)
	router.GET("/search/active", s.searchActive)

	router.POST("/clipboard/copy", s.clipboardCopy)
	router.POST("/clipboard/cut", s.clipboardCut)
	router.GET("/clipboard", s.clipboardState)
	router.DELETE("/clipboard", s.clipboardClear)
	router.POST("/paste", s.paste)

	router.GET("/transfers", s.listTransfers)
	router.DELETE("/transfers", s.cleanupTransfers)
	router.GET("/transfers/:slot/:nonce", s.getTransfer)
	router.DELETE("/transfers/:slot/:nonce", s.cancelTransfer)

	router.POST("/fs/delete", s.fsDelete)
	router.POST("/fs/rename", s.fsRename)
	router.POST("/fs/file", s.fsCreateFile)
	router.POST("/fs/dir", s.fsCreateDir)
	router.GET("/fs/children", s.fsChildren)
	router.GET("/fs/stat", s.fsStat)
	router.GET("/fs/readlink", s.fsReadLink)

	return s
}

// Handler returns the router for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// 🚀 Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Errorf("listening on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("serving")

	select {
	case err := <-errc:
		return errors.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Errorf("shutting down: %w", err)
	}
	return nil
}

// observe logs and measures every request and puts the logger on its context.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(s.logger.WithContext(c.Request.Context()))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		took := time.Since(start)
		s.metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), took)
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("took", took).
			Msg("request")
	}
}
