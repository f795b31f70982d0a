// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the checksum operations over HTTP with JSON bodies.
// Errors are answered with RFC 7807 problem documents.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/sampras343/transfer-checksums/pkg/checksums"
	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// Operations is the subset of *checksums.Service the handlers call.
type Operations interface {
	Generate(ctx context.Context, req checksums.GenerateRequest) (*checksums.GenerateResponse, error)
	Compare(ctx context.Context, req checksums.CompareRequest) (*checksums.CompareResponse, error)
	Get(ctx context.Context, req checksums.GetRequest) (*checksums.GetResponse, error)
}

// Server routes HTTP requests to Operations.
type Server struct {
	ops     Operations
	cfg     config.ServerConfig
	logger  logging.Logger
	handler http.Handler
}

// New builds a Server. A zero RateLimit disables rate limiting and a zero
// RequestTimeout leaves requests unbounded.
func New(ops Operations, cfg config.ServerConfig, logger logging.Logger) *Server {
	s := &Server{
		ops:    ops,
		cfg:    cfg,
		logger: logging.EnsureLogger(logger),
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /generate-checksums", s.handleGenerate)
	mux.HandleFunc("POST /compare-checksums", s.handleCompare)
	mux.HandleFunc("POST /get-checksums", s.handleGet)

	s.handler = chain(mux,
		withRequestID(s.logger),
		withAccessLog(),
		withRecover(),
		withRateLimit(limiter),
		withTimeout(cfg.RequestTimeout),
		withMaxBody(cfg.MaxBodyBytes),
	)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. In-flight requests get
// ShutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateChecksumsRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.ops.Generate(r.Context(), checksums.GenerateRequest{
		SourceURI:            req.source(),
		DestinationContainer: req.DestinationBucket,
		OutputFileName:       req.OutputFileName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareChecksumsRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.ops.Compare(r.Context(), checksums.CompareRequest{
		First:  side(req.JSON1, req.FirstChecksumBucket, req.FirstChecksumFile, req.FirstChecksumList),
		Second: side(req.JSON2, req.SecondChecksumBucket, req.SecondChecksumFile, req.SecondChecksumList),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var req GetChecksumsRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.ops.Get(r.Context(), checksums.GetRequest{
		Container: req.ChecksumBucket,
		FileName:  req.ChecksumFile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v, answering 400 (or 413) itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, r, err)
			return false
		}
		writeProblem(w, r, http.StatusBadRequest, "urn:transfer-checksums:http:400",
			fmt.Sprintf("request body is not valid JSON: %v", err))
		return false
	}
	return true
}
