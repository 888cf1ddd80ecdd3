// Package server exposes discovery over HTTP for services that cannot shell
// out to the CLI.
//
// Routes:
//
//	GET /healthz
//	GET /v1/repos/{owner}/{repo}/manifests?ref=&dir=&content=&scan_subdirs=
//	GET /v1/repos/{owner}/{repo}/detect?ref=&dir=
//
// Failures are returned as {"code", "message", "paths"} with a status derived
// from the error code.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/integrations/github"
	"github.com/matzehuels/pyfetch/pkg/python"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

// DefaultTimeout bounds a single discovery request.
const DefaultTimeout = 2 * time.Minute

// TreeFactory opens the tree for a repository snapshot. The CLI wires it to
// a cached GitHub tree.
type TreeFactory func(ctx context.Context, ref github.RepoRef) (repo.Tree, error)

// Options configures a Server.
type Options struct {
	Logger      *log.Logger
	Concurrency int
	Timeout     time.Duration
}

// Server serves the discovery API.
type Server struct {
	trees TreeFactory
	opts  Options
}

// New creates a Server reading repositories through trees.
func New(trees TreeFactory, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Server{trees: trees, opts: opts}
}

// Handler returns the routed handler with request ID, logging and panic
// recovery middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Route("/v1/repos/{owner}/{repo}", func(r chi.Router) {
		r.Get("/manifests", s.handleManifests)
		r.Get("/detect", s.handleDetect)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.opts.Logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}

func (s *Server) handleManifests(w http.ResponseWriter, r *http.Request) {
	ref, err := repoRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	withContent := boolParam(q.Get("content"))

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()

	tree, err := s.trees(ctx, ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fetcher := python.NewFetcher(tree, python.Options{
		Logger:             s.opts.Logger.With("repo", ref.String(), "req", middleware.GetReqID(ctx)),
		Concurrency:        s.opts.Concurrency,
		ScanSubdirectories: boolParam(q.Get("scan_subdirs")),
	})
	res, err := fetcher.Run(ctx, q.Get("dir"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Report(withContent))
}

type detectResponse struct {
	Directory string `json:"directory"`
	Detected  bool   `json:"detected"`
	Message   string `json:"message,omitempty"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	ref, err := repoRef(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dir := r.URL.Query().Get("dir")
	if err := errors.ValidateDirectory(dir); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()

	tree, err := s.trees(ctx, ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := python.Detect(ctx, tree, dir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := detectResponse{Directory: repo.Clean(dir), Detected: ok}
	if !ok {
		resp.Message = python.RequiredFilesMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func repoRef(r *http.Request) (github.RepoRef, error) {
	ref := github.RepoRef{
		Owner: chi.URLParam(r, "owner"),
		Repo:  chi.URLParam(r, "repo"),
		Ref:   r.URL.Query().Get("ref"),
	}
	if err := github.ValidateOwner(ref.Owner); err != nil {
		return ref, err
	}
	if err := github.ValidateRepo(ref.Repo); err != nil {
		return ref, err
	}
	return ref, github.ValidateRef(ref.Ref)
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

type errorResponse struct {
	Code       errors.Code `json:"code"`
	Message    string      `json:"message"`
	Paths      []string    `json:"paths,omitempty"`
	RetryAfter int         `json:"retry_after,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	resp := errorResponse{Code: code, Message: errors.UserMessage(err)}

	var unreachable *errors.PathDependenciesUnreachableError
	if stderrors.As(err, &unreachable) {
		resp.Paths = unreachable.Paths
	}
	var limited *errors.RateLimitedError
	if stderrors.As(err, &limited) && limited.RetryAfter > 0 {
		resp.RetryAfter = limited.RetryAfter
		w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfter))
	}

	status := statusFor(err)
	if status >= 500 {
		s.opts.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRepo, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeManifestNotFound:
		return http.StatusNotFound
	case errors.ErrCodeManifestNotParseable, errors.ErrCodePathDependenciesUnreachable, errors.ErrCodeFileNotFound:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.opts.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"req", middleware.GetReqID(r.Context()))
	})
}
