package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/roach88/spearfished/internal/catalog"
	"github.com/roach88/spearfished/internal/feed"
	"github.com/roach88/spearfished/internal/identity"
	"github.com/roach88/spearfished/internal/post"
	"github.com/roach88/spearfished/internal/publish"
	"github.com/roach88/spearfished/internal/store"
)

// FeedView exposes the latest feed snapshot.
type FeedView interface {
	Current() feed.Snapshot
}

// Publisher runs publish requests.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (post.Post, error)
}

// Accounts registers and authenticates local users.
type Accounts interface {
	Register(ctx context.Context, email, password string) (identity.Identity, error)
	Authenticate(ctx context.Context, email, password string) (identity.Identity, error)
	Issue(id identity.Identity) (string, error)
}

// SpeciesCatalog lists species.
type SpeciesCatalog interface {
	All(ctx context.Context) ([]catalog.Species, error)
}

// BlobReader reads stored images.
type BlobReader interface {
	Get(ctx context.Context, key string) (store.Blob, error)
}

// Deps are the gateway's collaborators. Accounts and Blobs may be nil; the
// corresponding routes then answer 404.
type Deps struct {
	Feed      FeedView
	Publisher Publisher
	Verifier  identity.Verifier
	Accounts  Accounts
	Species   SpeciesCatalog
	Blobs     BlobReader
	Logger    *slog.Logger
}

// Server is the HTTP gateway.
type Server struct {
	deps   Deps
	logger *slog.Logger
	router *mux.Router
}

// requestContext carries per-request state through a handler chain.
type requestContext struct {
	identity identity.Identity
}

type handler func(rc *requestContext, w http.ResponseWriter, r *http.Request) *HTTPError

// New builds the gateway.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{deps: deps, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Handle("/healthz", s.handle(s.health)).Methods(http.MethodGet)
	r.Handle("/feed", s.handle(s.feed)).Methods(http.MethodGet)
	r.Handle("/feed/map", s.handle(s.feedMap)).Methods(http.MethodGet)
	r.Handle("/posts", s.handle(s.authenticate, s.createPost)).Methods(http.MethodPost)
	r.Handle("/species", s.handle(s.species)).Methods(http.MethodGet)

	if s.deps.Blobs != nil {
		r.Handle("/blobs/{key:.+}", s.handle(s.getBlob)).Methods(http.MethodGet)
	}
	if s.deps.Accounts != nil {
		r.Handle("/auth/signup", s.handle(s.signUp)).Methods(http.MethodPost)
		r.Handle("/auth/signin", s.handle(s.signIn)).Methods(http.MethodPost)
	}

	r.NotFoundHandler = s.handle(func(*requestContext, http.ResponseWriter, *http.Request) *HTTPError {
		return &HTTPError{Status: http.StatusNotFound, Error: "no such route", ErrorCode: ErrNotFound}
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handle runs handlers in order and stops at the first error.
func (s *Server) handle(handlers ...handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := &requestContext{}
		for _, h := range handlers {
			e := h(rc, w, r)
			if e == nil {
				continue
			}

			attrs := []any{"method", r.Method, "path", r.URL.Path, "status", e.Status, "code", e.ErrorCode}
			if e.IError != nil {
				attrs = append(attrs, "error", e.IError)
			}
			if e.Status >= http.StatusInternalServerError {
				s.logger.Error("request failed", attrs...)
			} else {
				s.logger.Debug("request rejected", attrs...)
			}

			writeJSON(w, e.Status, e)
			return
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// authenticate requires a bearer token and records its identity.
func (s *Server) authenticate(rc *requestContext, w http.ResponseWriter, r *http.Request) *HTTPError {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return &HTTPError{Status: http.StatusUnauthorized, Error: "missing bearer token", ErrorCode: ErrUnauthorized}
	}
	if s.deps.Verifier == nil {
		return internalError("no token verifier configured", nil)
	}

	id, err := s.deps.Verifier.VerifyToken(r.Context(), token)
	if err != nil {
		return authError(err)
	}
	rc.identity = id
	return nil
}
