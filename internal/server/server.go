// Package server is the HTTP host for the resources in the manifest. Each
// request is pinned to the version the client asked for; bodies are upgraded
// on the way in and downgraded on the way out.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"versiond/codec"
	"versiond/internal/logging"
	"versiond/internal/resource"
	"versiond/internal/telemetry"
	"versiond/transform"
)

// Publisher receives every stored change.
type Publisher interface {
	Publish(ctx context.Context, res *resource.Resource, action string, entity any) error
}

type Options struct {
	Resources *resource.Set
	Codecs    *codec.Registry // codec.Default when nil
	Publisher Publisher       // optional
	Metrics   *telemetry.Metrics
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
}

type resourceCtxKey struct{}

func resourceFromContext(ctx context.Context) *resource.Resource {
	r, _ := ctx.Value(resourceCtxKey{}).(*resource.Resource)
	return r
}

// NewHandler builds the router.
func NewHandler(opts Options) http.Handler {
	if opts.Codecs == nil {
		opts.Codecs = codec.Default
	}
	h := &handlers{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.RateLimit > 0 {
		r.Use(httprate.Limit(
			opts.RateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "60")
				writeStatus(w, http.StatusTooManyRequests, "rate limit exceeded")
			}),
		))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/{resource}", func(r chi.Router) {
		r.Use(h.resolveResource)
		r.Use(h.observe)
		r.Use(h.negotiateVersion)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
	})
	return r
}

type handlers struct {
	opts Options
}

func (h *handlers) resolveResource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := h.opts.Resources.Get(chi.URLParam(r, "resource"))
		if !ok {
			writeStatus(w, http.StatusNotFound, "unknown resource "+strconv.Quote(chi.URLParam(r, "resource")))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resourceCtxKey{}, res)))
	})
}

func (h *handlers) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if h.opts.Metrics != nil {
			h.opts.Metrics.ObserveRequest(resourceFromContext(r.Context()).Name(), r.Method, ww.Status())
		}
	})
}

// negotiateVersion stores the transform request for the handlers. A
// request without a version is answered at the latest version.
func (h *handlers) negotiateVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := resourceFromContext(r.Context())
		latest := res.Latest()

		v, ok, err := negotiate(r, latest)
		if err != nil {
			writeNotAcceptable(w, latest, err)
			return
		}
		req := transform.NewRequest(r)
		if ok {
			req = req.WithVersion(v)
		} else {
			v = latest
		}
		setVersionHeaders(w, v)
		logging.L().Debug("server: negotiated version", "resource", res.Name(), "version", v, "pinned", ok)
		next.ServeHTTP(w, r.WithContext(transform.ContextWithRequest(r.Context(), req)))
	})
}

// Server wraps the http.Server serving the handler.
type Server struct {
	srv *http.Server
}

func New(addr string, h http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Serve accepts connections on lis until Shutdown.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	logging.L().Info("server: listening", "addr", lis.Addr().String())
	return s.Serve(lis)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
