package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

var (
	capiMethods    = []string{http.MethodPost, http.MethodOptions, http.MethodGet}
	forwardMethods = []string{http.MethodPost, http.MethodOptions}
)

type Server struct {
	public       *http.Server
	publicRouter *chi.Mux

	handler *Handler
	cors    CORS
}

func New(addr string, handler *Handler, cors CORS, logger zerolog.Logger) *Server {
	s := &Server{
		publicRouter: chi.NewRouter(),

		handler: handler,
		cors:    cors,
	}
	s.registerPublicRoutes(
		hlog.NewHandler(logger),
		requestID,
		hlog.AccessHandler(logRequest),
		middleware.Recoverer,
	)

	s.public = &http.Server{
		Addr:         addr,
		Handler:      s.publicRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) ServePublic() error {
	return s.public.ListenAndServe()
}

func (s *Server) ShutdownPublic(ctx context.Context) error {
	if err := s.public.Shutdown(ctx); err != nil {
		return s.public.Close()
	}
	return nil
}

// Router exposes the routes without a listener.
func (s *Server) Router() http.Handler {
	return s.publicRouter
}

func (s *Server) registerPublicRoutes(middlewares ...func(http.Handler) http.Handler) {
	s.publicRouter.Use(middlewares...)
	s.publicRouter.Get("/_/ready", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	s.publicRouter.Route("/api", func(r chi.Router) {
		r.With(s.cors.Handler(capiMethods...)).HandleFunc("/capi", s.handler.CAPI)
		r.With(s.cors.Handler(forwardMethods...)).HandleFunc("/thrivecart", s.handler.Checkout)
		r.With(s.cors.Handler(forwardMethods...)).HandleFunc("/cta", s.handler.Forward)
		r.With(s.cors.Handler(forwardMethods...)).HandleFunc("/funnel", s.handler.Forward)
	})
}

func logRequest(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
