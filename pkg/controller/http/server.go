package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	authUC AuthUseCase
}

type Options func(*Server)

// WithAuth overrides the authentication use case taken from the use cases
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		authUC: uc.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authLoginHandler(s.authUC))
			r.Post("/logout", authLogoutHandler(s.authUC))
			r.With(authMiddleware(s.authUC)).Get("/me", authMeHandler())
		})

		// Everything below requires a resolved actor
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Route("/obligations", func(r chi.Router) {
				r.Get("/", listObligationsHandler(s.uc))
				r.Post("/", createObligationHandler(s.uc))

				r.Route("/{obligationID}", func(r chi.Router) {
					r.Get("/", getObligationHandler(s.uc))
					r.Delete("/", deactivateObligationHandler(s.uc))
					r.Get("/timeline", timelineHandler(s.uc))
					r.Post("/route", routeHandler(s.uc))
					r.Get("/permissions", permissionsHandler(s.uc))
					r.Put("/late-justification", lateJustificationHandler(s.uc))
					r.Post("/annotations", addAnnotationHandler(s.uc))
					r.Delete("/annotations/{annotationID}", deleteAnnotationHandler(s.uc))
				})
			})

			r.Post("/attachments", uploadAttachmentHandler(s.uc))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
