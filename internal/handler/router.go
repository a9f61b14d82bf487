package handler

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/asventura96/testcenter/docs" // swagger docs
	"github.com/asventura96/testcenter/internal/logger"
	appMiddleware "github.com/asventura96/testcenter/internal/middleware"
	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
)

type Handlers struct {
	Auth          *AuthHandler
	Certifier     *CertifierHandler
	Certification *CertificationHandler
	Client        *ClientHandler
	TestCenter    *TestCenterHandler
	Exam          *ExamHandler
	Record        *RecordHandler
}

type Router struct {
	h              Handlers
	jwtSecret      string
	loginLimiter   appMiddleware.Limiter // nil disables login throttling
	trustedProxies []netip.Prefix
	log            *zap.Logger
}

func NewRouter(
	h Handlers,
	jwtSecret string,
	loginLimiter appMiddleware.Limiter,
	trustedProxies []netip.Prefix,
	log *zap.Logger,
) *Router {
	return &Router{
		h:              h,
		jwtSecret:      jwtSecret,
		loginLimiter:   loginLimiter,
		trustedProxies: trustedProxies,
		log:            log,
	}
}

func (ro *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(appMiddleware.PeerAddr) // before RealIP rewrites RemoteAddr
	r.Use(chiMiddleware.RealIP)
	r.Use(logger.RequestLogger(ro.log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, "Server is running", map[string]string{"status": "ok"})
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {

		// auth (public)
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if ro.loginLimiter != nil {
					r.Use(appMiddleware.RateLimit(ro.loginLimiter, ro.trustedProxies, ro.log))
				}
				r.Post("/login", ro.h.Auth.Login)
			})
			r.Post("/refresh", ro.h.Auth.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.Authenticate(ro.jwtSecret))
				r.Get("/me", ro.h.Auth.Me)
			})
		})

		// public: QR code on the admission ticket
		r.Get("/checkin/{token}", ro.h.Exam.VerifyCheckin)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Authenticate(ro.jwtSecret))

			r.Route("/users", func(r chi.Router) {
				r.Use(appMiddleware.RequireRole(model.RoleAdmin))
				r.Post("/", ro.h.Auth.Register)
			})

			r.Route("/certifiers", func(r chi.Router) {
				r.Get("/", ro.h.Certifier.GetAll)
				r.Post("/", ro.h.Certifier.Create)
				r.Get("/{id}", ro.h.Certifier.GetByID)
				r.Put("/{id}", ro.h.Certifier.Update)
				r.Delete("/{id}", ro.h.Certifier.Delete)
			})

			r.Route("/certifications", func(r chi.Router) {
				r.Get("/", ro.h.Certification.GetAll)
				r.Post("/", ro.h.Certification.Create)
				r.Get("/{id}", ro.h.Certification.GetByID)
				r.Put("/{id}", ro.h.Certification.Update)
				r.Delete("/{id}", ro.h.Certification.Delete)
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", ro.h.Client.GetAll)
				r.Post("/", ro.h.Client.Create)
				r.Get("/{uid}", ro.h.Client.GetByUID)
				r.Put("/{uid}", ro.h.Client.Update)
				r.Delete("/{uid}", ro.h.Client.Delete)
			})

			r.Route("/test-centers", func(r chi.Router) {
				r.Get("/", ro.h.TestCenter.GetAll)
				r.Post("/", ro.h.TestCenter.Create)
				r.Get("/{id}", ro.h.TestCenter.GetByID)
				r.Put("/{id}", ro.h.TestCenter.Update)
				r.Delete("/{id}", ro.h.TestCenter.Delete)
			})

			r.Route("/exams", func(r chi.Router) {
				r.Get("/", ro.h.Exam.GetAll)
				r.Post("/", ro.h.Exam.Create)
				r.Get("/{id}", ro.h.Exam.GetByID)
				r.Put("/{id}", ro.h.Exam.Update)
				r.Delete("/{id}", ro.h.Exam.Delete)
				r.Get("/{id}/ticket", ro.h.Exam.Ticket)
			})

			r.Post("/checkin/{token}", ro.h.Exam.Checkin)

			r.Get("/records", ro.h.Record.Kinds)
			r.Delete("/records/{kind}/{id}", ro.h.Record.Delete)
		})
	})

	return r
}
