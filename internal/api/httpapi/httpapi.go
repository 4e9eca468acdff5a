package httpapi

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/BearBump/PigeonPost/internal/logger"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/BearBump/PigeonPost/internal/services/auth"
	"github.com/BearBump/PigeonPost/internal/services/trackings"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const ServiceName = "Pigeon Post Service API"

type TrackingService interface {
	Create(ctx context.Context, in models.TrackingCreateInput) (*trackings.TrackingView, error)
	Get(ctx context.Context, trackingNumber string, revealMessage bool) (*trackings.TrackingView, error)
	List(ctx context.Context) ([]*trackings.TrackingView, error)
	Edit(ctx context.Context, trackingNumber string, in models.TrackingEditInput) (*trackings.TrackingView, error)
	Delete(ctx context.Context, trackingNumber string) error
	AppendUpdate(ctx context.Context, trackingNumber string, in models.UpdateInput) (*models.TrackingUpdate, error)
	ListUpdates(ctx context.Context, trackingNumber string) ([]*models.TrackingUpdate, error)
	SetStatus(ctx context.Context, trackingNumber string, in trackings.SetStatusInput) (*trackings.TrackingView, error)
	Stats(ctx context.Context) (models.StatusCounts, error)
	RefreshAll(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.AdminSession, error)
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
	Logout(ctx context.Context, sessionID string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, subject string, limit int64, window time.Duration) (bool, int64, error)
}

type Options struct {
	RequestTimeout time.Duration
	// 0 — без ограничения попыток входа
	LoginLimitPerMinute int64
	SwaggerPath         string
}

type API struct {
	svc     TrackingService
	auth    Authenticator
	limiter RateLimiter
	opts    Options
	log     *zap.Logger
	now     func() time.Time
}

// New: limiter может быть nil (Redis не настроен).
func New(svc TrackingService, a Authenticator, limiter RateLimiter, opts Options, l *zap.Logger) *API {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	return &API{
		svc:     svc,
		auth:    a,
		limiter: limiter,
		opts:    opts,
		log:     logger.OrNop(l).Named("http"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.opts.RequestTimeout))

	r.Get("/health", a.health)

	if a.opts.SwaggerPath != "" {
		if _, err := os.Stat(a.opts.SwaggerPath); err == nil {
			r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Cache-Control", "no-store")
				http.ServeFile(w, r, a.opts.SwaggerPath)
			})
			r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/swagger.json")))
		} else {
			a.log.Warn("swagger file not found, docs disabled", zap.String("path", a.opts.SwaggerPath))
		}
	}

	r.Route("/tracking", func(r chi.Router) {
		r.With(a.optionalAdmin).Get("/{trackingNumber}", a.getTracking)
		r.Get("/{trackingNumber}/updates", a.listUpdates)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAdmin)
			r.Get("/", a.listTrackings)
			r.Post("/", a.createTracking)
			r.Put("/{trackingNumber}", a.editTracking)
			r.Delete("/{trackingNumber}", a.deleteTracking)
			r.Post("/{trackingNumber}/updates", a.appendUpdate)
			r.Put("/{trackingNumber}/status", a.setStatus)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(a.loginThrottle).Post("/login", a.login)
		r.Post("/logout", a.logout)
		r.Get("/verify", a.verify)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAdmin)
			r.Get("/stats", a.stats)
			r.Post("/force-update", a.forceUpdate)
			r.Delete("/clear-data", a.clearData)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "route not found")
	})
	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": a.now(),
		"service":   ServiceName,
	})
}
