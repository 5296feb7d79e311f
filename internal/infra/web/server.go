package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"carbusiness-backend/internal/domain/ports/adapter"
	"carbusiness-backend/internal/infra/i18n"
	"carbusiness-backend/internal/infra/logging"
	"carbusiness-backend/internal/infra/metrics"
	"carbusiness-backend/internal/usecase"
)

// ChatLimiter bounds conversational turns per user. The Redis fixed-window
// limiter satisfies this; tests plug an in-memory one.
type ChatLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	activationUC usecase.ActivationUseCase
	chatUC       usecase.ChatUseCase
	premiumUC    usecase.PremiumUseCase
	storage      adapter.FileStorage
	verifier     *AuthVerifier
	adminKey     string
	limiter      ChatLimiter
	chatRate     int
	tr           *i18n.Translator
	log          *zerolog.Logger
}

func NewServer(
	activationUC usecase.ActivationUseCase,
	chatUC usecase.ChatUseCase,
	premiumUC usecase.PremiumUseCase,
	storage adapter.FileStorage,
	verifier *AuthVerifier,
	adminKey string,
	limiter ChatLimiter,
	chatRatePerMinute int,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		activationUC: activationUC,
		chatUC:       chatUC,
		premiumUC:    premiumUC,
		storage:      storage,
		verifier:     verifier,
		adminKey:     adminKey,
		limiter:      limiter,
		chatRate:     chatRatePerMinute,
		tr:           tr,
		log:          &l,
	}
}

// Router assembles the full route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.observe)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.verifier.RequireUser)
			r.Post("/premium/notify-payment", s.handleNotifyPayment)
			r.Post("/premium/chatbot", s.handleChatbot)
			r.Post("/premium/activate", s.handleActivate)
			r.Get("/premium/status", s.handleStatus)
			r.Post("/uploads/payment-proof", s.handleUploadProof)
		})

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return requireAdminKey(s.adminKey, next)
			})
			r.Get("/admin/codes", s.handleAdminListCodes)
			r.Post("/admin/codes/{id}/reject", s.handleAdminRejectCode)
			r.Get("/admin/stats", s.handleAdminStats)
		})
	})

	return r
}

// observe records per-request latency and a structured access log entry.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logging.WithRequestID(r.Context(), chimw.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.ObserveHTTP(r.Method, route, ww.Status(), elapsed)
		s.log.Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("elapsed", elapsed).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the error envelope. fields carries per-field
// validation messages and is omitted when nil.
func writeError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	body := map[string]interface{}{"error": msg}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	writeJSON(w, status, body)
}
