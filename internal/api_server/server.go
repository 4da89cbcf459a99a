package apiserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cnc-capture/capture/internal/auth"
	"github.com/cnc-capture/capture/internal/config"
	"github.com/cnc-capture/capture/internal/events"
	handlers "github.com/cnc-capture/capture/internal/handlers/v1alpha1"
	"github.com/cnc-capture/capture/internal/qr"
	"github.com/cnc-capture/capture/internal/service"
	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/pkg/metrics"
	"github.com/cnc-capture/capture/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of a capture API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{s.cfg.Service.ConsoleOrigin},
			AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	codec := qr.NewCodec(s.cfg.Service.QRSecret)
	producer := events.NewEventProducer(&events.StdoutWriter{})
	defer func() {
		if err := producer.Close(); err != nil {
			zap.S().Named("api_server").Warnw("failed to close event producer", "error", err)
		}
	}()

	h := handlers.NewServiceHandler(
		service.NewJobService(s.store, codec),
		service.NewQueryService(s.store),
		service.NewScanService(s.store, codec, producer, s.cfg.Service.ScanDedupWindow),
		newTokenIssuer(s.cfg.Service.Auth),
	)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// open: login issues the console token, scan is the kiosk path
		r.Post("/auth/login", h.Login)
		r.Post("/scan", h.Scan)

		// console routes behind the session gate
		r.Group(func(pr chi.Router) {
			pr.Use(authenticator.Authenticator)
			pr.Post("/jobs", h.CreateJob)
			pr.Get("/jobs/list", h.ListJobs)
			pr.Get("/jobs/{id}", h.GetJob)
			pr.Get("/jobs/{id}/events", h.ListJobEvents)
			pr.Get("/jobs/{id}/qr", h.GetJobQR)
			pr.Get("/machines/list", h.ListMachines)
			pr.Get("/operators/list", h.ListOperators)
		})
	})

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

// newTokenIssuer returns the login-side token factory. With authentication
// disabled it still issues structurally valid tokens so the console flow
// works unchanged in dev. An unset signing key gets a random per-process
// one; tokens then stop verifying across restarts, which is acceptable only
// because nothing validates them in that mode.
func newTokenIssuer(authConfig config.Auth) handlers.TokenIssuer {
	issuer, err := auth.NewLocalAuthenticator(authConfig.TokenSigningKey, authConfig.TokenValidity)
	if err != nil {
		zap.S().Named("api_server").Warnw("falling back to ephemeral signing key", "error", err)

		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			zap.S().Named("api_server").Fatalw("failed to generate signing key", "error", err)
		}
		issuer, _ = auth.NewLocalAuthenticator(hex.EncodeToString(key), authConfig.TokenValidity)
	}
	return issuer
}
