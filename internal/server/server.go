package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/service"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
)

type Deps struct {
	Config      *config.Config
	Service     *service.SurgeryService
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	Log         *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(d.Log),
		middleware.AccessLog(d.Log),
		middleware.Metrics(d.Metrics),
	)

	v1.NewHealthHandler(d.Config.App.Name, d.Config.App.Version, d.Service, d.Log).RegisterRoutes(r)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.MetricsHandler(d.Gatherer)))
	}

	api := r.Group("/api/v1")
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Middleware())
	}
	v1.NewSurgeryHandler(d.Service, d.Log).RegisterRoutes(api)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, v1.ErrorResponse{Error: "route not found", Code: "NOT_FOUND"})
	})

	return r
}

type Server struct {
	http *http.Server
	cfg  config.ServerConfig
	log  *zap.Logger
}

func New(cfg config.ServerConfig, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.Address(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		cfg: cfg,
		log: log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to ShutdownTimeout. HTTPS is used when a certificate is configured.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.http.Addr, err)
	}

	if s.cfg.TLS.Enabled() {
		tlsCfg, err := TLSConfig(s.cfg.TLS)
		if err != nil {
			_ = ln.Close()
			return err
		}
		s.log.Info("tls enabled", zap.Bool("mutual", s.cfg.TLS.ClientCAFile != ""))
		ln = tls.NewListener(ln, tlsCfg)
	}

	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return <-errCh
}
