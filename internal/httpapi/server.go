// Package httpapi serves the upload, process and download routes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/resolve"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// MaxUploadSize caps the request body of /api/process.
const MaxUploadSize = "50M"

// GatewayFactory builds a gateway for the credentials of one request.
type GatewayFactory func(creds tebra.Credentials) (tebra.Gateway, error)

// Recorder persists runs. *audit.Ledger satisfies it.
type Recorder interface {
	Start(ctx context.Context, runID uuid.UUID, inputFile, sha string, startedAt time.Time) error
	Finish(ctx context.Context, summary *model.RunSummary, rows []*model.Row) error
	Fail(ctx context.Context, runID uuid.UUID) error
}

// Options configure a Server.
type Options struct {
	// OutputDir receives one processed workbook per run.
	OutputDir string
	Match     resolve.MatchConfig
	// Recorder is optional.
	Recorder Recorder
}

// Server is the HTTP front door. Each upload is processed as its own run.
type Server struct {
	echo       *echo.Echo
	opts       Options
	newGateway GatewayFactory
	log        zerolog.Logger
}

// New wires the routes.
func New(opts Options, newGateway GatewayFactory, log zerolog.Logger) *Server {
	s := &Server{
		echo:       echo.New(),
		opts:       opts,
		newGateway: newGateway,
		log:        log.With().Str("component", "http").Logger(),
	}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(s.log))

	e.GET("/health", s.handleHealth)
	e.POST("/api/process", s.handleProcess, middleware.BodyLimit(MaxUploadSize))
	e.GET("/api/download/:run", s.handleDownload)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	if err := os.MkdirAll(s.opts.OutputDir, 0o755); err != nil {
		return err
	}
	s.log.Info().Str("addr", addr).Str("output_dir", s.opts.OutputDir).Msg("listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight runs.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) outputPath(runID string) string {
	return filepath.Join(s.opts.OutputDir, runID+".xlsx")
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := log.Info()
			if err != nil {
				evt = log.Error().Err(err)
			}
			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return err
		}
	}
}
