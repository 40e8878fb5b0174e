package server

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"papersum/internal/config"
	"papersum/internal/domain"
	"papersum/internal/extractor"
	"papersum/internal/summarizer"
)

// History is the slice of the summary store the web layer needs.
type History interface {
	Save(ctx context.Context, rec domain.SummaryRecord) error
	Recent(ctx context.Context, limit int) ([]domain.SummaryRecord, error)
}

// Server renders the single summarizer page and drives the pipeline. One run
// at a time: a second trigger while a run is in flight gets a notice, not a
// second pipeline.
type Server struct {
	echo           *echo.Echo
	extractor      extractor.Extractor
	summarizer     summarizer.Summarizer
	history        History
	historyLimit   int
	fetchTimeout   time.Duration
	summaryTimeout time.Duration
	runMu          sync.Mutex
	log            *slog.Logger
}

//go:embed index.html
var pageFS embed.FS

type renderer struct {
	templates *template.Template
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func New(
	cfg config.Config,
	ext extractor.Extractor,
	sum summarizer.Summarizer,
	hist History,
	log *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &renderer{
		templates: template.Must(template.ParseFS(pageFS, "index.html")),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				log.ErrorContext(c.Request().Context(), "Request failed",
					"error", v.Error,
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status)

				return nil
			}

			log.InfoContext(c.Request().Context(), "Request is handled",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)

			return nil
		},
	}))

	s := &Server{
		echo:           e,
		extractor:      ext,
		summarizer:     sum,
		history:        hist,
		historyLimit:   cfg.HistoryLimit,
		fetchTimeout:   cfg.FetchTimeout,
		summaryTimeout: cfg.SummaryTimeout,
		log:            log,
	}

	e.GET("/", s.handleIndex)
	e.POST("/summarize", s.handleSummarize)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	return s
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
