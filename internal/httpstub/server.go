package httpstub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/obs"
	"github.com/cacack/ancestry-research/internal/repository"
)

// Server wraps an Echo instance exposing the progress-polling endpoint and
// the Prometheus /metrics scrape target, modeled on api.Server but
// intentionally without the full admin surface.
type Server struct {
	echo *echo.Echo
	repo repository.Repository
	port int
}

// NewServer builds a Server. port is the listen port (config.Config.Port).
func NewServer(repo repository.Repository, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	s := &Server{echo: e, repo: repo, port: port}
	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(obs.Handler()))
	e.GET("/openapi.yaml", s.serveOpenAPISpec)
	RegisterHandlers(e, s)
	return s
}

// Start runs the server, blocking until it stops or errors.
func (s *Server) Start() error {
	return s.echo.Start(portAddr(s.port))
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetJobProgress implements StrictServerInterface.
func (s *Server) GetJobProgress(ctx context.Context, request GetJobProgressRequestObject) (GetJobProgressResponseObject, error) {
	job, err := s.repo.GetResearchJob(ctx, request.JobId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return GetJobProgress404JSONResponse{Code: "not_found", Message: "research job not found"}, nil
		}
		return nil, err
	}
	ancestors, err := s.repo.GetAncestors(ctx, request.JobId)
	if err != nil {
		return nil, err
	}
	views := make([]AncestorView, 0, len(ancestors))
	for _, a := range ancestors {
		views = append(views, AncestorView{
			Id:               a.ID.String(),
			AscendancyNumber: a.AscendancyNumber,
			Generation:       a.Generation,
			Name:             strings.TrimSpace(a.GivenName + " " + a.Surname),
			Gender:           string(a.Gender),
			BirthDate:        dateString(a.BirthDate),
			BirthPlace:       a.BirthPlace,
			DeathDate:        dateString(a.DeathDate),
			DeathPlace:       a.DeathPlace,
			ExternalPersonId: a.ExternalPersonID,
			ConfidenceScore:  a.ConfidenceScore,
			ConfidenceLevel:  string(a.ConfidenceLevel),
		})
	}
	return GetJobProgress200JSONResponse{
		JobId:           job.ID,
		Status:          string(job.Status),
		ProgressCurrent: job.ProgressCurrent,
		ProgressTotal:   job.ProgressTotal,
		ProgressMessage: job.ProgressMessage,
		ErrorMessage:    job.ErrorMessage,
		Generations:     job.Generations,
		Ancestors:       views,
	}, nil
}

func dateString(d *domain.PartialDate) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func jsonEncode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func portAddr(port int) string {
	if port <= 0 {
		port = 8080
	}
	return ":" + itoa(port)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
