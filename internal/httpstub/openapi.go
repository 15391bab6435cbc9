// Package httpstub is the minimal progress-polling HTTP surface the
// orchestrator feeds: a thin Echo router exposing GET /jobs/:id/progress,
// enough to prove the engine's progress reporting is consumable without
// building the full (out-of-scope) admin surface.
//
// openapi.go hand-writes the request/response type set and strict-server
// wrapper in the oapi-codegen idiom: a schema-shaped response instead of
// ad hoc JSON, a StrictServerInterface implementers satisfy, and a thin
// adapter from Echo's untyped handler signature to the typed one.
package httpstub

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// JobProgress is the schema-shaped response body for a progress poll.
type JobProgress struct {
	JobId           string         `json:"job_id"`
	Status          string         `json:"status"`
	ProgressCurrent int            `json:"progress_current"`
	ProgressTotal   int            `json:"progress_total"`
	ProgressMessage string         `json:"progress_message,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Generations     int            `json:"generations"`
	Ancestors       []AncestorView `json:"ancestors"`
}

// AncestorView is the per-ancestor slice of the progress view: enough for a
// poller to render the tree, without the evidence chain or search log.
type AncestorView struct {
	Id               string `json:"id"`
	AscendancyNumber int    `json:"ascendancy_number"`
	Generation       int    `json:"generation"`
	Name             string `json:"name"`
	Gender           string `json:"gender"`
	BirthDate        string `json:"birth_date,omitempty"`
	BirthPlace       string `json:"birth_place,omitempty"`
	DeathDate        string `json:"death_date,omitempty"`
	DeathPlace       string `json:"death_place,omitempty"`
	ExternalPersonId string `json:"external_person_id,omitempty"`
	ConfidenceScore  int    `json:"confidence_score"`
	ConfidenceLevel  string `json:"confidence_level"`
}

// ErrorResponse is the schema-shaped error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetJobProgressRequestObject is the typed request for GET /jobs/:id/progress.
type GetJobProgressRequestObject struct {
	JobId string
}

// GetJobProgressResponseObject is implemented by every possible response to
// GetJobProgress; each variant knows how to write itself.
type GetJobProgressResponseObject interface {
	VisitGetJobProgressResponse(w http.ResponseWriter) error
}

// GetJobProgress200JSONResponse is the success response.
type GetJobProgress200JSONResponse JobProgress

func (r GetJobProgress200JSONResponse) VisitGetJobProgressResponse(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return jsonEncode(w, JobProgress(r))
}

// GetJobProgress404JSONResponse is returned when the job id is unknown.
type GetJobProgress404JSONResponse ErrorResponse

func (r GetJobProgress404JSONResponse) VisitGetJobProgressResponse(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	return jsonEncode(w, ErrorResponse(r))
}

// StrictServerInterface is the typed contract httpstub.Server implements;
// modeled on the strict-server pattern oapi-codegen generates, kept
// hand-written here since this surface is a stub, not the full admin API.
type StrictServerInterface interface {
	GetJobProgress(ctx context.Context, request GetJobProgressRequestObject) (GetJobProgressResponseObject, error)
}

// NewStrictHandler adapts a StrictServerInterface implementation to an Echo
// handler, the same wrapping role oapi-codegen's generated NewStrictHandler
// plays for a full generated API surface.
func NewStrictHandler(ss StrictServerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		var jobID string
		err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &jobID, runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
		}

		resp, err := ss.GetJobProgress(c.Request().Context(), GetJobProgressRequestObject{JobId: jobID})
		if err != nil {
			return err
		}
		return resp.VisitGetJobProgressResponse(c.Response())
	}
}

// RegisterHandlers mounts the progress-polling route on e.
func RegisterHandlers(e *echo.Echo, ss StrictServerInterface) {
	e.GET("/jobs/:id/progress", NewStrictHandler(ss))
}
