package httpstub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/httpstub"
	"github.com/cacack/ancestry-research/internal/repository/memory"
)

// apiSpec holds the parsed OpenAPI specification, loaded once for all tests.
var apiSpec *openapi3.T

// apiRouter is the OpenAPI router used for finding operations.
var apiRouter routers.Router

func init() {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(httpstub.OpenAPISpec())
	if err != nil {
		panic("failed to load OpenAPI spec: " + err.Error())
	}
	if err := spec.Validate(context.Background()); err != nil {
		panic("OpenAPI spec validation failed: " + err.Error())
	}
	apiSpec = spec

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		panic("failed to create OpenAPI router: " + err.Error())
	}
	apiRouter = router
}

// validateResponse validates a recorded response against the spec's schema
// for the matched operation and status.
func validateResponse(t *testing.T, req *http.Request, rec *httptest.ResponseRecorder) {
	t.Helper()

	route, pathParams, err := apiRouter.FindRoute(req)
	require.NoError(t, err, "request did not match any spec operation")

	requestValidationInput := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
	}
	responseValidationInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: requestValidationInput,
		Status:                 rec.Code,
		Header:                 rec.Header(),
	}
	responseValidationInput.SetBodyBytes(rec.Body.Bytes())

	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), responseValidationInput),
		"response does not conform to the OpenAPI contract")
}

func TestProgressResponseMatchesContract(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	job := domain.NewResearchJob("job-1", domain.SubjectInput{GivenName: "Jane", Surname: "Smith"}, 3)
	require.NoError(t, repo.CreateResearchJob(ctx, job))

	subject := domain.NewAncestor(job.ID, 1)
	subject.GivenName = "Jane"
	subject.Surname = "Smith"
	subject.ConfidenceLevel = domain.LevelCustomerData
	subject.ConfidenceScore = 100
	require.NoError(t, repo.AddAncestor(ctx, subject))

	srv := httpstub.NewServer(repo, 0)
	req := httptest.NewRequest(http.MethodGet, "/jobs/job-1/progress", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	validateResponse(t, req, rec)
}

func TestNotFoundResponseMatchesContract(t *testing.T) {
	srv := httpstub.NewServer(memory.New(), 0)
	req := httptest.NewRequest(http.MethodGet, "/jobs/missing/progress", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	validateResponse(t, req, rec)
}
