package httpstub

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openapiSpec []byte

// OpenAPISpec returns the embedded OpenAPI specification for the
// progress-polling surface; the contract tests validate live responses
// against it.
func OpenAPISpec() []byte {
	return openapiSpec
}

// serveOpenAPISpec returns the OpenAPI specification as YAML.
func (s *Server) serveOpenAPISpec(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/x-yaml", openapiSpec)
}
