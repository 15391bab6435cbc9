//go:build tools

// Package tools pins build-time tool dependencies so `go mod tidy` keeps
// them in go.mod. None of these are imported by the application itself.
package tools

import (
	_ "github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen"
)
