// Package docs embeds the OpenAPI description served under /swagger.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openAPI []byte

// ServeOpenAPI writes the embedded OpenAPI document.
func ServeOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPI)
}
