// Package api embeds the OpenAPI document for serving at runtime.
package api

import _ "embed"

// OpenAPISpec is the raw OpenAPI 3.1 YAML document.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
