// Package api хранит OpenAPI-описание HTTP API, встроенное в бинарь.
package api

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
