package swagger

import _ "embed"

// Document is the OpenAPI description of the evaluation API, served as is.
//
//go:embed openapi.yaml
var Document []byte
