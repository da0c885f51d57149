package http

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openAPISpec []byte

const docsIndex = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Storefront API</title></head>
<body>
<h1>Storefront API</h1>
<p>The OpenAPI document is available at <a href="/documentation/openapi.yaml">/documentation/openapi.yaml</a>.</p>
</body>
</html>
`

func handleDocsIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(docsIndex))
}

func handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(openAPISpec)
}
