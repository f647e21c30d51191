package transporthttp

import (
	"net/http"

	"travelplanner/docs"
)

const swaggerSpecPath = "/swagger/openapi.yaml"

var swaggerPage = []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Travel Planner API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => SwaggerUIBundle({ url: '` + swaggerSpecPath + `', dom_id: '#swagger-ui' });
  </script>
</body>
</html>`)

// staticDoc serves body when the embedded API description is present.
func staticDoc(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(docs.OpenAPISpec) == 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}

var (
	serveSwaggerUI   = staticDoc("text/html; charset=utf-8", swaggerPage)
	serveSwaggerYAML = staticDoc("application/yaml", docs.OpenAPISpec)
)
