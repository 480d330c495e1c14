package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the gateway.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
//
// gatewayPath is documented next to the root mount.
func RegisterSwagger(rg *gin.Engine, gatewayPath string) {
	doc := []byte(strings.ReplaceAll(swaggerJSON, "{{GATEWAY_PATH}}", gatewayPath))

	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>redundancy-gateway - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const gatewayOps = `{
      "get": { "summary": "Service metadata", "responses": { "200": { "description": "status, service, provider, timestamp" } } },
      "post": {
        "summary": "Classify content as UNIQUE or DUPLICATE",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"content":{"type":"string"}},"required":["content"]}}}},
        "responses": {
          "200": { "description": "classification result" },
          "400": { "description": "Content is required" },
          "500": { "description": "Database error" }
        }
      },
      "options": { "summary": "CORS preflight", "responses": { "200": { "description": "empty" } } }
    }`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "redundancy-gateway", "version": "v0.1.0" },
  "paths": {
    "/": ` + gatewayOps + `,
    "{{GATEWAY_PATH}}": ` + gatewayOps + `,
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
