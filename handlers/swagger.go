package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API docs:
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>devreg records - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "devreg-records", "version": "v0.1.0" },
  "paths": {
    "/api/records": {
      "get": { "summary": "Find records", "parameters": [{"name":"serial","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "Extended JSON array of records" } } },
      "post": { "summary": "Insert a record (empty body inserts the sample record)", "responses": { "201": { "description": "inserted record" }, "400": { "description": "invalid record" }, "401": { "description": "missing or invalid token" } } },
      "patch": { "summary": "Set Region on every record with the serial", "parameters": [{"name":"serial","in":"query","required":true,"schema":{"type":"string"}}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"region":{}}}}}}, "responses": { "200": { "description": "matched and modified counts" }, "401": { "description": "missing or invalid token" } } }
    },
    "/api/records/one": {
      "get": { "summary": "First matching record", "parameters": [{"name":"serial","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "record" }, "404": { "description": "no match" } } }
    },
    "/api/records/count": {
      "get": { "summary": "Count matching records", "parameters": [{"name":"serial","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "count" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
