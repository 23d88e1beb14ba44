package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docflow/internal/credential"
	"docflow/internal/export"
	"docflow/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; lifecycle rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, tplSvc service.TemplateService, docSvc service.DocumentService, exporter export.Gateway, issuer *credential.Issuer, baseURL string) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/templates/upload", UploadTemplate(tplSvc))
	app.Get("/templates", ListTemplates(tplSvc))
	app.Delete("/templates/:name", DeleteTemplate(tplSvc))

	app.Post("/documents/create", CreateDocument(docSvc))
	app.Get("/documents", ListDocuments(docSvc))
	app.Get("/documents/:id/status", GetDocumentStatus(docSvc))
	app.Get("/documents/:id/editor", EditorCredential(docSvc, issuer, baseURL))
	app.Post("/documents/:id/sign", SignDocument(docSvc))
	app.Post("/documents/:id/finalize", FinalizeDocument(docSvc))
	app.Get("/documents/:id/file", DownloadDocument(docSvc))
	app.Get("/documents/:id/pdf", DownloadArtifact(docSvc, exporter))
}
