package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docflow/internal/credential"
	"docflow/internal/export"
	"docflow/internal/model"
	"docflow/internal/service"
)

// CreateDocumentRequest is the payload for instantiating a document from a template.
type CreateDocumentRequest struct {
	TemplateName string            `json:"template_name"`
	Variables    map[string]string `json:"variables"`
}

// SignRequest carries the signer identity for the sign transition.
type SignRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// EditorResponse is the credential bundle an editor client needs to open a document.
type EditorResponse struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	FileURL    string `json:"file_url"`
	Token      string `json:"token"`
	Editable   bool   `json:"editable"`
}

// HealthCheck reports readiness. When a database is configured it must answer
// a ping; without one the process has no external dependencies to check.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadTemplate accepts a multipart .docx upload (field name: file) and
// registers it as a template.
func UploadTemplate(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		tpl, err := svc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrEmptyFile) || errors.Is(err, service.ErrUnsupportedType) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FILE", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(tpl)
	}
}

// ListTemplates returns the templates currently in the store.
func ListTemplates(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		templates, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"items": templates, "total": len(templates)})
	}
}

// DeleteTemplate removes the first template matching the name prefix.
func DeleteTemplate(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "template name is required")
		}
		if !svc.Delete(c.UserContext(), name) {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "template not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CreateDocument instantiates a document from a named template.
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.TemplateName == "" {
			return writeError(c, fiber.StatusBadRequest, "TEMPLATE_NAME_REQUIRED", "template_name is required")
		}

		doc, err := svc.Create(c.UserContext(), req.TemplateName, req.Variables)
		if err != nil {
			if errors.Is(err, service.ErrTemplateNotFound) {
				return writeError(c, fiber.StatusNotFound, "TEMPLATE_NOT_FOUND", "template not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments returns a snapshot of all documents.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"items": docs, "total": len(docs)})
	}
}

// GetDocumentStatus returns the lifecycle metadata of a single document.
func GetDocumentStatus(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// EditorCredential issues a signed token granting an editor client access to
// the document file. Drafts are editable, signed and finalized documents are
// read-only.
func EditorCredential(svc service.DocumentService, issuer *credential.Issuer, baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if svc.ResolvePath(c.UserContext(), id) == "" {
			return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "document file not found")
		}

		userID := c.Query("user_id", "anonymous")
		userName := c.Query("user_name", "Anonymous")
		fileURL := baseURL + "/documents/" + id + "/file"
		editable := doc.Status == model.StatusDraft

		token, err := issuer.Issue(id, doc.FileName, fileURL, userID, userName, editable)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(EditorResponse{
			DocumentID: id,
			FileName:   doc.FileName,
			FileURL:    fileURL,
			Token:      token,
			Editable:   editable,
		})
	}
}

// SignDocument transitions a Draft document to Signed.
func SignDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req SignRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.UserID == "" {
			return writeError(c, fiber.StatusBadRequest, "USER_ID_REQUIRED", "user_id is required")
		}

		if !svc.Sign(c.UserContext(), id, req.UserID, req.UserName) {
			if _, err := svc.Get(c.UserContext(), id); errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusConflict, "INVALID_STATUS", "document is not in draft status")
		}
		return c.JSON(fiber.Map{"id": id, "status": model.StatusSigned})
	}
}

// FinalizeDocument exports a Signed document and transitions it to Finalized.
func FinalizeDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if !svc.Finalize(c.UserContext(), id) {
			if _, err := svc.Get(c.UserContext(), id); errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusConflict, "INVALID_STATUS", "document is not in signed status")
		}
		return c.JSON(fiber.Map{"id": id, "status": model.StatusFinalized})
	}
}

// DownloadDocument serves the live document file from the Documents area.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		path := svc.ResolvePath(c.UserContext(), id)
		if path == "" {
			return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "document file not found")
		}
		return c.Download(path, doc.FileName)
	}
}

// DownloadArtifact serves the exported artifact of a Finalized document.
func DownloadArtifact(svc service.DocumentService, exporter export.Gateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if doc.Status != model.StatusFinalized {
			return writeError(c, fiber.StatusConflict, "NOT_FINALIZED", "document is not finalized")
		}

		data, err := exporter.FetchArtifact(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, export.ErrArtifactNotFound) {
				return writeError(c, fiber.StatusNotFound, "ARTIFACT_NOT_FOUND", "artifact not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+id+export.ArtifactExt+`"`)
		return c.Send(data)
	}
}
