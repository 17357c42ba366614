package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/authz"
	"recruit-backend/internal/extract"
	"recruit-backend/internal/parser"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
)

const maxUploadBody = 6 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	Pipeline *extract.Pipeline
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, pipeline *extract.Pipeline) *Handler {
	return &Handler{Svc: svc, Pipeline: pipeline}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/view", h.view)
	rg.GET("/documents/:id/download", h.download)
	rg.POST("/documents/:id/parse", h.parse)
	rg.GET("/documents/slots/:category", h.slot)
	rg.DELETE("/documents/slots/:category", h.clearSlot)
}

func (h *Handler) upload(c *gin.Context) {
	requester := requesterFrom(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

	category, err := ParseCategory(c.PostForm("category"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	owner, ok := h.slotOwner(c, requester, c.PostForm("ownerId"))
	if !ok {
		return
	}

	doc, err := h.Svc.Replace(c.Request.Context(), UploadInput{
		OwnerID:           owner,
		Category:          category,
		FileName:          fileHeader.Filename,
		MimeType:          strings.TrimSpace(fileHeader.Header.Get("Content-Type")),
		Data:              data,
		RelatedEntityType: strings.TrimSpace(c.PostForm("relatedEntityType")),
		RelatedEntityID:   strings.TrimSpace(c.PostForm("relatedEntityId")),
	})
	if err != nil {
		writeServiceError(c, err, "failed to upload document")
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	requester := requesterFrom(c)

	docs, err := h.Svc.List(c.Request.Context(), requester)
	if err != nil {
		writeServiceError(c, err, "failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Resolve(c.Request.Context(), c.Param("id"), requesterFrom(c))
	if err != nil {
		writeServiceError(c, err, "failed to fetch document")
		return
	}
	respond.OK(c, toResponse(doc))
}

func (h *Handler) view(c *gin.Context) {
	h.stream(c, "inline")
}

func (h *Handler) download(c *gin.Context) {
	h.stream(c, "attachment")
}

// stream serves a document's bytes with the given content disposition.
func (h *Handler) stream(c *gin.Context, disposition string) {
	doc, err := h.Svc.Resolve(c.Request.Context(), c.Param("id"), requesterFrom(c))
	if err != nil {
		writeServiceError(c, err, "failed to fetch document")
		return
	}

	rc, err := h.Svc.OpenStream(c.Request.Context(), doc)
	if err != nil {
		writeServiceError(c, err, "failed to stream document")
		return
	}
	defer rc.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("%s; filename=%q", disposition, doc.OriginalName),
	}
	c.DataFromReader(http.StatusOK, doc.SizeBytes, doc.MimeType, rc, headers)
}

func (h *Handler) parse(c *gin.Context) {
	doc, err := h.Svc.Resolve(c.Request.Context(), c.Param("id"), requesterFrom(c))
	if err != nil {
		writeServiceError(c, err, "failed to fetch document")
		return
	}

	kind, err := h.parseKind(c, doc)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	in := extract.Input{
		DocumentID: doc.ID,
		FileName:   doc.OriginalName,
		MimeType:   doc.MimeType,
		Kind:       kind,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return h.Svc.OpenStream(ctx, doc)
		},
	}
	// Locally stored bytes are read in place; only remote bytes get spooled.
	if path, ok := h.Svc.LocalPath(c.Request.Context(), doc); ok {
		in.Path = path
	}

	result, err := h.Pipeline.Run(c.Request.Context(), in)
	if err != nil {
		writeParseError(c, err)
		return
	}

	respond.OK(c, result)
}

// parseKind picks the parser schema for a parse request. An explicit kind in
// the body wins; absent one, the document's category decides.
func (h *Handler) parseKind(c *gin.Context, doc Document) (parser.Kind, error) {
	var req struct {
		Kind string `json:"kind"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", fmt.Errorf("invalid request body: %v", err)
		}
	}
	if strings.TrimSpace(req.Kind) != "" {
		return parser.ParseKind(req.Kind)
	}
	return kindFor(doc.Category)
}

func (h *Handler) slot(c *gin.Context) {
	requester := requesterFrom(c)

	category, err := ParseCategory(c.Param("category"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	owner, ok := h.slotOwner(c, requester, c.Query("ownerId"))
	if !ok {
		return
	}

	doc, err := h.Svc.ResolveSlot(c.Request.Context(), owner, category, requester)
	if err != nil {
		writeServiceError(c, err, "failed to fetch document")
		return
	}
	respond.OK(c, toResponse(doc))
}

func (h *Handler) clearSlot(c *gin.Context) {
	requester := requesterFrom(c)

	category, err := ParseCategory(c.Param("category"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	owner, ok := h.slotOwner(c, requester, c.Query("ownerId"))
	if !ok {
		return
	}

	if err := h.Svc.Clear(c.Request.Context(), owner, category); err != nil {
		writeServiceError(c, err, "failed to clear slot")
		return
	}
	c.Status(http.StatusNoContent)
}

// slotOwner resolves which owner a slot operation targets. An explicit
// ownerId different from the requester is honored only for roles the policy
// lets manage other owners' documents; otherwise a 403 is written and the
// second return is false.
func (h *Handler) slotOwner(c *gin.Context, requester authz.Identity, explicit string) (string, bool) {
	owner := strings.TrimSpace(explicit)
	if owner == "" || owner == requester.UserID {
		return requester.UserID, true
	}
	if !h.Svc.Policy.CanAccess(requester.UserID, requester.Role, owner) {
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		return "", false
	}
	return owner, true
}

func requesterFrom(c *gin.Context) authz.Identity {
	return authz.Identity{
		UserID: middleware.UserIDFromContext(c),
		Role:   middleware.UserRoleFromContext(c),
	}
}

// kindFor maps a document category to the parser schema it feeds.
func kindFor(category Category) (parser.Kind, error) {
	switch category {
	case CategoryResume, CategoryCoverLetter:
		return parser.KindResume, nil
	case CategoryJobDescription:
		return parser.KindJobDescription, nil
	default:
		return "", fmt.Errorf("%w: %s documents cannot be parsed", ErrInvalidInput, category)
	}
}

func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrStorageUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", err.Error(), nil)
	case errors.Is(err, ErrBackendUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func writeParseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", err.Error(), nil)
	case errors.Is(err, extract.ErrInsufficientContent):
		respond.Error(c, http.StatusUnprocessableEntity, "insufficient_content", err.Error(), nil)
	case errors.Is(err, extract.ErrParseFailed):
		respond.Error(c, http.StatusBadGateway, "parse_failed", err.Error(), nil)
	default:
		writeServiceError(c, err, "failed to parse document")
	}
}
