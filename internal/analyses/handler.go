package analyses

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/ai"
	"glownexa-backend/internal/media"
	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/server/respond"
)

const maxListLimit = 100

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyze)
	rg.POST("/analyses/skin", h.saveSkin)
	rg.POST("/analyses/hair", h.saveHair)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
	rg.PATCH("/analyses/:id", h.update)
	rg.DELETE("/analyses/:id", h.delete)
}

func (h *Handler) saveSkin(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req SkinInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	id, err := h.Svc.SaveSkin(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err, "failed to save analysis")
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"analysisId": id})
}

func (h *Handler) saveHair(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req HairInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	id, err := h.Svc.SaveHair(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err, "failed to save analysis")
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"analysisId": id})
}

func (h *Handler) analyze(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file provided", nil)
		return
	}
	age, err := strconv.Atoi(strings.TrimSpace(c.PostForm("age")))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "age must be a number", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	analysis, err := h.Svc.Analyze(c.Request.Context(), userID, AnalyzeInput{
		Type:        Type(strings.ToLower(strings.TrimSpace(c.PostForm("type")))),
		Age:         age,
		Gender:      strings.TrimSpace(c.PostForm("gender")),
		SkinType:    strings.TrimSpace(c.PostForm("skinType")),
		HairType:    strings.TrimSpace(c.PostForm("hairType")),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(c, err, "failed to analyze image")
		return
	}
	c.Set("analysisId", analysis.ID)
	respond.JSON(c, http.StatusCreated, analysis)
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err, "failed to list analyses")
		return
	}
	respond.OK(c, gin.H{"analyses": list})
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.Set("analysisId", c.Param("id"))
	analysis, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch analysis")
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.Set("analysisId", c.Param("id"))
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Status == nil && req.Feedback == nil && req.Response == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "nothing to update", nil)
		return
	}
	analysis, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to update analysis")
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.Set("analysisId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err, "failed to delete analysis")
		return
	}
	c.Status(http.StatusNoContent)
}

func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return "", false
	}
	return userID, true
}

func writeError(c *gin.Context, err error, fallback string) {
	var mediaErr *media.ValidationError
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.As(err, &mediaErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", mediaErr.Msg, nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, ai.ErrNotConfigured), errors.Is(err, ErrMediaNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "service_unavailable", "analysis is not available right now", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
