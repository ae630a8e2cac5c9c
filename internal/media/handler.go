package media

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the media service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches media routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/media", h.upload)
	rg.GET("/media/url", h.url)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file provided", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	asset, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		UserID:      middleware.UserIDFromContext(c),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "upload_failed", "Upload failed", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, asset)
}

func (h *Handler) url(c *gin.Context) {
	publicID := c.Query("publicId")
	if publicID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "publicId is required", nil)
		return
	}
	t := Transform{
		Quality: c.Query("q"),
		Format:  c.Query("f"),
		Crop:    c.Query("c"),
	}
	t.Width, _ = strconv.Atoi(c.Query("w"))
	t.Height, _ = strconv.Atoi(c.Query("h"))
	respond.OK(c, gin.H{"url": h.Svc.URL(publicID, t)})
}
