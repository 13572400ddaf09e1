package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ourstory/scrapbook/internal/assets"
)

// maxImageBytes bounds one multipart upload.
const maxImageBytes = 10 << 20

type ImageHandler struct {
	assets *assets.Service
}

func NewImageHandler(a *assets.Service) *ImageHandler {
	return &ImageHandler{assets: a}
}

func (h *ImageHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/images", h.Upload)
	rg.DELETE("/images", h.Delete)
}

// Upload accepts multipart field "file" and optional form field "folder" and
// returns {url}.
func (h *ImageHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	url, err := h.assets.Upload(c.Request.Context(), assets.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, c.PostForm("folder"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// Delete removes the image at {url}. Removal is best-effort: the response is
// 204 whether or not the blob was there.
func (h *ImageHandler) Delete(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.assets.Delete(c.Request.Context(), req.URL).Log(log)
	c.Status(http.StatusNoContent)
}
