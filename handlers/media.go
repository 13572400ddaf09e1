package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ourstory/scrapbook/internal/storage"
)

// Downloader streams a stored blob.
type Downloader interface {
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// RegisterMedia serves blobs at /media/<key>. It is unauthenticated, like the
// public bucket URLs it stands in for.
func RegisterMedia(r *gin.Engine, d Downloader) {
	r.GET("/media/*key", func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if key == "" {
			c.Status(http.StatusNotFound)
			return
		}
		rc, err := d.DownloadFile(c.Request.Context(), key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		if err != nil {
			log.Errorf("media %s: %v", key, err)
			c.Status(http.StatusBadGateway)
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, -1, ct, rc, nil)
	})
}
