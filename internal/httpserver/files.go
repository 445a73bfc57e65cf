package httpserver

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/storage"
)

// FilesHTTP exposes the raw object-store operations that the catalog
// endpoints do not cover: direct upload, download, presign and delete.
type FilesHTTP struct {
	Store storage.Store
}

func (h *FilesHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "files.upload")

	file, err := formFile(c, "file")
	if err != nil || file == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file part required")
	}
	key, err := h.Store.Put(ctx, file.Data, file.Filename, file.ContentType)
	if err != nil {
		return respondErr(l, "upload_file", err)
	}
	l.Info("upload_file_success", "key", key, "size", len(file.Data))
	return c.JSON(http.StatusCreated, map[string]string{"key": key})
}

// Download streams the object. The content type is guessed from the
// key extension; keys carry the original extension.
func (h *FilesHTTP) Download(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "files.download")

	key := c.Param("name")
	rc, err := h.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.Warn("download_file_failed", "status", 404, "key", key)
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		return respondErr(l, "download_file", err)
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(filepath.Ext(key))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, ctype, rc)
}

func (h *FilesHTTP) PresignedURL(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "files.presigned_url")

	key := c.Param("name")
	exists, err := h.Store.Exists(ctx, key)
	if err != nil {
		return respondErr(l, "presign_file", err)
	}
	if !exists {
		l.Warn("presign_file_failed", "status", 404, "key", key)
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	url, err := h.Store.Presign(ctx, key, storage.PresignTTL)
	if err != nil {
		return respondErr(l, "presign_file", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (h *FilesHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "files.delete")

	key := c.Param("name")
	if err := h.Store.Remove(ctx, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.Warn("delete_file_failed", "status", 404, "key", key)
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		return respondErr(l, "delete_file", err)
	}
	l.Info("delete_file_success", "key", key)
	return c.NoContent(http.StatusNoContent)
}
