// Package httpserver is the echo handler layer. Handlers bind and
// validate input, call one service method and map sentinel errors to
// status codes; no business logic lives here.
package httpserver

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/weld_shop/internal/service"
	"github.com/Skotchmaster/weld_shop/internal/storage"
)

func parseID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	return uint(id), nil
}

// respondErr maps service sentinels onto HTTP statuses, logging at the
// severity the status implies.
func respondErr(l *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(op+"_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(op+"_failed", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		l.Warn(op+"_failed", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	// duplicate username/email answers 400 with a message, not 409
	case errors.Is(err, service.ErrConflict):
		l.Warn(op+"_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		l.Error(op+"_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// formFile reads an optional multipart part fully into memory. A
// missing part returns (nil, nil).
func formFile(c echo.Context, field string) (*service.UploadedFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// absent part, not an error for optional uploads
		return nil, nil
	}
	return readPart(fh)
}

func readPart(fh *multipart.FileHeader) (*service.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &service.UploadedFile{Data: data, Filename: fh.Filename, ContentType: ct}, nil
}
