package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/service"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type CarouselHTTP struct {
	Svc *service.CarouselService
}

func (h *CarouselHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "carousel.list")

	slides, err := h.Svc.FindAll(ctx)
	if err != nil {
		return respondErr(l, "list_slides", err)
	}
	return c.JSON(http.StatusOK, slides)
}

func (h *CarouselHTTP) ListActive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "carousel.list_active")

	slides, err := h.Svc.FindActive(ctx)
	if err != nil {
		return respondErr(l, "list_active_slides", err)
	}
	return c.JSON(http.StatusOK, slides)
}

func (h *CarouselHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "carousel.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	slide, err := h.Svc.FindByID(ctx, id)
	if err != nil {
		return respondErr(l, "get_slide", err)
	}
	return c.JSON(http.StatusOK, slide)
}

func bindSlide(c echo.Context) (transport.SlideRequest, *service.UploadedFile, error) {
	var req transport.SlideRequest

	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return req, nil, nil
	}

	req.Title = c.FormValue("title")
	req.Subtitle = c.FormValue("subtitle")
	req.LinkURL = c.FormValue("linkUrl")
	req.ImageURL = c.FormValue("imageUrl")
	if v := c.FormValue("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "isActive is not a bool")
		}
		req.IsActive = &active
	}
	if v := c.FormValue("order"); v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "order is not an integer")
		}
		req.Order = &order
	}

	image, err := formFile(c, "image")
	if err != nil {
		return req, nil, echo.NewHTTPError(http.StatusBadRequest, "broken image part")
	}
	return req, image, nil
}

func (h *CarouselHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "carousel.create")

	req, image, err := bindSlide(c)
	if err != nil {
		return err
	}
	slide, err := h.Svc.Create(ctx, req, image)
	if err != nil {
		return respondErr(l, "create_slide", err)
	}
	l.Info("create_slide_success", "id", slide.ID)
	return c.JSON(http.StatusCreated, slide)
}

func (h *CarouselHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "carousel.update")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req, image, err := bindSlide(c)
	if err != nil {
		return err
	}
	slide, err := h.Svc.Update(ctx, id, req, image)
	if err != nil {
		return respondErr(l, "update_slide", err)
	}
	l.Info("update_slide_success", "id", id)
	return c.JSON(http.StatusOK, slide)
}

func (h *CarouselHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "carousel.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return respondErr(l, "delete_slide", err)
	}
	l.Info("delete_slide_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CarouselHTTP) Reorder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "carousel.reorder")

	var ids []uint
	if err := c.Bind(&ids); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	slides, err := h.Svc.Reorder(ctx, ids)
	if err != nil {
		return respondErr(l, "reorder_slides", err)
	}
	l.Info("reorder_slides_success", "count", len(ids))
	return c.JSON(http.StatusOK, slides)
}
