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

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	cats, err := h.Svc.FindAll(ctx)
	if err != nil {
		return respondErr(l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoryHTTP) ListRoots(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list_roots")

	cats, err := h.Svc.FindRoots(ctx)
	if err != nil {
		return respondErr(l, "list_root_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoryHTTP) ListSubcategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list_subcategories")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cats, err := h.Svc.FindSubcategories(ctx, id)
	if err != nil {
		return respondErr(l, "list_subcategories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.Svc.FindByID(ctx, id)
	if err != nil {
		return respondErr(l, "get_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

// bindCategory accepts both JSON bodies and multipart forms; multipart
// may carry an image part.
func bindCategory(c echo.Context) (transport.CategoryRequest, *service.UploadedFile, error) {
	var req transport.CategoryRequest

	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return req, nil, nil
	}

	req.Name = c.FormValue("name")
	req.Description = c.FormValue("description")
	if v := c.FormValue("imageUrl"); v != "" {
		req.ImageURL = &v
	}
	if v := c.FormValue("parentCategoryId"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "parentCategoryId is not an integer")
		}
		p := uint(parsed)
		req.ParentCategoryID = &p
	}

	image, err := formFile(c, "image")
	if err != nil {
		return req, nil, echo.NewHTTPError(http.StatusBadRequest, "broken image part")
	}
	return req, image, nil
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	req, image, err := bindCategory(c)
	if err != nil {
		return err
	}
	cat, err := h.Svc.Create(ctx, req, image)
	if err != nil {
		return respondErr(l, "create_category", err)
	}
	l.Info("create_category_success", "id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req, image, err := bindCategory(c)
	if err != nil {
		return err
	}
	cat, err := h.Svc.Update(ctx, id, req, image)
	if err != nil {
		return respondErr(l, "update_category", err)
	}
	l.Info("update_category_success", "id", id)
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return respondErr(l, "delete_category", err)
	}
	l.Info("delete_category_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}
