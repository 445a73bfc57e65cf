package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/service"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type ProductHTTP struct {
	Svc *service.ProductService
	Csv *service.CsvService
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	if query := strings.TrimSpace(c.QueryParam("query")); query != "" {
		items, err := h.Svc.FullTextSearch(ctx, query)
		if err != nil {
			return respondErr(l, "search_products", err)
		}
		return c.JSON(http.StatusOK, items)
	}

	if raw := c.QueryParam("categoryId"); raw != "" {
		catID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "categoryId is not an integer")
		}
		items, err := h.Svc.FindByCategory(ctx, uint(catID))
		if err != nil {
			return respondErr(l, "list_products", err)
		}
		return c.JSON(http.StatusOK, items)
	}

	items, err := h.Svc.FindAll(ctx)
	if err != nil {
		return respondErr(l, "list_products", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHTTP) ListByCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_by_category")

	id, err := parseID(c, "categoryId")
	if err != nil {
		return err
	}
	items, err := h.Svc.FindByCategory(ctx, id)
	if err != nil {
		return respondErr(l, "list_products_by_category", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	prod, err := h.Svc.FindByID(ctx, id)
	if err != nil {
		return respondErr(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	items, err := h.Svc.FullTextSearch(ctx, c.QueryParam("query"))
	if err != nil {
		return respondErr(l, "search_products", err)
	}
	return c.JSON(http.StatusOK, items)
}

// bindProduct accepts JSON and multipart alike; multipart may carry
// the image either as a file part or as an imageUrl field.
func bindProduct(c echo.Context) (transport.ProductRequest, *service.UploadedFile, error) {
	var req transport.ProductRequest

	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return req, nil, nil
	}

	req.Name = c.FormValue("name")
	req.Description = c.FormValue("description")
	req.Specifications = c.FormValue("specifications")
	if v := c.FormValue("imageUrl"); v != "" {
		req.ImageURL = &v
	}
	if v := c.FormValue("price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "price is not a number")
		}
		req.Price = p
	}
	if v := c.FormValue("categoryId"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return req, nil, echo.NewHTTPError(http.StatusBadRequest, "categoryId is not an integer")
		}
		req.CategoryID = uint(parsed)
	}

	image, err := formFile(c, "image")
	if err != nil {
		return req, nil, echo.NewHTTPError(http.StatusBadRequest, "broken image part")
	}
	return req, image, nil
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	req, image, err := bindProduct(c)
	if err != nil {
		return err
	}
	prod, err := h.Svc.Create(ctx, req, image)
	if err != nil {
		return respondErr(l, "create_product", err)
	}
	l.Info("create_product_success", "id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req, image, err := bindProduct(c)
	if err != nil {
		return err
	}
	prod, err := h.Svc.Update(ctx, id, req, image)
	if err != nil {
		return respondErr(l, "update_product", err)
	}
	l.Info("update_product_success", "id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return respondErr(l, "delete_product", err)
	}
	l.Info("delete_product_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) BulkDelete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.bulk_delete")

	var ids []uint
	if err := c.Bind(&ids); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res, err := h.Svc.DeleteMany(ctx, ids)
	if err != nil {
		return respondErr(l, "bulk_delete_products", err)
	}
	l.Info("bulk_delete_products_success", "deleted", res.Deleted, "skipped", res.Skipped)
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) BulkMove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.bulk_move")

	var req transport.BulkMoveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	res, err := h.Svc.MoveMany(ctx, req)
	if err != nil {
		return respondErr(l, "bulk_move_products", err)
	}
	l.Info("bulk_move_products_success", "moved", res.Moved, "skipped", res.Skipped)
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) ListImages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_images")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	imgs, err := h.Svc.ListImages(ctx, id)
	if err != nil {
		return respondErr(l, "list_product_images", err)
	}
	return c.JSON(http.StatusOK, imgs)
}

func (h *ProductHTTP) AddImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add_image")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	image, err := formFile(c, "file")
	if err != nil || image == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file part required")
	}
	displayOrder, _ := strconv.Atoi(c.FormValue("displayOrder"))
	isPrimary, _ := strconv.ParseBool(c.FormValue("isPrimary"))

	img, err := h.Svc.AddImage(ctx, id, image, displayOrder, isPrimary)
	if err != nil {
		return respondErr(l, "add_product_image", err)
	}
	l.Info("add_product_image_success", "productId", id, "imageId", img.ID)
	return c.JSON(http.StatusCreated, img)
}

func (h *ProductHTTP) RemoveImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.remove_image")

	imageID, err := parseID(c, "imageId")
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveImage(ctx, imageID); err != nil {
		return respondErr(l, "remove_product_image", err)
	}
	l.Info("remove_product_image_success", "imageId", imageID)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) CsvPreview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.csv_preview")

	file, err := formFile(c, "file")
	if err != nil || file == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file part required")
	}
	preview, err := h.Csv.Preview(ctx, file.Data)
	if err != nil {
		return respondErr(l, "csv_preview", err)
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *ProductHTTP) CsvImport(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.csv_import")

	file, err := formFile(c, "file")
	if err != nil || file == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file part required")
	}

	var targetCategoryID uint
	if v := c.FormValue("targetCategoryId"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "targetCategoryId is not an integer")
		}
		targetCategoryID = uint(parsed)
	}

	res, err := h.Csv.Import(ctx, file.Data, targetCategoryID)
	if err != nil {
		return respondErr(l, "csv_import", err)
	}
	l.Info("csv_import_success", "imported", res.Imported, "failed", res.Failed)
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) CleanupPresignedURLs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.cleanup_presigned_urls")

	fixed, skipped, err := h.Svc.CleanupPresignedURLs(ctx)
	if err != nil {
		return respondErr(l, "cleanup_presigned_urls", err)
	}
	l.Info("cleanup_presigned_urls_success", "fixed", fixed, "skipped", skipped)
	return c.JSON(http.StatusOK, map[string]any{"fixedCount": fixed, "skippedCount": skipped})
}
