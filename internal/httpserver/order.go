package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/service"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	order, err := h.Svc.Create(ctx, req)
	if err != nil {
		return respondErr(l, "create_order", err)
	}
	l.Info("create_order_success", "orderNumber", order.OrderNumber)
	return c.JSON(http.StatusCreated, order)
}

// List supports page/size pagination, a sortBy whitelist, a status
// filter and a customer search. An unknown status drops the filter
// rather than failing.
func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	q := repo.OrderQuery{
		Page:    page,
		Size:    size,
		SortBy:  c.QueryParam("sortBy"),
		SortDir: c.QueryParam("sortDir"),
		Search:  c.QueryParam("search"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		if status, ok := models.ParseOrderStatus(raw); ok {
			q.Status = status
		}
	}

	pageResult, err := h.Svc.List(ctx, q)
	if err != nil {
		return respondErr(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"orders":     pageResult.Orders,
		"total":      pageResult.Total,
		"page":       pageResult.Page,
		"size":       pageResult.Size,
		"totalPages": pageResult.TotalPages,
	})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.Svc.FindByID(ctx, id)
	if err != nil {
		return respondErr(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) GetByNumber(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_by_number")

	number := c.Param("orderNumber")
	if number == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "orderNumber required")
	}
	order, err := h.Svc.FindByNumber(ctx, number)
	if err != nil {
		return respondErr(l, "get_order_by_number", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.Svc.UpdateStatus(ctx, id, c.QueryParam("status"))
	if err != nil {
		return respondErr(l, "update_order_status", err)
	}
	l.Info("update_order_status_success", "id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return respondErr(l, "delete_order", err)
	}
	l.Info("delete_order_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) Statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.Statuses())
}
