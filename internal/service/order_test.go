package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

var orderNumberRe = regexp.MustCompile(`^ORD-\d{6}-[0-9A-F]{8}$`)

func testCustomer() transport.CustomerInfo {
	return transport.CustomerInfo{
		FirstName: "Иван", LastName: "Петров",
		Email: "ivan@example.com", Phone: "+79001234567",
	}
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := GenerateOrderNumber()
		require.Regexp(t, orderNumberRe, n)
		require.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}

func TestOrderCreateSnapshotsItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &OrderService{Repo: env.Repo}

	order, err := svc.Create(ctx, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{
			{ID: 5, Name: "Электроды ОК-46", Price: decimal.NewFromInt(700), Quantity: 2, CategoryID: 1},
			{ID: 9, Name: "Маска Хамелеон", Price: decimal.NewFromInt(2500), Quantity: 1},
		},
		TotalPrice:   decimal.NewFromInt(3900),
		CustomerInfo: testCustomer(),
	})
	require.NoError(t, err)
	require.Regexp(t, orderNumberRe, order.OrderNumber)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Электроды ОК-46", order.Items[0].ProductName)
	require.True(t, decimal.NewFromInt(3900).Equal(order.TotalPrice))

	// snapshots survive later product lookups entirely; item rows carry
	// their own name and price
	got, err := svc.FindByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.True(t, decimal.NewFromInt(700).Equal(got.Items[0].Price))
}

func TestOrderCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &OrderService{Repo: env.Repo}

	_, err := svc.Create(ctx, transport.CreateOrderRequest{CustomerInfo: testCustomer()})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, transport.CreateOrderRequest{
		Items:        []transport.OrderItemRequest{{ID: 1, Name: "x", Quantity: 0}},
		CustomerInfo: testCustomer(),
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{{ID: 1, Name: "x", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderStatusUpdateIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &OrderService{Repo: env.Repo}

	order, err := svc.Create(ctx, transport.CreateOrderRequest{
		Items:        []transport.OrderItemRequest{{ID: 1, Name: "x", Price: decimal.NewFromInt(1), Quantity: 1}},
		TotalPrice:   decimal.NewFromInt(1),
		CustomerInfo: testCustomer(),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, "TELEPORTED")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, 999, "SHIPPED")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOrderListPaginationAndSort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &OrderService{Repo: env.Repo}

	for i := 1; i <= 25; i++ {
		_, err := svc.Create(ctx, transport.CreateOrderRequest{
			Items:        []transport.OrderItemRequest{{ID: uint(i), Name: "x", Price: decimal.NewFromInt(int64(i)), Quantity: 1}},
			TotalPrice:   decimal.NewFromInt(int64(i)),
			CustomerInfo: testCustomer(),
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, repo.OrderQuery{Page: 0, Size: 10, SortBy: "totalPrice", SortDir: "asc"})
	require.NoError(t, err)
	require.EqualValues(t, 25, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Orders, 10)
	require.True(t, decimal.NewFromInt(1).Equal(page.Orders[0].TotalPrice))

	last, err := svc.List(ctx, repo.OrderQuery{Page: 2, Size: 10, SortBy: "totalPrice", SortDir: "asc"})
	require.NoError(t, err)
	require.Len(t, last.Orders, 5)

	// unknown sort key falls back to order date, not an error
	_, err = svc.List(ctx, repo.OrderQuery{SortBy: "evil; DROP TABLE orders"})
	require.NoError(t, err)
}

func TestOrderListSearchBeatsStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &OrderService{Repo: env.Repo}

	ci := testCustomer()
	order, err := svc.Create(ctx, transport.CreateOrderRequest{
		Items:        []transport.OrderItemRequest{{ID: 1, Name: "x", Price: decimal.NewFromInt(1), Quantity: 1}},
		TotalPrice:   decimal.NewFromInt(1),
		CustomerInfo: ci,
	})
	require.NoError(t, err)

	other := ci
	other.LastName = "Сидоров"
	_, err = svc.Create(ctx, transport.CreateOrderRequest{
		Items:        []transport.OrderItemRequest{{ID: 2, Name: "y", Price: decimal.NewFromInt(1), Quantity: 1}},
		TotalPrice:   decimal.NewFromInt(1),
		CustomerInfo: other,
	})
	require.NoError(t, err)

	byNumber, err := svc.List(ctx, repo.OrderQuery{
		Search: order.OrderNumber,
		Status: models.OrderStatusCancelled, // ignored while search is set
	})
	require.NoError(t, err)
	require.Len(t, byNumber.Orders, 1)
	require.Equal(t, order.OrderNumber, byNumber.Orders[0].OrderNumber)
}

func TestOrderDeleteCascadesItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &OrderService{Repo: env.Repo}

	order, err := svc.Create(ctx, transport.CreateOrderRequest{
		Items:        []transport.OrderItemRequest{{ID: 1, Name: "x", Price: decimal.NewFromInt(1), Quantity: 1}},
		TotalPrice:   decimal.NewFromInt(1),
		CustomerInfo: testCustomer(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, order.ID))

	var itemRows int64
	env.DB.Model(&models.OrderItem{}).Count(&itemRows)
	require.Zero(t, itemRows)

	require.ErrorIs(t, svc.Delete(ctx, order.ID), ErrNotFound)
}

func TestOrderStatusCatalog(t *testing.T) {
	svc := &OrderService{}
	statuses := svc.Statuses()
	require.Len(t, statuses, 6)
	require.Equal(t, "PENDING", statuses[0].Value)
	require.Equal(t, "Ожидает обработки", statuses[0].DisplayName)
	require.Equal(t, "CANCELLED", statuses[5].Value)
}
