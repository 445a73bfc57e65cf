package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/events"
	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events *events.Producer
}

// GenerateOrderNumber builds a human-readable unique number:
// "ORD-" + last six digits of the epoch millisecond clock + "-" +
// eight uppercase hex characters of a fresh UUID.
func GenerateOrderNumber() string {
	ms := time.Now().UnixMilli()
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%06d-%s", ms%1_000_000, suffix)
}

func (s *OrderService) publish(ctx context.Context, action string, order *models.Order) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.TopicOrders, order.OrderNumber, map[string]any{
		"action":      action,
		"id":          order.ID,
		"orderNumber": order.OrderNumber,
		"status":      string(order.Status),
		"totalPrice":  order.TotalPrice,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", events.TopicOrders, "error", err)
	}
}

// Create snapshots the submitted line items into an immutable order.
// The submitted totalPrice is stored as-is.
func (s *OrderService) Create(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	ci := req.CustomerInfo
	if ci.FirstName == "" || ci.LastName == "" || ci.Email == "" || ci.Phone == "" {
		return nil, fmt.Errorf("%w: customer name, email and phone are required", ErrValidation)
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for item %q", ErrValidation, it.Name)
		}
	}

	order := models.Order{
		OrderNumber:        GenerateOrderNumber(),
		Status:             models.OrderStatusPending,
		TotalPrice:         req.TotalPrice,
		CustomerFirstName:  ci.FirstName,
		CustomerLastName:   ci.LastName,
		CustomerEmail:      ci.Email,
		CustomerPhone:      ci.Phone,
		CustomerAddress:    ci.Address,
		CustomerCity:       ci.City,
		CustomerPostalCode: ci.PostalCode,
		Comment:            ci.Comment,
		OrderDate:          time.Now().UTC(),
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       it.ID,
			ProductName:     it.Name,
			Price:           it.Price,
			Quantity:        it.Quantity,
			ProductImageURL: it.ImageURL,
			CategoryID:      it.CategoryID,
		})
	}

	if err := s.Repo.CreateOrder(ctx, &order); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("order created",
		"orderNumber", order.OrderNumber, "items", len(order.Items))
	s.publish(ctx, "created", &order)
	return &order, nil
}

func (s *OrderService) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := s.Repo.GetOrderByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, number)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, q repo.OrderQuery) (*repo.OrderPage, error) {
	return s.Repo.ListOrders(ctx, q)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (*models.Order, error) {
	status, ok := models.ParseOrderStatus(raw)
	if !ok || status == "" {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
	order, err := s.Repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	s.publish(ctx, "status_changed", order)
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

// Statuses lists every order status with its display name, in
// lifecycle order.
func (s *OrderService) Statuses() []transport.OrderStatusView {
	views := make([]transport.OrderStatusView, len(models.OrderStatuses))
	for i, st := range models.OrderStatuses {
		views[i] = transport.OrderStatusView{Value: string(st), DisplayName: st.DisplayName()}
	}
	return views
}
