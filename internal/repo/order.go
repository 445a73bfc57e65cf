package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/models"
)

// OrderPage is one page of the order listing plus the unpaged total.
type OrderPage struct {
	Orders     []models.Order
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// OrderQuery carries the listing controls. Status and Search are
// mutually exclusive; Search wins when both are set.
type OrderQuery struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
	Status  models.OrderStatus
	Search  string
}

// sortColumns whitelists the client-facing sort keys.
var sortColumns = map[string]string{
	"orderDate":  "order_date",
	"totalPrice": "total_price",
	"status":     "status",
	"id":         "id",
}

func (q OrderQuery) orderClause() string {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "order_date"
	}
	dir := "DESC"
	if strings.EqualFold(q.SortDir, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", number).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, q OrderQuery) (*OrderPage, error) {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 10
	}

	base := r.DB.WithContext(ctx).Model(&models.Order{})
	switch {
	case q.Search != "":
		like := "%" + strings.ToLower(q.Search) + "%"
		base = base.Where(
			`LOWER(customer_first_name) LIKE ? OR LOWER(customer_last_name) LIKE ?
			 OR LOWER(customer_email) LIKE ? OR LOWER(order_number) LIKE ?`,
			like, like, like, like,
		)
	case q.Status != "":
		base = base.Where("status = ?", q.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := base.
		Preload("Items").
		Order(q.orderClause()).
		Offset(q.Page * q.Size).
		Limit(q.Size).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	return &OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       q.Page,
		Size:       q.Size,
		TotalPages: totalPages,
	}, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			return err
		}
		order.Status = status
		return tx.Omit("Items").Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes the order and its line items in one transaction.
func (r *GormRepo) DeleteOrder(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
