package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is a node of the self-referential catalog tree. Root
// categories carry a nil ParentCategoryID.
type Category struct {
	ID               uint    `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name             string  `gorm:"not null"                      json:"name"`
	Description      string  `json:"description"`
	ImageRef         *string `gorm:"column:image_url;size:500"     json:"imageUrl"`
	ParentCategoryID *uint   `gorm:"index"                         json:"parentCategoryId"`
}

type Product struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name           string          `gorm:"not null"                      json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price"`
	ImageRef       *string         `gorm:"column:image_url;size:500"     json:"imageUrl"`
	Specifications string          `json:"specifications"`
	CategoryID     uint            `gorm:"index;not null"                json:"categoryId"`
	Images         []ProductImage  `gorm:"constraint:OnDelete:CASCADE"   json:"images,omitempty"`
}

type ProductImage struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"              json:"id"`
	ProductID    uint      `gorm:"index;not null"                        json:"productId"`
	ImageRef     string    `gorm:"column:image_url;size:500;not null"    json:"imageUrl"`
	DisplayOrder int       `gorm:"not null;default:0"                    json:"displayOrder"`
	IsPrimary    bool      `gorm:"not null;default:false"                json:"isPrimary"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CarouselSlide is one homepage banner. Position is the display order;
// "order" is a reserved word in SQL so the column is named explicitly.
type CarouselSlide struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"              json:"id"`
	ImageRef string `gorm:"column:image_url;size:500;not null"    json:"imageUrl"`
	Title    string `gorm:"not null"                              json:"title"`
	Subtitle string `json:"subtitle"`
	LinkURL  string `json:"linkUrl"`
	IsActive bool   `gorm:"not null;default:true"                 json:"isActive"`
	Position int    `gorm:"column:slide_order;not null;default:0" json:"order"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var statusDisplayNames = map[OrderStatus]string{
	OrderStatusPending:    "Ожидает обработки",
	OrderStatusConfirmed:  "Подтвержден",
	OrderStatusProcessing: "В обработке",
	OrderStatusShipped:    "Отправлен",
	OrderStatusDelivered:  "Доставлен",
	OrderStatusCancelled:  "Отменен",
}

func (s OrderStatus) DisplayName() string {
	if n, ok := statusDisplayNames[s]; ok {
		return n
	}
	return string(s)
}

// ParseOrderStatus is case-insensitive. ok is false for unknown values;
// callers treat that as "no status filter".
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s || strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

type Order struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderNumber        string          `gorm:"uniqueIndex;not null"         json:"orderNumber"`
	Status             OrderStatus     `gorm:"not null"                     json:"status"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"totalPrice"`
	CustomerFirstName  string          `gorm:"not null"                     json:"customerFirstName"`
	CustomerLastName   string          `gorm:"not null"                     json:"customerLastName"`
	CustomerEmail      string          `gorm:"not null"                     json:"customerEmail"`
	CustomerPhone      string          `gorm:"not null"                     json:"customerPhone"`
	CustomerAddress    string          `json:"customerAddress"`
	CustomerCity       string          `json:"customerCity"`
	CustomerPostalCode string          `json:"customerPostalCode"`
	Comment            string          `json:"comment"`
	OrderDate          time.Time       `gorm:"index;not null"               json:"orderDate"`
	Items              []OrderItem     `gorm:"constraint:OnDelete:CASCADE"  json:"orderItems"`
}

// OrderItem is a snapshot of a product at order time. Later product
// mutations never touch it.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID         uint            `gorm:"index;not null"               json:"orderId"`
	ProductID       uint            `gorm:"not null"                     json:"productId"`
	ProductName     string          `gorm:"not null"                     json:"productName"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"price"`
	Quantity        int             `gorm:"not null;check:quantity>0"    json:"quantity"`
	ProductImageURL string          `json:"productImageUrl"`
	CategoryID      uint            `json:"categoryId"`
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        *string   `gorm:"uniqueIndex"              json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postalCode"`
	CreatedAt    time.Time `json:"createdAt"`
}
