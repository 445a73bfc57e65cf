// Package transport holds the request and response shapes of the HTTP
// surface. Image references leave the system resolved: opaque keys are
// replaced with presigned URLs, stored absolute URLs pass through.
package transport

import "github.com/shopspring/decimal"

type CategoryView struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	ImageURL           *string `json:"imageUrl"`
	ParentCategoryID   *uint   `json:"parentCategoryId"`
	ParentCategoryName string  `json:"parentCategoryName,omitempty"`
}

type CategoryRequest struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	ImageURL         *string `json:"imageUrl"`
	ParentCategoryID *uint   `json:"parentCategoryId"`
}

type ProductView struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Price          decimal.Decimal    `json:"price"`
	ImageURL       *string            `json:"imageUrl"`
	Specifications string             `json:"specifications"`
	CategoryID     uint               `json:"categoryId"`
	Images         []ProductImageView `json:"images,omitempty"`
}

type ProductRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Specifications string          `json:"specifications"`
	CategoryID     uint            `json:"categoryId"`
	ImageURL       *string         `json:"imageUrl"`
}

type ProductImageView struct {
	ID           uint   `json:"id"`
	ProductID    uint   `json:"productId"`
	ImageURL     string `json:"imageUrl"`
	DisplayOrder int    `json:"displayOrder"`
	IsPrimary    bool   `json:"isPrimary"`
}

type SlideView struct {
	ID       uint   `json:"id"`
	ImageURL string `json:"imageUrl"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	LinkURL  string `json:"linkUrl"`
	IsActive bool   `json:"isActive"`
	Order    int    `json:"order"`
}

type SlideRequest struct {
	ImageURL string `json:"imageUrl"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	LinkURL  string `json:"linkUrl"`
	IsActive *bool  `json:"isActive"`
	Order    *int   `json:"order"`
}

type BulkMoveRequest struct {
	ProductIDs       []uint `json:"productIds"`
	TargetCategoryID uint   `json:"targetCategoryId"`
}

type CreateOrderRequest struct {
	Items        []OrderItemRequest `json:"items"`
	TotalPrice   decimal.Decimal    `json:"totalPrice"`
	CustomerInfo CustomerInfo       `json:"customerInfo"`
}

type OrderItemRequest struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"imageUrl"`
	Quantity   int             `json:"quantity"`
	CategoryID uint            `json:"categoryId"`
}

type CustomerInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Comment    string `json:"comment"`
}

type OrderStatusView struct {
	Value       string `json:"value"`
	DisplayName string `json:"displayName"`
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// CsvRow is one normalized record of an uploaded CSV, values already
// stripped of HTML and trimmed.
type CsvRow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CategoryID  string `json:"categoryId"`
	ImageURL    string `json:"imageUrl"`
}

type CsvPreview struct {
	CsvHeaders   []string `json:"csvHeaders"`
	TargetFields []string `json:"targetFields"`
	PreviewData  []CsvRow `json:"previewData"`
	TotalRows    int      `json:"totalRows"`
}
