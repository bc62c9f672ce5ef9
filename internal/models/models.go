package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

const (
	DeliveryNovaPoshta = "nova_poshta"
	DeliveryUkrposhta  = "ukrposhta"
	DeliveryCourier    = "courier"
	DeliverySelfPickup = "self_pickup"
)

const (
	ProductPublished = "published"
	ProductDraft     = "draft"
)

type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email          string    `gorm:"unique;not null"           json:"email"`
	PasswordHash   string    `gorm:"not null"                  json:"-"`
	FullName       string    `gorm:"not null"                  json:"full_name"`
	Role           string    `gorm:"not null;default:customer" json:"role"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	Region         string    `json:"region,omitempty"`
	PostalCode     string    `json:"postal_code,omitempty"`
	DeliveryMethod string    `json:"delivery_method,omitempty"`
	NPDepartment   string    `gorm:"column:np_department" json:"np_department,omitempty"`
	Verified       bool      `gorm:"default:false"        json:"verified"`
	CreatedAt      time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Slug      string    `gorm:"unique;not null"          json:"slug"`
	ParentID  *uint     `gorm:"index"                    json:"parent_id,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Specification is one row of a product's spec table, stored inside the
// product's JSON specifications column.
type Specification struct {
	Group string `json:"group"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Product struct {
	ID                   uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID             uint           `gorm:"index;not null"           json:"seller_id"`
	Title                string         `gorm:"not null"                 json:"title"`
	Slug                 string         `gorm:"index"                    json:"slug"`
	Description          string         `json:"description"`
	ShortDescription     string         `json:"short_description,omitempty"`
	CategoryID           uint           `gorm:"index;not null"           json:"category_id"`
	Price                float64        `gorm:"not null"                 json:"price"`
	ComparePrice         *float64       `json:"compare_price,omitempty"`
	Currency             string         `gorm:"default:UAH"              json:"currency"`
	StockLevel           int            `gorm:"not null;default:0"       json:"stock_level"`
	Images               datatypes.JSON `json:"images"`
	Specifications       datatypes.JSON `json:"specifications,omitempty"`
	Status               string         `gorm:"not null;default:draft;index" json:"status"`
	Rating               float64        `gorm:"default:0"     json:"rating"`
	ReviewsCount         int            `gorm:"default:0"     json:"reviews_count"`
	InstallmentMonths    int            `gorm:"default:0"     json:"installment_months,omitempty"`
	InstallmentAvailable bool           `gorm:"default:false" json:"installment_available"`
	ViewsCount           int            `gorm:"default:0"     json:"views_count"`
	SalesCount           int            `gorm:"default:0"     json:"sales_count"`
	IsBestseller         bool           `gorm:"default:false;index" json:"is_bestseller"`
	IsFeatured           bool           `gorm:"default:false"       json:"is_featured"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// CartItem keeps the price the product had when it was added. The catalog
// price may drift afterwards, the snapshot does not.
type CartItem struct {
	ID        uint    `gorm:"primaryKey"                 json:"id"`
	UserID    uint    `gorm:"index;not null"             json:"user_id"`
	ProductID uint    `gorm:"not null"                   json:"product_id"`
	Quantity  uint    `gorm:"default:1;check:quantity>0" json:"quantity"`
	Price     float64 `gorm:"not null"                   json:"price"`
}

type Order struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string    `gorm:"unique;not null"          json:"order_number"`
	UserID        uint      `gorm:"index;not null"           json:"user_id"`
	Street        string    `gorm:"not null"  json:"street"`
	City          string    `gorm:"not null"  json:"city"`
	State         string    `json:"state"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `gorm:"not null"  json:"country"`
	NPDepartment  string    `gorm:"column:np_department" json:"np_department,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Subtotal      float64   `gorm:"not null"    json:"subtotal"`
	ShippingCost  float64   `gorm:"default:0"   json:"shipping_cost"`
	Total         float64   `gorm:"not null"    json:"total"`
	Currency      string    `gorm:"default:UAH" json:"currency"`
	Status        string    `gorm:"not null;default:pending;index" json:"status"`
	PaymentStatus string    `gorm:"not null;default:pending"       json:"payment_status"`
	PaymentMethod string    `gorm:"default:card" json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	SellerID  uint    `gorm:"index"          json:"seller_id"`
	Title     string  `gorm:"not null"       json:"title"`
	Price     float64 `gorm:"not null"       json:"price"`
	Quantity  uint    `gorm:"not null"       json:"quantity"`
}

type Payment struct {
	ID         uint      `gorm:"primaryKey"      json:"id"`
	ExternalID string    `gorm:"unique;not null" json:"payment_id"`
	OrderID    uint      `gorm:"index;not null"  json:"order_id"`
	Amount     float64   `gorm:"not null"        json:"amount"`
	Status     string    `gorm:"not null;default:pending" json:"status"`
	ProviderID string    `json:"provider_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
