package domain

import (
	"time"
)

type (
	UserID    string
	StoreID   string
	ProductID string
	CartID    string
)

func (uid UserID) String() string {
	return string(uid)
}

func (sid StoreID) String() string {
	return string(sid)
}

// Credential is the bearer token used for service to service calls.
// Expiry is tracked by the issuing service, not locally.
type Credential struct {
	Token    string
	IssuedAt time.Time
}

// StoreRef is the store membership entry embedded in a seller record.
type StoreRef struct {
	StoreID   StoreID `json:"store_id"`
	StoreName string  `json:"store_name"`
}

type Seller struct {
	SellerID UserID
	Stores   []StoreRef
}

type Customer struct {
	CustomerID UserID
	CreatedAt  time.Time
}

// ProductRecord is one product entry within a store catalog.  The master
// fields are overwritten from the upstream snapshot on every merge.  The
// TimesSold and TimesSearched counters are owned locally and survive merges.
type ProductRecord struct {
	ProductID     ProductID `json:"product_id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Stock         int       `json:"stock"`
	CreatedAt     time.Time `json:"created_at"`
	TimesSold     int       `json:"times_sold"`
	TimesSearched int       `json:"times_searched"`
}

// StoreCatalog is the denormalized reporting document for a single store.
type StoreCatalog struct {
	StoreID  StoreID
	Products []ProductRecord
}

// UpstreamStore is the store shape returned by the inventory service.
type UpstreamStore struct {
	StoreID   StoreID   `json:"store_id"`
	SellerID  UserID    `json:"seller_id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Online    bool      `json:"online"`
}

// UpstreamProduct is the product shape returned by the inventory service.
type UpstreamProduct struct {
	ProductID ProductID `json:"product_id"`
	StoreID   StoreID   `json:"store_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Sku       string    `json:"sku,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}

// User is the roster entry returned by the identity service.
type User struct {
	ID        UserID    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	ProductID ProductID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Subtotal  float64   `json:"subtotal"`
}

type Cart struct {
	ID     CartID     `json:"id"`
	UserID UserID     `json:"user_id"`
	Items  []CartItem `json:"items"`
	Total  float64    `json:"total"`
}

const (
	PaymentStatusPaid   = "PAID"
	PaymentStatusUnpaid = "UNPAID"
)

// SettlementSummary is the result of one settlement analysis run.
type SettlementSummary struct {
	PaidCarts    int
	TotalPaid    float64
	ProductsSold map[ProductID]int
}
