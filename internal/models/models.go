package models

import (
	"encoding/json"
	"time"
)

// User represents a customer or admin account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	AvatarURL    string    `db:"avatar_url" json:"avatar_url"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// User roles
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// ProfileComplete reports whether the profile fields needed for
// shipping are all filled in.
func (u *User) ProfileComplete() bool {
	return u.Name != "" && u.Phone != "" && u.Address != ""
}

// Product represents a perfume in the catalog
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Brand       string    `db:"brand" json:"brand"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProductSize represents per-size stock for a product (e.g. 35ml, 50ml, 100ml)
type ProductSize struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Size      string `db:"size" json:"size"`
	Stock     int    `db:"stock" json:"stock"`
}

// ProductImage represents a catalog image
type ProductImage struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	URL       string `db:"url" json:"url"`
}

// Rating represents a product review left after a delivered order
type Rating struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	Stars     int       `db:"stars" json:"stars"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CartItem represents a mutable cart line referencing the catalog.
// Prices are never stored on the cart; they are read from the catalog
// at checkout time.
type CartItem struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	SizeID    int64     `db:"size_id" json:"size_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WishlistItem represents a saved product
type WishlistItem struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order represents a customer order
type Order struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Channel        string    `db:"channel" json:"channel"`
	Subtotal       int64     `db:"subtotal" json:"subtotal"`
	Total          int64     `db:"total" json:"total"`
	Status         string    `db:"status" json:"status"`
	PaymentMethod  string    `db:"payment_method" json:"payment_method"`
	TrackingNumber string    `db:"tracking_number" json:"tracking_number"`
	RecipientName  string    `db:"recipient_name" json:"recipient_name"`
	Phone          string    `db:"phone" json:"phone"`
	AddressLine    string    `db:"address_line" json:"address_line"`
	City           string    `db:"city" json:"city"`
	Province       string    `db:"province" json:"province"`
	PostalCode     string    `db:"postal_code" json:"postal_code"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Order channels
const (
	ChannelOnline = "ONLINE"
	ChannelPOS    = "POS"
)

// Payment methods
const (
	PaymentMethodQRIS = "QRIS"
	PaymentMethodCash = "CASH"
)

// OrderItem represents a priced line in an order. Product name, size
// and unit price are snapshotted at order creation.
type OrderItem struct {
	ID          int64  `db:"id" json:"id"`
	OrderID     int64  `db:"order_id" json:"order_id"`
	ProductID   int64  `db:"product_id" json:"product_id"`
	SizeID      int64  `db:"size_id" json:"size_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Size        string `db:"size" json:"size"`
	Quantity    int    `db:"quantity" json:"quantity"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
	Subtotal    int64  `db:"subtotal" json:"subtotal"`
}

// Payment represents the payment attached to exactly one order
type Payment struct {
	ID              int64      `db:"id" json:"id"`
	OrderID         int64      `db:"order_id" json:"order_id"`
	Method          string     `db:"method" json:"method"`
	Amount          int64      `db:"amount" json:"amount"`
	Status          string     `db:"status" json:"status"`
	TransactionTime *time.Time `db:"transaction_time" json:"transaction_time,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// PaymentTransaction represents a gateway-side (QRIS) transaction
type PaymentTransaction struct {
	ID             int64           `db:"id" json:"id"`
	OrderID        int64           `db:"order_id" json:"order_id"`
	GatewayOrderID string          `db:"gateway_order_id" json:"gateway_order_id"`
	GatewayTxID    string          `db:"gateway_tx_id" json:"gateway_tx_id"`
	GrossAmount    int64           `db:"gross_amount" json:"gross_amount"`
	QRURL          string          `db:"qr_url" json:"qr_url"`
	Status         string          `db:"status" json:"status"`
	ExpiresAt      time.Time       `db:"expires_at" json:"expires_at"`
	RawPayload     json.RawMessage `db:"raw_payload" json:"raw_payload,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Notification represents a user-facing notification row
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	OrderID   *int64    `db:"order_id" json:"order_id,omitempty"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Notification types
const (
	NotificationOrderUpdate     = "ORDER_UPDATE"
	NotificationPayment         = "PAYMENT"
	NotificationDelivery        = "DELIVERY"
	NotificationRefund          = "REFUND"
	NotificationProfileReminder = "PROFILE_REMINDER"
)

// ProcessedEvent for consumer-side idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
