package models

import "time"

// Roles
const (
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// User is a merchant or an administrator
type User struct {
	ID             int64     `db:"id" json:"id"`
	Phone          string    `db:"phone" json:"phone"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	StoreName      string    `db:"store_name" json:"storeName"`
	Address        string    `db:"address" json:"address"`
	Role           string    `db:"role" json:"role"`
	MerchantCode   string    `db:"merchant_code" json:"merchantId"`
	Balance        int64     `db:"balance" json:"balance"`
	PendingBalance int64     `db:"pending_balance" json:"pendingBalance"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Product represents a catalog item
type Product struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	WholesalePrice  int64     `db:"wholesale_price" json:"wholesalePrice"`
	SellingPriceMin int64     `db:"selling_price_min" json:"sellingPriceMin"`
	Category        string    `db:"category" json:"category"`
	ImageURL        string    `db:"image_url" json:"imageUrl"`
	Stock           int       `db:"stock" json:"stock"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// Order is one purchase placed by a merchant for an end customer.
// TotalAmount is what the customer is charged: Subtotal + ShippingCost - PromoDiscount.
type Order struct {
	ID             int64       `db:"id" json:"id"`
	MerchantID     int64       `db:"merchant_id" json:"merchantId"`
	CustomerName   string      `db:"customer_name" json:"customerName"`
	CustomerPhone  string      `db:"customer_phone" json:"customerPhone"`
	Province       string      `db:"province" json:"province"`
	Address        string      `db:"address" json:"address"`
	Notes          string      `db:"notes" json:"notes"`
	Status         string      `db:"status" json:"status"`
	Subtotal       int64       `db:"subtotal" json:"subtotal"`
	TotalAmount    int64       `db:"total_amount" json:"totalAmount"`
	ShippingCost   int64       `db:"shipping_cost" json:"shippingCost"`
	TotalProfit    int64       `db:"total_profit" json:"totalProfit"`
	PromoCode      *string     `db:"promo_code" json:"promoCode"`
	PromoDiscount  int64       `db:"promo_discount" json:"promoDiscount"`
	IdempotencyKey *string     `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
	Items          []OrderItem `db:"-" json:"items"`
}

// OrderItem is an immutable line of an order. Price and Cost are snapshots
// taken when the order was placed.
type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"orderId"`
	ProductID int64           `db:"product_id" json:"productId"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     int64           `db:"price" json:"price"`
	Cost      int64           `db:"cost" json:"cost"`
	Product   *ProductSummary `db:"-" json:"product"`
}

// ProductSummary is the product view attached to order items
type ProductSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Category string `json:"category"`
}

// Withdrawal is a merchant payout request
type Withdrawal struct {
	ID             int64     `db:"id" json:"id"`
	MerchantID     int64     `db:"merchant_id" json:"merchantId"`
	Amount         int64     `db:"amount" json:"amount"`
	Method         string    `db:"method" json:"method"`
	AccountDetails string    `db:"account_details" json:"accountDetails"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// PromoCode is a percentage discount token
type PromoCode struct {
	ID              int64     `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	DiscountPercent int64     `db:"discount_percent" json:"discountPercent"`
	IsActive        bool      `db:"is_active" json:"isActive"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// JournalEntry is one ledger event recorded by the journal worker
type JournalEntry struct {
	EventID      string    `db:"event_id" json:"eventId"`
	EventType    string    `db:"event_type" json:"eventType"`
	MerchantID   int64     `db:"merchant_id" json:"merchantId"`
	OrderID      *int64    `db:"order_id" json:"orderId,omitempty"`
	WithdrawalID *int64    `db:"withdrawal_id" json:"withdrawalId,omitempty"`
	Amount       int64     `db:"amount" json:"amount"`
	Status       string    `db:"status" json:"status"`
	OccurredAt   time.Time `db:"occurred_at" json:"occurredAt"`
	RecordedAt   time.Time `db:"recorded_at" json:"recordedAt"`
}
