package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Order statuses the admin panel can set.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses lists the settable statuses in workflow order.
var OrderStatuses = []string{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

// Order is a placed order as listed by the backend.
type Order struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	DeliveryAddress string          `json:"delivery_address"`
	CreatedAt       Timestamp       `json:"created_at"`
	Items           []OrderItem     `json:"items"`
}

// IsPending reports whether the order still awaits confirmation.
func (o Order) IsPending() bool {
	return strings.EqualFold(o.Status, OrderPending)
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// FilterOrdersByStatus keeps orders whose status matches, ignoring case.
// An empty status keeps everything.
func FilterOrdersByStatus(orders []Order, status string) []Order {
	if status == "" {
		return orders
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if strings.EqualFold(o.Status, status) {
			out = append(out, o)
		}
	}
	return out
}
