package domain

import (
	"context"
	"encoding/json"
	"time"
)

// OrderStatus is the lifecycle state of an order. Transitions happen server-side.
type OrderStatus string

// Known order statuses.
const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderPreparing  OrderStatus = "preparing"
	OrderDelivering OrderStatus = "delivering"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderPreparing, OrderDelivering, OrderDelivered, OrderCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	Food     *Food   `json:"food,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Customer is the user reference embedded in an order. The backend sends
// either a populated object or a bare id.
type Customer struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UnmarshalJSON accepts a bare id string or an object.
func (c *Customer) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*c = Customer{ID: id}
		return nil
	}
	type plain Customer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Customer(p)
	return nil
}

// Order is a placed order as reported by the backend.
type Order struct {
	ID              string      `json:"_id"`
	User            *Customer   `json:"user,omitempty"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	Status          OrderStatus `json:"status"`
	DeliveryAddress *Address    `json:"deliveryAddress,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderAPI is the port for the backend's order endpoints.
type OrderAPI interface {
	MyOrders(ctx context.Context) ([]Order, error)
	AllOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)
}
