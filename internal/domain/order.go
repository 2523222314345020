package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus accepts any letter case
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range OrderStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed
func (s OrderStatus) IsTerminal() bool { return s == OrderStatusCancelled }

// PaymentMethod selected at checkout
type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "card"
	PaymentCOD  PaymentMethod = "cod"
)

// ParsePaymentMethod matches the wire values exactly
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.TrimSpace(s)); m {
	case PaymentUPI, PaymentCard, PaymentCOD:
		return m, true
	}
	return "", false
}

// CancelledBy names the party that cancelled an order
type CancelledBy string

const (
	CancelledByUser  CancelledBy = "user"
	CancelledByAdmin CancelledBy = "admin"
)

// PaymentDetails holds the method-specific fields captured at checkout
type PaymentDetails struct {
	TransactionID  string           `json:"transactionId,omitempty"`
	CardNumber     string           `json:"cardNumber,omitempty"`
	CardName       string           `json:"cardName,omitempty"`
	ConvenienceFee *decimal.Decimal `json:"convenienceFee,omitempty"`
}

// OrderItem is a frozen copy of a cart line taken at checkout
type OrderItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
}

// LineTotal returns price × quantity
func (it OrderItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Order is appended to the owning user's order list and never deleted
type Order struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod,omitempty"`
	PaymentDetails  PaymentDetails  `json:"paymentDetails"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	CancelledBy     CancelledBy     `json:"cancelledBy,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
}

var (
	ErrUnknownStatus  = errors.New("order: unknown status")
	ErrTerminalStatus = errors.New("order: status is terminal")
	ErrNotPending     = errors.New("order: only pending orders can be cancelled by the customer")
)

// NewOrderID builds the time-based client identifier
func NewOrderID(now time.Time) string {
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// ItemsTotal sums price × quantity over order items
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// CancelByCustomer moves a pending order to cancelled
func (o *Order) CancelByCustomer(at time.Time) error {
	if o.Status != OrderStatusPending {
		return ErrNotPending
	}
	o.cancel(CancelledByUser, at)
	return nil
}

// Transition applies an administrator status change; only cancelled is terminal
func (o *Order) Transition(next OrderStatus, at time.Time) error {
	next, ok := ParseOrderStatus(string(next))
	if !ok {
		return ErrUnknownStatus
	}
	if o.Status.IsTerminal() {
		return ErrTerminalStatus
	}
	if next == OrderStatusCancelled {
		o.cancel(CancelledByAdmin, at)
		return nil
	}
	o.Status = next
	return nil
}

func (o *Order) cancel(by CancelledBy, at time.Time) {
	at = at.UTC()
	o.Status = OrderStatusCancelled
	o.CancelledBy = by
	o.CancelledAt = &at
}

// Clone returns a deep copy
func (o Order) Clone() Order {
	cp := o
	cp.Items = cloneSlice(o.Items)
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		cp.ShippingAddress = &a
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		cp.CancelledAt = &t
	}
	if o.PaymentDetails.ConvenienceFee != nil {
		f := *o.PaymentDetails.ConvenienceFee
		cp.PaymentDetails.ConvenienceFee = &f
	}
	return cp
}
