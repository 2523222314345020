package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestProduct_StockCeiling(t *testing.T) {
	p := Product{ID: "1"}
	if p.StockCeiling() != DefaultStockCeiling {
		t.Fatalf("expected default ceiling, got %d", p.StockCeiling())
	}
	three := 3
	p.Stock = &three
	if p.StockCeiling() != 3 {
		t.Fatalf("expected 3, got %d", p.StockCeiling())
	}
}

func TestUser_UnmarshalLegacyShapes(t *testing.T) {
	raw := `{"id":"ab12","username":"neo","email":"n@x.io","password":"secret1",
		"role":"user","isBlock":true,"address":[],"cart":[],"wishlist":[],"orders":[]}`
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !u.Blocked {
		t.Fatalf("legacy isBlock should mark user blocked")
	}
	if u.Address != nil {
		t.Fatalf("array address should decode to no address")
	}

	raw = `{"id":"ab12","isBlocked":false,"address":{"fullName":"Neo","address":"1 Main","city":"Pune","pincode":"411001","mobileNumber":"9999999999"}}`
	u = User{}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Blocked {
		t.Fatalf("expected not blocked")
	}
	if !u.Address.IsComplete() {
		t.Fatalf("expected complete address, got %+v", u.Address)
	}
}

func TestUser_MarshalEmptyCollections(t *testing.T) {
	b, err := json.Marshal(User{ID: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"cart":[]`, `"wishlist":[]`, `"orders":[]`, `"isBlocked":false`} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, `"address"`) {
		t.Fatalf("nil address should be omitted: %s", s)
	}
}

func TestOrder_UnmarshalNormalizesTotals(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"totalAmount", `{"id":"1","totalAmount":2015,"status":"PENDING"}`, "2015"},
		{"total", `{"id":"2","total":500}`, "500"},
		{"grandTotal", `{"id":"3","grandTotal":"99.5"}`, "99.5"},
		{"items", `{"id":"4","items":[{"id":"p","price":100,"quantity":3}]}`, "300"},
	}
	for _, c := range cases {
		var o Order
		if err := json.Unmarshal([]byte(c.raw), &o); err != nil {
			t.Fatalf("%s: unmarshal: %v", c.name, err)
		}
		if !o.TotalAmount.Equal(decimal.RequireFromString(c.want)) {
			t.Fatalf("%s: expected total %s, got %s", c.name, c.want, o.TotalAmount)
		}
	}

	var o Order
	if err := json.Unmarshal([]byte(`{"id":"5","status":"Shipped","createdAt":"2024-05-01T10:00:00Z"}`), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.Status != OrderStatusShipped {
		t.Fatalf("status not lower-cased: %q", o.Status)
	}
	if o.Date.IsZero() {
		t.Fatalf("createdAt should populate date")
	}
}

func TestOrder_MarshalPriceAsNumber(t *testing.T) {
	o := Order{ID: "ORD-1", TotalAmount: decimal.NewFromInt(2015), Status: OrderStatusPending}
	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"totalAmount":2015`) {
		t.Fatalf("expected numeric total, got %s", b)
	}
}

func TestOrder_CancelByCustomer(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	o := Order{Status: OrderStatusPending}
	if err := o.CancelByCustomer(at); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Status != OrderStatusCancelled || o.CancelledBy != CancelledByUser || !o.CancelledAt.Equal(at) {
		t.Fatalf("unexpected order after cancel: %+v", o)
	}

	shipped := Order{Status: OrderStatusShipped}
	if err := shipped.CancelByCustomer(at); err != ErrNotPending {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestOrder_AdminTransition(t *testing.T) {
	at := time.Now()
	o := Order{Status: OrderStatusPending}
	if err := o.Transition("Shipped", at); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if o.Status != OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", o.Status)
	}
	// backwards moves are allowed for administrators
	if err := o.Transition(OrderStatusPending, at); err != nil {
		t.Fatalf("back to pending: %v", err)
	}
	if err := o.Transition("lost", at); err != ErrUnknownStatus {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if err := o.Transition(OrderStatusCancelled, at); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.CancelledBy != CancelledByAdmin || o.CancelledAt == nil {
		t.Fatalf("cancellation not stamped: %+v", o)
	}
	if err := o.Transition(OrderStatusDelivered, at); err != ErrTerminalStatus {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
}

func TestOrder_CloneIsDeep(t *testing.T) {
	o := Order{Items: []OrderItem{{ID: "1", Price: decimal.NewFromInt(10), Quantity: 1}}}
	cp := o.Clone()
	cp.Items[0].Quantity = 5
	if o.Items[0].Quantity != 1 {
		t.Fatalf("clone shares items")
	}
}

func TestNewOrderID(t *testing.T) {
	id := NewOrderID(time.UnixMilli(1700000000123))
	if id != "ORD-1700000000123" {
		t.Fatalf("unexpected id %s", id)
	}
}

func TestFormatINR(t *testing.T) {
	cases := map[string]string{
		"0":       "₹0",
		"15":      "₹15",
		"2015":    "₹2,015",
		"123456":  "₹1,23,456",
		"1234567": "₹12,34,567",
		"99.5":    "₹99.5",
	}
	for in, want := range cases {
		if got := FormatINR(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatINR(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestCartSubtotal(t *testing.T) {
	items := []CartLineItem{
		{Product: Product{ID: "a", Price: decimal.NewFromInt(1000)}, Quantity: 2},
		{Product: Product{ID: "b", Price: decimal.RequireFromString("49.99")}, Quantity: 1},
	}
	if got := CartSubtotal(items); !got.Equal(decimal.RequireFromString("2049.99")) {
		t.Fatalf("unexpected subtotal %s", got)
	}
}

func TestAddress_Overlay(t *testing.T) {
	saved := &Address{FullName: "Neo A", Address: "101 Main", City: "Pune", Pincode: "411001", MobileNumber: "9876543210"}
	got := saved.Overlay(Address{City: "Mumbai"})
	want := Address{FullName: "Neo A", Address: "101 Main", City: "Mumbai", Pincode: "411001", MobileNumber: "9876543210"}
	if got != want {
		t.Fatalf("overlay = %+v, want %+v", got, want)
	}
	if saved.City != "Pune" {
		t.Fatalf("overlay mutated the base address")
	}

	var none *Address
	if got := none.Overlay(Address{City: "Pune"}); got != (Address{City: "Pune"}) {
		t.Fatalf("overlay on nil = %+v", got)
	}
}
