package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, the collection API stores them that way
	decimal.MarshalJSONWithoutQuotes = true
}

// UnmarshalJSON accepts the legacy blocked flag and address shapes
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var raw struct {
		alias
		Address       json.RawMessage `json:"address"`
		Blocked       *bool           `json:"isBlocked"`
		LegacyBlocked *bool           `json:"isBlock"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	u.Blocked = (raw.Blocked != nil && *raw.Blocked) || (raw.LegacyBlocked != nil && *raw.LegacyBlocked)
	u.Address = nil
	// registration historically wrote "address": []
	if a := bytes.TrimSpace(raw.Address); len(a) > 0 && a[0] == '{' {
		var addr Address
		if err := json.Unmarshal(a, &addr); err != nil {
			return err
		}
		u.Address = &addr
	}
	return nil
}

// MarshalJSON writes empty collections as [] rather than null
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	a := alias(u)
	if a.Cart == nil {
		a.Cart = []CartLineItem{}
	}
	if a.Wishlist == nil {
		a.Wishlist = []Product{}
	}
	if a.Orders == nil {
		a.Orders = []Order{}
	}
	return json.Marshal(a)
}

// UnmarshalJSON folds the alternative total and date fields into the canonical ones
func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	var raw struct {
		alias
		TotalAmount *decimal.Decimal `json:"totalAmount"`
		Total       *decimal.Decimal `json:"total"`
		GrandTotal  *decimal.Decimal `json:"grandTotal"`
		CreatedAt   *time.Time       `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Order(raw.alias)
	switch {
	case raw.TotalAmount != nil:
		o.TotalAmount = *raw.TotalAmount
	case raw.Total != nil:
		o.TotalAmount = *raw.Total
	case raw.GrandTotal != nil:
		o.TotalAmount = *raw.GrandTotal
	default:
		o.TotalAmount = ItemsTotal(o.Items)
	}
	if o.Date.IsZero() && raw.CreatedAt != nil {
		o.Date = *raw.CreatedAt
	}
	o.Status = OrderStatus(strings.ToLower(strings.TrimSpace(string(o.Status))))
	return nil
}
