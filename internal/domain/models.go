package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStockCeiling applies when a product carries no stock value
const DefaultStockCeiling = 10

// Role of a user account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Product is a catalog record owned by the remote API
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
	Featured    bool            `json:"featured"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StockCeiling is the maximum quantity a cart line may hold
func (p Product) StockCeiling() int {
	if p.Stock == nil {
		return DefaultStockCeiling
	}
	return *p.Stock
}

// CartLineItem is a product snapshot plus quantity; product fields are flattened on the wire
type CartLineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price × quantity
func (li CartLineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Address is the single postal address kept on a user
type Address struct {
	FullName     string `json:"fullName"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`
	MobileNumber string `json:"mobileNumber"`
}

// IsComplete reports whether every field is filled in
func (a *Address) IsComplete() bool {
	return a != nil && a.FullName != "" && a.Address != "" && a.City != "" &&
		a.Pincode != "" && a.MobileNumber != ""
}

// Overlay returns a copy of a with every non-empty field of o laid over it
func (a *Address) Overlay(o Address) Address {
	var out Address
	if a != nil {
		out = *a
	}
	if o.FullName != "" {
		out.FullName = o.FullName
	}
	if o.Address != "" {
		out.Address = o.Address
	}
	if o.City != "" {
		out.City = o.City
	}
	if o.Pincode != "" {
		out.Pincode = o.Pincode
	}
	if o.MobileNumber != "" {
		out.MobileNumber = o.MobileNumber
	}
	return out
}

// User is the account record; cart, wishlist and orders live inside it
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	Role         Role           `json:"role"`
	Blocked      bool           `json:"isBlocked"`
	ProfileImage string         `json:"profileImage"`
	Address      *Address       `json:"address,omitempty"`
	Cart         []CartLineItem `json:"cart"`
	Wishlist     []Product      `json:"wishlist"`
	Orders       []Order        `json:"orders"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// IsAdmin reports whether the account has the admin role
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Clone returns a deep copy so callers cannot alias internal slices
func (u User) Clone() User {
	cp := u
	if u.Address != nil {
		a := *u.Address
		cp.Address = &a
	}
	cp.Cart = cloneSlice(u.Cart)
	cp.Wishlist = cloneSlice(u.Wishlist)
	if u.Orders != nil {
		cp.Orders = make([]Order, len(u.Orders))
		for i, o := range u.Orders {
			cp.Orders[i] = o.Clone()
		}
	}
	return cp
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
