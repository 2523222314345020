package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record with the same id already exists
	ErrConflict = errors.New("conflict")
)

// UserFilter mirrors the collection API query string; empty fields are ignored
type UserFilter struct {
	Email    string
	Password string
}

// UserPatch is a partial update; nil fields are left unchanged
type UserPatch struct {
	Username     *string                `json:"username,omitempty"`
	Email        *string                `json:"email,omitempty"`
	Password     *string                `json:"password,omitempty"`
	Role         *domain.Role           `json:"role,omitempty"`
	Blocked      *bool                  `json:"isBlocked,omitempty"`
	ProfileImage *string                `json:"profileImage,omitempty"`
	Address      *domain.Address        `json:"address,omitempty"`
	Cart         *[]domain.CartLineItem `json:"cart,omitempty"`
	Wishlist     *[]domain.Product      `json:"wishlist,omitempty"`
	Orders       *[]domain.Order        `json:"orders,omitempty"`
	UpdatedAt    *time.Time             `json:"updatedAt,omitempty"`

	// LegacyBlocked clears the old isBlock flag some records still carry
	LegacyBlocked *bool `json:"isBlock,omitempty"`
}

// SortOrder for list endpoints
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ProductFilter parameters for listing products
type ProductFilter struct {
	NameSubstring string
	Category      string
	Brand         string
	Featured      *bool
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	// SortByPrice is empty for collection order
	SortByPrice SortOrder
}

// ProductPatch is a partial update; nil fields are left unchanged
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Featured    *bool            `json:"featured,omitempty"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

// UserRepository is the /users collection
type UserRepository interface {
	List(ctx context.Context, f UserFilter) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Patch(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	Replace(ctx context.Context, u *domain.User) (*domain.User, error)
}

// ProductRepository is the /products collection
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Patch(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Apply merges the non-nil fields of the patch into u
func (p UserPatch) Apply(u *domain.User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Blocked != nil {
		u.Blocked = *p.Blocked
	}
	// the legacy flag is already folded into Blocked when a record is decoded
	if p.LegacyBlocked != nil && p.Blocked == nil {
		u.Blocked = u.Blocked && *p.LegacyBlocked
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	if p.Address != nil {
		a := *p.Address
		u.Address = &a
	}
	if p.Cart != nil {
		u.Cart = append([]domain.CartLineItem{}, (*p.Cart)...)
	}
	if p.Wishlist != nil {
		u.Wishlist = append([]domain.Product{}, (*p.Wishlist)...)
	}
	if p.Orders != nil {
		orders := make([]domain.Order, len(*p.Orders))
		for i, o := range *p.Orders {
			orders[i] = o.Clone()
		}
		u.Orders = orders
	}
	if p.UpdatedAt != nil {
		u.UpdatedAt = *p.UpdatedAt
	}
}

// Apply merges the non-nil fields of the patch into pr
func (p ProductPatch) Apply(pr *domain.Product) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Brand != nil {
		pr.Brand = *p.Brand
	}
	if p.Category != nil {
		pr.Category = *p.Category
	}
	if p.Price != nil {
		pr.Price = *p.Price
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Image != nil {
		pr.Image = *p.Image
	}
	if p.Stock != nil {
		s := *p.Stock
		pr.Stock = &s
	}
	if p.Featured != nil {
		pr.Featured = *p.Featured
	}
	if p.UpdatedAt != nil {
		pr.UpdatedAt = *p.UpdatedAt
	}
}

// Match reports whether the user passes the filter
func (f UserFilter) Match(u domain.User) bool {
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.Password != "" && u.Password != f.Password {
		return false
	}
	return true
}

// Match reports whether the product passes the filter
func (f ProductFilter) Match(p domain.Product) bool {
	if !containsIgnoreCase(p.Name, f.NameSubstring) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
