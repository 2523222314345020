package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Categories offered by the storefront filter
var Categories = []string{
	"GPU", "CPU", "RAM", "Storage", "Motherboard",
	"Cooling System", "Power Supply", "PC Case", "Monitor",
	"Keyboard", "Mouse", "Headset", "Microphone", "Laptop",
	"Accessory", "Gaming Console", "Handheld",
}

// PopularBrands are always listed in the brand filter
var PopularBrands = []string{
	"NVIDIA", "AMD", "Intel", "ASUS", "MSI", "Corsair",
	"Logitech", "Razer", "Sony", "HyperX", "Cooler Master",
	"NZXT", "Lian Li", "Gigabyte", "Samsung", "Lenovo", "HP", "Acer",
}

// PriceSort is the catalog price ordering
type PriceSort string

const (
	PriceDefault PriceSort = ""
	PriceLow     PriceSort = "low"
	PriceHigh    PriceSort = "high"
)

// CatalogQuery is the storefront filter bar; "all" and "" disable a filter
type CatalogQuery struct {
	Search   string
	Category string
	Brand    string
	Sort     PriceSort
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "all")
}

// Filter converts the query into a repository filter
func (q CatalogQuery) Filter() repository.ProductFilter {
	f := repository.ProductFilter{NameSubstring: strings.TrimSpace(q.Search)}
	if !isAll(q.Category) {
		f.Category = q.Category
	}
	if !isAll(q.Brand) {
		f.Brand = q.Brand
	}
	switch q.Sort {
	case PriceLow:
		f.SortByPrice = repository.SortAsc
	case PriceHigh:
		f.SortByPrice = repository.SortDesc
	}
	return f
}

// Apply filters and sorts an in-memory product list
func (q CatalogQuery) Apply(all []domain.Product) []domain.Product {
	f := q.Filter()
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	repository.SortProductsByPrice(out, f.SortByPrice)
	return out
}

// CatalogService is the public product browser
type CatalogService struct {
	repo     repository.ProductRepository
	cart     *CartService
	wishlist *WishlistService
}

func NewCatalogService(repo repository.ProductRepository, cart *CartService, wishlist *WishlistService) *CatalogService {
	return &CatalogService{repo: repo, cart: cart, wishlist: wishlist}
}

func (s *CatalogService) Browse(ctx context.Context, q CatalogQuery) ([]domain.Product, error) {
	list, err := s.repo.List(ctx, q.Filter())
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return list, nil
}

// Featured lists products flagged for the home page
func (s *CatalogService) Featured(ctx context.Context) ([]domain.Product, error) {
	featured := true
	list, err := s.repo.List(ctx, repository.ProductFilter{Featured: &featured})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return list, nil
}

// Brands is the popular brand list followed by any other brand in the catalog
func (s *CatalogService) Brands(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := append([]string{}, PopularBrands...)
	seen := make(map[string]bool, len(out))
	for _, b := range out {
		seen[b] = true
	}
	for _, b := range distinct(all, func(p domain.Product) string { return p.Brand }) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out, nil
}

// ShopCategories are the distinct categories present in the catalog, sorted
func (s *CatalogService) ShopCategories(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := distinct(all, func(p domain.Product) string { return p.Category })
	sort.Strings(out)
	return out, nil
}

// ProductView is the detail page model
type ProductView struct {
	Product    domain.Product
	InCart     int
	Wishlisted bool
	Controls   *QuantityControls
}

func (s *CatalogService) Product(ctx context.Context, id string) (*ProductView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := &ProductView{Product: *p}
	if s.cart != nil {
		if c, ok := s.cart.Controls(p.ID); ok {
			v.InCart = c.Quantity
			v.Controls = &c
		}
	}
	if s.wishlist != nil {
		v.Wishlisted = s.wishlist.IsInWishlist(p.ID)
	}
	return v, nil
}
