package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/repository"
)

// AdminPageSize is the admin product table page length
const AdminPageSize = 10

// ProductService wraps catalog maintenance for administrators
type ProductService struct {
	session *SessionService
	repo    repository.ProductRepository
	log     logger.Logger
	now     func() time.Time
}

func NewProductService(session *SessionService, repo repository.ProductRepository, log logger.Logger) *ProductService {
	return &ProductService{
		session: session,
		repo:    repo,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ProductInput is the add/edit form; Price is required
type ProductInput struct {
	Name        string           `json:"name" validate:"notblank"`
	Brand       string           `json:"brand" validate:"notblank"`
	Category    string           `json:"category" validate:"notblank"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Stock       *int             `json:"stock"`
	Featured    bool             `json:"featured"`
}

var productMessages = map[string]string{
	"name":     "Please fill all required fields",
	"brand":    "Please fill all required fields",
	"category": "Please fill all required fields",
	"price":    "Please fill all required fields",
}

func (in ProductInput) validate() error {
	if err := validateForm(in, productMessages); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "Price cannot be negative"}
	}
	if in.Stock != nil && *in.Stock < 0 {
		return &ValidationError{Field: "stock", Message: "Stock cannot be negative"}
	}
	return nil
}

// Create rejects duplicate names and assigns the next numeric id
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if hasDuplicateName(all, in.Name, "") {
		return nil, ErrDuplicateProduct
	}
	now := s.now()
	p := domain.Product{
		ID:          nextProductID(all),
		Name:        in.Name,
		Brand:       in.Brand,
		Category:    in.Category,
		Price:       *in.Price,
		Description: in.Description,
		Image:       in.Image,
		Stock:       in.Stock,
		Featured:    in.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	s.log.Info("product created", "product", p.ID, "name", p.Name)
	return &p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Update patches every form field; the duplicate check ignores the product itself
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if hasDuplicateName(all, in.Name, id) {
		return nil, ErrDuplicateProduct
	}
	now := s.now()
	p, err := s.repo.Patch(ctx, id, repository.ProductPatch{
		Name:        &in.Name,
		Brand:       &in.Brand,
		Category:    &in.Category,
		Price:       in.Price,
		Description: &in.Description,
		Image:       &in.Image,
		Stock:       in.Stock,
		Featured:    &in.Featured,
		UpdatedAt:   &now,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("product updated", "product", id)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(s.session); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", "product", id)
	return nil
}

// ProductPage is one page of the admin product table
type ProductPage struct {
	Items      []domain.Product
	Page       int
	TotalPages int
	Total      int
	Categories []string
	Brands     []string
}

// List filters the whole catalog and returns one 1-based page
func (s *ProductService) List(ctx context.Context, q CatalogQuery, page int) (*ProductPage, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	filtered := q.Apply(all)
	total := len(filtered)
	pages := (total + AdminPageSize - 1) / AdminPageSize
	if page < 1 {
		page = 1
	}
	start := (page - 1) * AdminPageSize
	end := start + AdminPageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return &ProductPage{
		Items:      filtered[start:end],
		Page:       page,
		TotalPages: pages,
		Total:      total,
		Categories: distinct(all, func(p domain.Product) string { return p.Category }),
		Brands:     distinct(all, func(p domain.Product) string { return p.Brand }),
	}, nil
}

func hasDuplicateName(all []domain.Product, name, exceptID string) bool {
	for _, p := range all {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// nextProductID is one past the largest numeric id; non-numeric ids are ignored
func nextProductID(all []domain.Product) string {
	var max int64
	for _, p := range all {
		if n, err := strconv.ParseInt(p.ID, 10, 64); err == nil && n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}

func distinct(all []domain.Product, key func(domain.Product) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range all {
		k := key(p)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
