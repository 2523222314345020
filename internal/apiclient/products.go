package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Products is the /products collection over HTTP
type Products struct{ c *Client }

var _ repository.ProductRepository = (*Products)(nil)

func (p *Products) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	if err := p.c.do(ctx, http.MethodGet, "/products", productQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func productQuery(f repository.ProductFilter) url.Values {
	q := url.Values{}
	if f.NameSubstring != "" {
		q.Set("name_like", f.NameSubstring)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Brand != "" {
		q.Set("brand", f.Brand)
	}
	if f.Featured != nil {
		q.Set("featured", strconv.FormatBool(*f.Featured))
	}
	if f.MinPrice != nil {
		q.Set("price_gte", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("price_lte", f.MaxPrice.String())
	}
	if f.SortByPrice != "" {
		q.Set("_sort", "price")
		q.Set("_order", string(f.SortByPrice))
	}
	return q
}

func (p *Products) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	if err := p.c.do(ctx, http.MethodGet, "/products/"+escape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Products) Create(ctx context.Context, product *domain.Product) error {
	var out domain.Product
	if err := p.c.do(ctx, http.MethodPost, "/products", nil, product, &out); err != nil {
		return err
	}
	*product = out
	return nil
}

func (p *Products) Patch(ctx context.Context, id string, patch repository.ProductPatch) (*domain.Product, error) {
	var out domain.Product
	if err := p.c.do(ctx, http.MethodPatch, "/products/"+escape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Products) Delete(ctx context.Context, id string) error {
	return p.c.do(ctx, http.MethodDelete, "/products/"+escape(id), nil, nil, nil)
}
