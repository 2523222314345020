package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Users is the /users collection over HTTP
type Users struct{ c *Client }

var _ repository.UserRepository = (*Users)(nil)

func (u *Users) List(ctx context.Context, f repository.UserFilter) ([]domain.User, error) {
	q := url.Values{}
	if f.Email != "" {
		q.Set("email", f.Email)
	}
	if f.Password != "" {
		q.Set("password", f.Password)
	}
	var out []domain.User
	if err := u.c.do(ctx, http.MethodGet, "/users", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, http.MethodGet, "/users/"+escape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts the record and copies the server's version back into user
func (u *Users) Create(ctx context.Context, user *domain.User) error {
	var out domain.User
	if err := u.c.do(ctx, http.MethodPost, "/users", nil, user, &out); err != nil {
		return err
	}
	*user = out
	return nil
}

func (u *Users) Patch(ctx context.Context, id string, patch repository.UserPatch) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, http.MethodPatch, "/users/"+escape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *Users) Replace(ctx context.Context, user *domain.User) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, http.MethodPut, "/users/"+escape(user.ID), nil, user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
