package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

func TestSession_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@b.io", Password: "secret1", ConfirmPassword: "secret1"}, "username"},
		{"bad email", RegisterInput{Username: "neo", Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}, "email"},
		{"short password", RegisterInput{Username: "neo", Email: "a@b.io", Password: "123", ConfirmPassword: "123"}, "password"},
		{"mismatch", RegisterInput{Username: "neo", Email: "a@b.io", Password: "secret1", ConfirmPassword: "secret2"}, "confirmPassword"},
	}
	for _, c := range cases {
		_, err := f.session.Register(ctx, c.in)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != c.field {
			t.Fatalf("%s: expected validation error on %s, got %v", c.name, c.field, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: validation error should match ErrInvalidInput", c.name)
		}
	}
}

func TestSession_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	u, err := f.session.Register(ctx, RegisterInput{Username: " neo ", Email: "neo@matrix.io", Password: "secret1", ConfirmPassword: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(u.ID) != 8 || u.Username != "neo" || u.Role != domain.RoleUser {
		t.Fatalf("unexpected registered user: %+v", u)
	}
	if f.session.IsAuthenticated() {
		t.Fatalf("register must not sign in")
	}
	if _, err := f.session.Register(ctx, RegisterInput{Username: "neo2", Email: "neo@matrix.io", Password: "secret1", ConfirmPassword: "secret1"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	if _, err := f.session.Login(ctx, "neo@matrix.io", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := f.session.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty credentials must not match: %v", err)
	}
	if _, err := f.session.Login(ctx, "neo@matrix.io", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if f.session.UserID() != u.ID || f.session.IsAdmin() {
		t.Fatalf("session identity wrong")
	}
	cached, err := f.cache.Load(ctx)
	if err != nil || cached == nil || cached.ID != u.ID {
		t.Fatalf("session not cached: %v %+v", err, cached)
	}

	if err := f.session.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.session.IsAuthenticated() {
		t.Fatalf("still authenticated after logout")
	}
	if cached, _ := f.cache.Load(ctx); cached != nil {
		t.Fatalf("cache not cleared")
	}
}

func TestSession_BlockedAccount(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.addUser(t, domain.User{ID: "b1", Username: "smith", Email: "smith@matrix.io", Password: "agent99", Blocked: true})

	_, err := f.session.Login(ctx, "smith@matrix.io", "agent99")
	if !errors.Is(err, ErrAccountBlocked) {
		t.Fatalf("expected blocked, got %v", err)
	}
	if f.session.IsAuthenticated() {
		t.Fatalf("blocked user must stay anonymous")
	}
	if cached, _ := f.cache.Load(ctx); cached != nil {
		t.Fatalf("blocked user must not be cached")
	}
}

func TestSession_HydrateNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := domain.User{ID: "u9", Username: "trinity", Cart: []domain.CartLineItem{{Product: domain.Product{ID: "1", Price: inr(100)}, Quantity: 3}}}
	if err := f.cache.Save(ctx, &u); err != nil {
		t.Fatalf("save: %v", err)
	}

	var seen []string
	f.session.Subscribe(func(u *domain.User) {
		if u == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, u.ID)
	})
	if err := f.session.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(seen) != 2 || seen[0] != "" || seen[1] != "u9" {
		t.Fatalf("unexpected notifications: %v", seen)
	}
	if f.cart.Count() != 3 {
		t.Fatalf("cart not loaded from hydrated session: %d", f.cart.Count())
	}
}

func TestSession_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	if _, err := f.session.UpdateProfile(ctx, ProfileUpdate{Username: "x", Email: "x@y.io"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
	f.signIn(t)

	_, err := f.session.UpdateProfile(ctx, ProfileUpdate{Username: "neo", Email: "neo-at-matrix"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "email" {
		t.Fatalf("expected email error, got %v", err)
	}
	bad := validAddress()
	bad.MobileNumber = "123"
	if _, err := f.session.UpdateProfile(ctx, ProfileUpdate{Username: "neo", Email: "neo@matrix.io", Address: &bad}); !errors.As(err, &verr) || verr.Field != "mobileNumber" {
		t.Fatalf("expected mobile error, got %v", err)
	}

	addr := validAddress()
	got, err := f.session.UpdateProfile(ctx, ProfileUpdate{Username: "The One", Email: "neo@matrix.io", Address: &addr})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Username != "The One" || got.Password != "secret1" || !got.Address.IsComplete() {
		t.Fatalf("profile not applied: %+v", got)
	}
	remote, _ := f.users.GetByID(ctx, "u1")
	if remote.Username != "The One" {
		t.Fatalf("remote record not replaced")
	}
	if f.session.Current().Username != "The One" {
		t.Fatalf("session not refreshed")
	}
}

func TestSession_RefreshDropsDeletedUser(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := domain.User{ID: "ghost", Username: "ghost"}
	if err := f.cache.Save(ctx, &u); err != nil {
		t.Fatal(err)
	}
	if err := f.session.Hydrate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f.session.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if f.session.IsAuthenticated() {
		t.Fatalf("missing remote user should sign out")
	}
}
