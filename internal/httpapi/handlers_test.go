package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

func init() { gin.SetMode(gin.TestMode) }

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewServer(repository.NewMemoryUsers(store), store)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t)
	// create
	w := doJSON(t, s, http.MethodPost, "/products", map[string]any{
		"name": "RTX 4070", "brand": "NVIDIA", "category": "GPU", "price": 54999,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %v", w.Code)
	}
	created := decode[domain.Product](t, w)
	if created.ID == "" {
		t.Fatalf("missing id")
	}
	// get
	w = doJSON(t, s, http.MethodGet, "/products/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get code %v", w.Code)
	}
	// patch
	w = doJSON(t, s, http.MethodPatch, "/products/"+created.ID, map[string]any{"price": 52999})
	if w.Code != http.StatusOK {
		t.Fatalf("patch code %v", w.Code)
	}
	if p := decode[domain.Product](t, w); p.Price.IntPart() != 52999 || p.Name != "RTX 4070" {
		t.Fatalf("patch result %+v", p)
	}
	// list
	w = doJSON(t, s, http.MethodGet, "/products?name_like=rtx", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v", w.Code)
	}
	if list := decode[[]domain.Product](t, w); len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}
	// delete
	w = doJSON(t, s, http.MethodDelete, "/products/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/products/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", w.Code)
	}
}

func TestListProducts_QueryFilters(t *testing.T) {
	s := setupServer(t)
	for _, p := range []map[string]any{
		{"name": "Ryzen 5", "brand": "AMD", "category": "CPU", "price": 15000},
		{"name": "Ryzen 9", "brand": "AMD", "category": "CPU", "price": 45000, "featured": true},
		{"name": "Core i5", "brand": "Intel", "category": "CPU", "price": 18000},
		{"name": "RX 7800", "brand": "AMD", "category": "GPU", "price": 50000},
	} {
		if w := doJSON(t, s, http.MethodPost, "/products", p); w.Code != http.StatusCreated {
			t.Fatalf("seed %v", w.Code)
		}
	}

	list := decode[[]domain.Product](t, doJSON(t, s, http.MethodGet, "/products?category=CPU&_sort=price&_order=desc", nil))
	if len(list) != 3 || list[0].Name != "Ryzen 9" || list[2].Name != "Ryzen 5" {
		t.Fatalf("category sort wrong: %+v", list)
	}
	list = decode[[]domain.Product](t, doJSON(t, s, http.MethodGet, "/products?brand=AMD&price_gte=20000&price_lte=48000", nil))
	if len(list) != 1 || list[0].Name != "Ryzen 9" {
		t.Fatalf("price window wrong: %+v", list)
	}
	list = decode[[]domain.Product](t, doJSON(t, s, http.MethodGet, "/products?featured=true", nil))
	if len(list) != 1 || !list[0].Featured {
		t.Fatalf("featured wrong: %+v", list)
	}
}

func TestUserFlow(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/users", map[string]any{
		"id": "ab12", "username": "neo", "email": "neo@matrix.io", "password": "secret1",
		"role": "user", "isBlocked": false, "address": []any{}, "cart": []any{}, "wishlist": []any{}, "orders": []any{},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create user %v: %s", w.Code, w.Body.String())
	}

	// exact email + password filter
	list := decode[[]domain.User](t, doJSON(t, s, http.MethodGet, "/users?email=neo@matrix.io&password=secret1", nil))
	if len(list) != 1 {
		t.Fatalf("expected match, got %d", len(list))
	}
	list = decode[[]domain.User](t, doJSON(t, s, http.MethodGet, "/users?email=neo@matrix.io&password=nope", nil))
	if len(list) != 0 {
		t.Fatalf("expected no match, got %d", len(list))
	}

	// patch cart only
	w = doJSON(t, s, http.MethodPatch, "/users/ab12", map[string]any{
		"cart": []map[string]any{{"id": "1", "name": "RTX", "price": 1000, "quantity": 2}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch user %v", w.Code)
	}
	u := decode[domain.User](t, w)
	if len(u.Cart) != 1 || u.Cart[0].Quantity != 2 || u.Email != "neo@matrix.io" {
		t.Fatalf("patch result %+v", u)
	}

	// put replaces the whole record
	u.Username = "Neo"
	w = doJSON(t, s, http.MethodPut, "/users/ab12", u)
	if w.Code != http.StatusOK {
		t.Fatalf("put user %v", w.Code)
	}
	if got := decode[domain.User](t, doJSON(t, s, http.MethodGet, "/users/ab12", nil)); got.Username != "Neo" {
		t.Fatalf("replace not persisted: %+v", got)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPatch, "/users/x", "not an object")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}

func TestHTTP_NotFound_Conflict(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/users/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPatch, "/products/999", map[string]any{"name": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}

	_ = doJSON(t, s, http.MethodPost, "/users", map[string]any{"id": "dup", "email": "a@b.c"})
	w = doJSON(t, s, http.MethodPost, "/users", map[string]any{"id": "dup", "email": "x@y.z"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/products", nil)
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing request id")
	}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "abc" {
		t.Fatalf("request id not echoed")
	}
}
