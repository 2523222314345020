package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"storefront/internal/domain"
)

// MemoryStore is an in-memory collection store with a simple id generator
type MemoryStore struct {
	mu           sync.RWMutex
	nextProdID   int64
	nextUserID   int64
	productsByID map[string]domain.Product
	productOrder []string
	usersByID    map[string]domain.User
	userOrder    []string
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextProdID:   1,
		nextUserID:   1,
		productsByID: make(map[string]domain.Product),
		usersByID:    make(map[string]domain.User),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.allocID(&m.nextProdID, func(id string) bool { _, ok := m.productsByID[id]; return ok })
	} else if _, ok := m.productsByID[p.ID]; ok {
		return ErrConflict
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	m.productsByID[p.ID] = *p
	m.productOrder = append(m.productOrder, p.ID)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Patch(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&p)
	m.productsByID[id] = p
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	m.productOrder = removeID(m.productOrder, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0)
	for _, id := range m.productOrder {
		p := m.productsByID[id]
		if !f.Match(p) {
			continue
		}
		out = append(out, p)
	}
	SortProductsByPrice(out, f.SortByPrice)
	return out, nil
}

// SortProductsByPrice orders products in place; an empty order keeps collection order
func SortProductsByPrice(ps []domain.Product, order SortOrder) {
	switch order {
	case SortAsc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price.LessThan(ps[j].Price) })
	case SortDesc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price.GreaterThan(ps[j].Price) })
	}
}

// UserRepository implementation on wrapper type
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (us *MemoryUsers) List(ctx context.Context, f UserFilter) ([]domain.User, error) {
	us.store.mu.RLock()
	defer us.store.mu.RUnlock()
	out := make([]domain.User, 0)
	for _, id := range us.store.userOrder {
		u := us.store.usersByID[id]
		if !f.Match(u) {
			continue
		}
		out = append(out, u.Clone())
	}
	return out, nil
}

func (us *MemoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	us.store.mu.RLock()
	defer us.store.mu.RUnlock()
	u, ok := us.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u.Clone()
	return &cp, nil
}

func (us *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	s := us.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = s.allocID(&s.nextUserID, func(id string) bool { _, ok := s.usersByID[id]; return ok })
	} else if _, ok := s.usersByID[u.ID]; ok {
		return ErrConflict
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	s.usersByID[u.ID] = u.Clone()
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

func (us *MemoryUsers) Patch(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	us.store.mu.Lock()
	defer us.store.mu.Unlock()
	u, ok := us.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&u)
	us.store.usersByID[id] = u
	cp := u.Clone()
	return &cp, nil
}

func (us *MemoryUsers) Replace(ctx context.Context, u *domain.User) (*domain.User, error) {
	us.store.mu.Lock()
	defer us.store.mu.Unlock()
	if _, ok := us.store.usersByID[u.ID]; !ok {
		return nil, ErrNotFound
	}
	us.store.usersByID[u.ID] = u.Clone()
	cp := u.Clone()
	return &cp, nil
}

// allocID returns the next free sequential id; caller holds the write lock
func (m *MemoryStore) allocID(next *int64, taken func(string) bool) string {
	for {
		id := strconv.FormatInt(*next, 10)
		*next++
		if !taken(id) {
			return id
		}
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
