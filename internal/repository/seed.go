package repository

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"storefront/internal/domain"
)

// Seed is the YAML fixture loaded into a MemoryStore at startup
type Seed struct {
	Products []SeedProduct `yaml:"products"`
	Users    []SeedUser    `yaml:"users"`
}

type SeedProduct struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Brand       string  `yaml:"brand"`
	Category    string  `yaml:"category"`
	Price       float64 `yaml:"price"`
	Description string  `yaml:"description"`
	Image       string  `yaml:"image"`
	Stock       *int    `yaml:"stock"`
	Featured    bool    `yaml:"featured"`
}

type SeedUser struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Blocked  bool   `yaml:"blocked"`
}

// ParseSeed decodes a seed document
func ParseSeed(r io.Reader) (*Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &s, nil
}

// LoadSeedFile reads a seed file and applies it to the store
func LoadSeedFile(ctx context.Context, store *MemoryStore, path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	s, err := ParseSeed(f)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, store); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply inserts every seeded record, failing on the first conflict
func (s *Seed) Apply(ctx context.Context, store *MemoryStore) error {
	for _, sp := range s.Products {
		p := domain.Product{
			ID:          sp.ID,
			Name:        sp.Name,
			Brand:       sp.Brand,
			Category:    sp.Category,
			Price:       decimal.NewFromFloat(sp.Price),
			Description: sp.Description,
			Image:       sp.Image,
			Stock:       sp.Stock,
			Featured:    sp.Featured,
		}
		if err := store.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
	}
	users := NewMemoryUsers(store)
	for _, su := range s.Users {
		role := domain.RoleUser
		if su.Role == string(domain.RoleAdmin) {
			role = domain.RoleAdmin
		}
		u := domain.User{
			ID:       su.ID,
			Username: su.Username,
			Email:    su.Email,
			Password: su.Password,
			Role:     role,
			Blocked:  su.Blocked,
		}
		if err := users.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed user %q: %w", su.Email, err)
		}
	}
	return nil
}
