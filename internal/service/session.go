package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/localstore"
	"storefront/internal/logger"
	"storefront/internal/repository"
)

// SessionService owns the signed-in identity and its durable copy
type SessionService struct {
	users repository.UserRepository
	cache localstore.Cache
	log   logger.Logger
	now   func() time.Time
	newID func() string

	mu        sync.RWMutex
	current   *domain.User
	listeners []func(u *domain.User)
}

func NewSessionService(users repository.UserRepository, cache localstore.Cache, log logger.Logger) *SessionService {
	return &SessionService{
		users: users,
		cache: cache,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: shortID,
	}
}

// shortID is the first group of a random UUID
func shortID() string {
	return uuid.New().String()[:8]
}

// RegisterInput is the sign-up form
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

var registerMessages = map[string]string{
	"username.required":        "Username is required",
	"username":                 "Username must be at least 3 characters",
	"email.required":           "Email is required",
	"email":                    "Invalid email",
	"password.required":        "Password is required",
	"password":                 "Password must be at least 6 characters",
	"confirmPassword.required": "Confirm your password",
	"confirmPassword":          "Passwords must match",
}

// ProfileUpdate is the profile form; an empty Password keeps the old one
type ProfileUpdate struct {
	Username     string          `json:"username" validate:"notblank"`
	Email        string          `json:"email" validate:"notblank,looseemail"`
	Password     string          `json:"password"`
	ProfileImage string          `json:"profileImage"`
	Address      *domain.Address `json:"address"`
}

type profileAddressRules struct {
	Pincode      string `json:"pincode" validate:"omitempty,len=6"`
	MobileNumber string `json:"mobileNumber" validate:"omitempty,len=10"`
}

var profileMessages = map[string]string{
	"username":       "Username is required",
	"email.notblank": "Email is required",
	"email":          "Invalid email address",
	"mobileNumber":   "Enter a valid 10-digit mobile number",
	"pincode":        "Enter a valid 6-digit pincode",
}

// Subscribe registers fn for identity changes (hydrate, login, logout) and
// calls it once with the current identity. fn receives a copy, nil when anonymous.
func (s *SessionService) Subscribe(fn func(u *domain.User)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	fn(snap)
}

// Hydrate restores the session from the durable cache
func (s *SessionService) Hydrate(ctx context.Context) error {
	u, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	s.setIdentity(u)
	return nil
}

// Register creates an account; the caller stays anonymous
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateForm(in, registerMessages); err != nil {
		return nil, err
	}
	existing, err := s.users.List(ctx, repository.UserFilter{Email: in.Email})
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateEmail
	}
	now := s.now()
	u := domain.User{
		ID:        s.newID(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      domain.RoleUser,
		Cart:      []domain.CartLineItem{},
		Wishlist:  []domain.Product{},
		Orders:    []domain.Order{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", "user", u.ID)
	return &u, nil
}

// Login looks the credentials up as an exact query and caches the matching record
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	// an empty filter would match everyone
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	matches, err := s.users.List(ctx, repository.UserFilter{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("lookup credentials: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrInvalidCredentials
	}
	u := matches[0]
	if u.Blocked {
		return nil, ErrAccountBlocked
	}
	if err := s.cache.Save(ctx, &u); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.setIdentity(&u)
	s.log.Info("user logged in", "user", u.ID, "role", u.Role)
	cp := u.Clone()
	return &cp, nil
}

// Logout forgets the session locally; nothing is sent to the API
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.setIdentity(nil)
	return nil
}

// UpdateProfile replaces the whole remote record built from the cached one
func (s *SessionService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*domain.User, error) {
	cur := s.Current()
	if cur == nil {
		return nil, ErrNotAuthenticated
	}
	if err := validateForm(in, profileMessages); err != nil {
		return nil, err
	}
	if in.Address != nil {
		rules := profileAddressRules{Pincode: in.Address.Pincode, MobileNumber: in.Address.MobileNumber}
		if err := validateForm(rules, profileMessages); err != nil {
			return nil, err
		}
	}

	next := cur.Clone()
	next.Username = in.Username
	next.Email = in.Email
	next.ProfileImage = in.ProfileImage
	if in.Address != nil {
		a := *in.Address
		next.Address = &a
	}
	if strings.TrimSpace(in.Password) != "" {
		next.Password = in.Password
	}
	next.UpdatedAt = s.now()

	saved, err := s.users.Replace(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := s.cache.Save(ctx, saved); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	if s.current != nil && s.current.ID == saved.ID {
		cp := saved.Clone()
		s.current = &cp
	}
	s.mu.Unlock()
	return saved, nil
}

// Mirror applies fn to the cached record of userID and persists it.
// It is a no-op once that user is no longer signed in.
func (s *SessionService) Mirror(ctx context.Context, userID string, fn func(u *domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != userID {
		return nil
	}
	fn(s.current)
	if err := s.cache.Save(ctx, s.current); err != nil {
		return fmt.Errorf("mirror session: %w", err)
	}
	return nil
}

// Refresh replaces the cached record with the remote one
func (s *SessionService) Refresh(ctx context.Context) (*domain.User, error) {
	id := s.UserID()
	if id == "" {
		return nil, ErrNotAuthenticated
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("session user no longer exists", "user", id)
		return nil, s.Logout(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if err := s.cache.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.setIdentity(u)
	return u, nil
}

// Current returns a copy of the signed-in user, nil when anonymous
func (s *SessionService) Current() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *SessionService) IsAuthenticated() bool { return s.UserID() != "" }

func (s *SessionService) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAdmin()
}

func (s *SessionService) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

func (s *SessionService) snapshotLocked() *domain.User {
	if s.current == nil {
		return nil
	}
	cp := s.current.Clone()
	return &cp
}

func (s *SessionService) setIdentity(u *domain.User) {
	s.mu.Lock()
	if u == nil {
		s.current = nil
	} else {
		cp := u.Clone()
		s.current = &cp
	}
	listeners := append([]func(*domain.User){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		s.mu.RLock()
		snap := s.snapshotLocked()
		s.mu.RUnlock()
		fn(snap)
	}
}
