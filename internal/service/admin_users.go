package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/repository"
)

// RecentOrderLimit is how many orders the user detail view shows
const RecentOrderLimit = 5

// UserSummary is one row of the admin user table
type UserSummary struct {
	User         domain.User
	TotalSpent   decimal.Decimal
	OrderCount   int
	RecentOrders []domain.Order
}

// UserStats are the counters above the admin user table
type UserStats struct {
	Total      int
	Blocked    int
	WithOrders int
}

type AdminUserService struct {
	session *SessionService
	users   repository.UserRepository
	log     logger.Logger
	now     func() time.Time
}

func NewAdminUserService(session *SessionService, users repository.UserRepository, log logger.Logger) *AdminUserService {
	return &AdminUserService{
		session: session,
		users:   users,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns users whose username or email contains search, plus stats over all users
func (s *AdminUserService) List(ctx context.Context, search string) ([]UserSummary, UserStats, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, UserStats{}, err
	}
	all, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, UserStats{}, fmt.Errorf("load users: %w", err)
	}
	stats := UserStats{Total: len(all)}
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]UserSummary, 0, len(all))
	for _, u := range all {
		if u.Blocked {
			stats.Blocked++
		}
		if len(u.Orders) > 0 {
			stats.WithOrders++
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Username), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		out = append(out, Summarize(u))
	}
	return out, stats, nil
}

// Summarize computes spend and recent orders for one user
func Summarize(u domain.User) UserSummary {
	return UserSummary{
		User:         u,
		TotalSpent:   TotalSpent(u.Orders),
		OrderCount:   len(u.Orders),
		RecentOrders: RecentOrders(u.Orders, RecentOrderLimit),
	}
}

// TotalSpent sums totals of orders that were not cancelled
func TotalSpent(orders []domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		total = total.Add(o.TotalAmount)
	}
	return total
}

// RecentOrders returns up to limit orders, newest first
func RecentOrders(orders []domain.Order, limit int) []domain.Order {
	out := cloneOrders(orders)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Get returns the detail view of one user
func (s *AdminUserService) Get(ctx context.Context, id string) (*UserSummary, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	sum := Summarize(*u)
	return &sum, nil
}

// SetBlocked flips the blocked flag; admin accounts are protected
func (s *AdminUserService) SetBlocked(ctx context.Context, id string, blocked bool) (*domain.User, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if isProtectedAccount(u) {
		return nil, ErrProtectedAccount
	}
	now := s.now()
	patch := repository.UserPatch{Blocked: &blocked, UpdatedAt: &now}
	if !blocked {
		patch.LegacyBlocked = &blocked
	}
	out, err := s.users.Patch(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info("user block flag changed", "user", id, "blocked", blocked)
	return out, nil
}

func isProtectedAccount(u *domain.User) bool {
	return u.IsAdmin() || u.Username == "admin"
}
