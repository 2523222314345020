package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/repository"
)

// OrderSort orders by date
type OrderSort string

const (
	SortNewest OrderSort = "newest"
	SortOldest OrderSort = "oldest"
)

// ParseOrderSort defaults to newest first
func ParseOrderSort(s string) OrderSort {
	if strings.EqualFold(strings.TrimSpace(s), string(SortOldest)) {
		return SortOldest
	}
	return SortNewest
}

// OrderQuery filters the customer's own orders; an empty Status means all
type OrderQuery struct {
	Status domain.OrderStatus
	Sort   OrderSort
}

// OrderService is the customer-facing order history
type OrderService struct {
	session *SessionService
	users   repository.UserRepository
	log     logger.Logger
	now     func() time.Time
	tracer  trace.Tracer
}

func NewOrderService(session *SessionService, users repository.UserRepository, log logger.Logger) *OrderService {
	return &OrderService{
		session: session,
		users:   users,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		tracer:  otel.Tracer(tracerName),
	}
}

// MyOrders reads the signed-in user's orders from the API
func (s *OrderService) MyOrders(ctx context.Context, q OrderQuery) ([]domain.Order, error) {
	uid := s.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return FilterOrders(u.Orders, q), nil
}

// FilterOrders applies a status filter and a stable date sort to a copy
func FilterOrders(orders []domain.Order, q OrderQuery) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		out = append(out, o.Clone())
	}
	sortByDate(out, func(i int) time.Time { return out[i].Date }, q.Sort)
	return out
}

func sortByDate[T any](s []T, date func(i int) time.Time, order OrderSort) {
	sort.SliceStable(s, func(i, j int) bool {
		if order == SortOldest {
			return date(i).Before(date(j))
		}
		return date(i).After(date(j))
	})
}

// CountByStatus tallies orders per status
func CountByStatus(orders []domain.Order) map[domain.OrderStatus]int {
	counts := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, st := range domain.OrderStatuses {
		counts[st] = 0
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

// CancelMyOrder cancels a pending order by re-reading and rewriting the whole order list
func (s *OrderService) CancelMyOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	uid := s.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	ctx, span := s.tracer.Start(ctx, "orders.cancel", trace.WithAttributes(
		attribute.String("user.id", uid),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	orders := cloneOrders(u.Orders)
	i := indexOrder(orders, orderID)
	if i < 0 {
		return nil, fmt.Errorf("order %s: %w", orderID, repository.ErrNotFound)
	}
	if err := orders[i].CancelByCustomer(s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if _, err := s.users.Patch(ctx, uid, repository.UserPatch{Orders: &orders}); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save orders: %w", err)
	}
	if err := s.session.Mirror(ctx, uid, func(u *domain.User) { u.Orders = cloneOrders(orders) }); err != nil {
		s.log.Warn("failed to cache orders", "user", uid, "error", err)
	}
	s.log.Info("order cancelled", "user", uid, "order", orderID, "by", domain.CancelledByUser)
	cancelled := orders[i].Clone()
	return &cancelled, nil
}

func indexOrder(orders []domain.Order, id string) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
