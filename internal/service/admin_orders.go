package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/repository"
)

// AdminOrder is an order annotated with its owner
type AdminOrder struct {
	domain.Order
	UserID        string `json:"userId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
}

// AdminOrderQuery searches order ids and customer emails
type AdminOrderQuery struct {
	Search string
	Status domain.OrderStatus
	Sort   OrderSort
}

// AdminOrderService is the store-wide order view
type AdminOrderService struct {
	session *SessionService
	users   repository.UserRepository
	log     logger.Logger
	now     func() time.Time
	tracer  trace.Tracer
}

func NewAdminOrderService(session *SessionService, users repository.UserRepository, log logger.Logger) *AdminOrderService {
	return &AdminOrderService{
		session: session,
		users:   users,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		tracer:  otel.Tracer(tracerName),
	}
}

// AllOrders flat-maps every user's orders
func (s *AdminOrderService) AllOrders(ctx context.Context, q AdminOrderQuery) ([]AdminOrder, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	var out []AdminOrder
	for _, o := range flattenOrders(users) {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.ID), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), needle) {
			continue
		}
		out = append(out, o)
	}
	sortByDate(out, func(i int) time.Time { return out[i].Date }, q.Sort)
	return out, nil
}

func flattenOrders(users []domain.User) []AdminOrder {
	var out []AdminOrder
	for _, u := range users {
		for _, o := range u.Orders {
			ao := AdminOrder{Order: o.Clone(), UserID: u.ID, CustomerName: u.Username, CustomerEmail: u.Email}
			if ao.PaymentMethod == "" {
				ao.PaymentMethod = domain.PaymentUPI
			}
			out = append(out, ao)
		}
	}
	return out
}

// SetStatus rewrites one order of one user. Cancelled orders cannot change,
// and cancelling stamps the administrator.
func (s *AdminOrderService) SetStatus(ctx context.Context, userID, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "admin.orders.set_status", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("order.id", orderID),
		attribute.String("order.next_status", string(next)),
	))
	defer span.End()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	orders := cloneOrders(u.Orders)
	i := indexOrder(orders, orderID)
	if i < 0 {
		return nil, fmt.Errorf("order %s: %w", orderID, repository.ErrNotFound)
	}
	if err := orders[i].Transition(next, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if _, err := s.users.Patch(ctx, userID, repository.UserPatch{Orders: &orders}); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save orders: %w", err)
	}
	if err := s.session.Mirror(ctx, userID, func(u *domain.User) { u.Orders = cloneOrders(orders) }); err != nil {
		s.log.Warn("failed to cache orders", "user", userID, "error", err)
	}
	s.log.Info("order status changed", "user", userID, "order", orderID, "status", orders[i].Status)
	out := orders[i].Clone()
	return &out, nil
}
