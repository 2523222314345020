package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// DashboardRecentLimit is the length of the recent orders table
const DashboardRecentLimit = 5

// DayStat aggregates orders placed on one calendar day (UTC)
type DayStat struct {
	Day     string
	Orders  int
	Revenue decimal.Decimal
}

// Dashboard is the admin overview
type Dashboard struct {
	Users        int
	Products     int
	Orders       int
	Revenue      decimal.Decimal
	Daily        []DayStat
	RecentOrders []AdminOrder
}

// RevenueText renders revenue in rupees
func (d Dashboard) RevenueText() string { return domain.FormatINR(d.Revenue) }

type DashboardService struct {
	session  *SessionService
	users    repository.UserRepository
	products repository.ProductRepository
}

func NewDashboardService(session *SessionService, users repository.UserRepository, products repository.ProductRepository) *DashboardService {
	return &DashboardService{session: session, users: users, products: products}
}

func (s *DashboardService) Overview(ctx context.Context) (*Dashboard, error) {
	if err := requireAdmin(s.session); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	products, err := s.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	orders := flattenOrders(users)
	d := BuildDashboard(orders)
	d.Users = len(users)
	d.Products = len(products)
	return d, nil
}

// BuildDashboard computes order totals; revenue skips cancelled orders
func BuildDashboard(orders []AdminOrder) *Dashboard {
	d := &Dashboard{Orders: len(orders), Revenue: decimal.Zero}
	byDay := make(map[string]*DayStat)
	for _, o := range orders {
		day := o.Date.UTC().Format("2006-01-02")
		ds, ok := byDay[day]
		if !ok {
			ds = &DayStat{Day: day, Revenue: decimal.Zero}
			byDay[day] = ds
		}
		ds.Orders++
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		d.Revenue = d.Revenue.Add(o.TotalAmount)
		ds.Revenue = ds.Revenue.Add(o.TotalAmount)
	}
	for _, ds := range byDay {
		d.Daily = append(d.Daily, *ds)
	}
	sort.Slice(d.Daily, func(i, j int) bool { return d.Daily[i].Day < d.Daily[j].Day })

	recent := append([]AdminOrder(nil), orders...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > DashboardRecentLimit {
		recent = recent[:DashboardRecentLimit]
	}
	d.RecentOrders = recent
	return d
}
