package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/remotesync"
	"storefront/internal/repository"
)

// DefaultCODFee is the flat cash-on-delivery convenience fee
var DefaultCODFee = decimal.NewFromInt(15)

const tracerName = "storefront/internal/service"

// PaymentInput carries the method-specific checkout fields
type PaymentInput struct {
	Method        string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
	CardNumber    string `json:"cardNumber"`
	Expiry        string `json:"expiry"`
	CVV           string `json:"cvv"`
	CardName      string `json:"cardName"`
}

// CheckoutForm is everything the confirm step submits. Non-empty Address
// fields are laid over the saved address.
type CheckoutForm struct {
	Address     domain.Address
	EditAddress bool
	Payment     PaymentInput
}

// Totals of a checkout quote
type Totals struct {
	Subtotal decimal.Decimal
	Fee      decimal.Decimal
	Total    decimal.Decimal
}

// CheckoutResult is a placed order plus the pending cart clear
type CheckoutResult struct {
	Order    domain.Order
	Totals   Totals
	CartSync *remotesync.Intent
}

type CheckoutService struct {
	session *SessionService
	cart    *CartService
	users   repository.UserRepository
	log     logger.Logger
	codFee  decimal.Decimal
	now     func() time.Time
	tracer  trace.Tracer
}

func NewCheckoutService(session *SessionService, cart *CartService, users repository.UserRepository, log logger.Logger, codFee decimal.Decimal) *CheckoutService {
	return &CheckoutService{
		session: session,
		cart:    cart,
		users:   users,
		log:     log,
		codFee:  codFee,
		now:     func() time.Time { return time.Now().UTC() },
		tracer:  otel.Tracer(tracerName),
	}
}

type addressRules struct {
	FullName     string `json:"fullName" validate:"notblank"`
	Address      string `json:"address" validate:"notblank"`
	City         string `json:"city" validate:"notblank"`
	Pincode      string `json:"pincode" validate:"notblank,len=6"`
	MobileNumber string `json:"mobileNumber" validate:"notblank,len=10"`
}

type upiRules struct {
	TransactionID string `json:"transactionId" validate:"len=35,alphanum"`
}

type cardRules struct {
	CardNumber string `json:"cardNumber" validate:"len=16,digits"`
	Expiry     string `json:"expiry" validate:"expiry"`
	CVV        string `json:"cvv" validate:"len=3,digits"`
	CardName   string `json:"cardName" validate:"notblank"`
}

var checkoutMessages = map[string]string{
	"fullName":      "Please enter your full name",
	"address":       "Please enter your address",
	"city":          "Please enter your city",
	"pincode":       "Please enter a valid 6-digit pincode",
	"mobileNumber":  "Please enter a valid 10-digit mobile number",
	"paymentMethod": "Please select a payment method",
	"transactionId": "Invalid Transaction ID (35 alphanumeric characters only)",
	"cardNumber":    "Card number must be 16 digits",
	"expiry":        "Invalid expiry (MM/YY)",
	"cvv":           "Invalid CVV (3 digits)",
	"cardName":      "Enter cardholder name",
}

// ValidateAddress checks the shipping address fields in form order
func ValidateAddress(a domain.Address) error {
	return validateForm(addressRules{
		FullName:     a.FullName,
		Address:      a.Address,
		City:         a.City,
		Pincode:      a.Pincode,
		MobileNumber: a.MobileNumber,
	}, checkoutMessages)
}

// ValidatePayment checks the method and its method-specific fields
func ValidatePayment(p PaymentInput) (domain.PaymentMethod, error) {
	method, ok := domain.ParsePaymentMethod(p.Method)
	if !ok {
		return "", &ValidationError{Field: "paymentMethod", Message: checkoutMessages["paymentMethod"]}
	}
	switch method {
	case domain.PaymentUPI:
		return method, validateForm(upiRules{TransactionID: p.TransactionID}, checkoutMessages)
	case domain.PaymentCard:
		return method, validateForm(cardRules{
			CardNumber: p.CardNumber,
			Expiry:     p.Expiry,
			CVV:        p.CVV,
			CardName:   p.CardName,
		}, checkoutMessages)
	}
	return method, nil
}

// Quote prices the current cart for a payment method
func (s *CheckoutService) Quote(method domain.PaymentMethod) Totals {
	sub := s.cart.Subtotal()
	fee := decimal.Zero
	if method == domain.PaymentCOD {
		fee = s.codFee
	}
	return Totals{Subtotal: sub, Fee: fee, Total: sub.Add(fee)}
}

// SavedAddress is the user's address when every field is filled in
func (s *CheckoutService) SavedAddress() (domain.Address, bool) {
	u := s.session.Current()
	if u == nil || !u.Address.IsComplete() {
		return domain.Address{}, false
	}
	return *u.Address, true
}

// PlaceOrder validates the form, writes the address when needed, appends the
// order to a fresh copy of the user's orders and clears the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, form CheckoutForm) (*CheckoutResult, error) {
	uid := s.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var base *domain.Address
	if u := s.session.Current(); u != nil {
		base = u.Address
	}
	hasSaved := base.IsComplete()
	addr := base.Overlay(form.Address)
	if err := ValidateAddress(addr); err != nil {
		return nil, err
	}
	method, err := ValidatePayment(form.Payment)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "checkout.place_order", trace.WithAttributes(
		attribute.String("user.id", uid),
		attribute.String("payment.method", string(method)),
		attribute.Int("cart.lines", len(items)),
	))
	defer span.End()

	if form.EditAddress || !hasSaved {
		s.writeAddress(ctx, uid, addr)
	}

	totals := s.Quote(method)
	order, err := s.appendOrder(ctx, uid, items, addr, method, form.Payment, totals)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order write failed")
		s.log.Error("checkout failed", "user", uid, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOrderFailed, err)
	}
	span.SetAttributes(attribute.String("order.id", order.ID))

	cartSync, err := s.cart.ClearCart(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("order placed", "user", uid, "order", order.ID, "total", totals.Total.String())
	return &CheckoutResult{Order: order, Totals: totals, CartSync: cartSync}, nil
}

// writeAddress overwrites the durable address; a failure is logged and checkout continues
func (s *CheckoutService) writeAddress(ctx context.Context, uid string, addr domain.Address) {
	now := s.now()
	if _, err := s.users.Patch(ctx, uid, repository.UserPatch{Address: &addr, UpdatedAt: &now}); err != nil {
		s.log.Warn("failed to update address", "user", uid, "error", err)
		return
	}
	if err := s.session.Mirror(ctx, uid, func(u *domain.User) { u.Address = &addr }); err != nil {
		s.log.Warn("failed to cache address", "user", uid, "error", err)
	}
}

func (s *CheckoutService) appendOrder(ctx context.Context, uid string, items []domain.CartLineItem, addr domain.Address, method domain.PaymentMethod, p PaymentInput, totals Totals) (domain.Order, error) {
	latest, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return domain.Order{}, err
	}
	now := s.now()
	order := domain.Order{
		ID:              domain.NewOrderID(now),
		Date:            now,
		Items:           freezeItems(items),
		TotalAmount:     totals.Total,
		Status:          domain.OrderStatusPending,
		PaymentMethod:   method,
		PaymentDetails:  paymentDetails(method, p, totals.Fee),
		ShippingAddress: &addr,
	}
	orders := append(cloneOrders(latest.Orders), order)
	patched, err := s.users.Patch(ctx, uid, repository.UserPatch{Orders: &orders, UpdatedAt: &now})
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.session.Mirror(ctx, uid, func(u *domain.User) { u.Orders = cloneOrders(patched.Orders) }); err != nil {
		s.log.Warn("failed to cache orders", "user", uid, "error", err)
	}
	return order, nil
}

func freezeItems(items []domain.CartLineItem) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, li := range items {
		out[i] = domain.OrderItem{
			ID:       li.ID,
			Name:     li.Name,
			Price:    li.Price,
			Quantity: li.Quantity,
			Image:    li.Image,
			Category: li.Category,
		}
	}
	return out
}

func paymentDetails(method domain.PaymentMethod, p PaymentInput, fee decimal.Decimal) domain.PaymentDetails {
	switch method {
	case domain.PaymentUPI:
		return domain.PaymentDetails{TransactionID: p.TransactionID}
	case domain.PaymentCard:
		return domain.PaymentDetails{CardNumber: MaskCardNumber(p.CardNumber), CardName: p.CardName}
	case domain.PaymentCOD:
		return domain.PaymentDetails{ConvenienceFee: &fee}
	}
	return domain.PaymentDetails{}
}

// MaskCardNumber keeps only the last four digits
func MaskCardNumber(n string) string {
	last := n
	if len(n) > 4 {
		last = n[len(n)-4:]
	}
	return "XXXX-XXXX-XXXX-" + last
}

func cloneOrders(os []domain.Order) []domain.Order {
	out := make([]domain.Order, len(os))
	for i, o := range os {
		out[i] = o.Clone()
	}
	return out
}
