package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

func TestAdminUsers_ListAndStats(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.addUser(t, domain.User{ID: "c1", Username: "neo", Email: "neo@matrix.io", Orders: []domain.Order{
		orderAt("ORD-1", domain.OrderStatusDelivered, 1000, 1),
		orderAt("ORD-2", domain.OrderStatusCancelled, 700, 2),
		orderAt("ORD-3", domain.OrderStatusPending, 15, 3),
	}})
	f.addUser(t, domain.User{ID: "c2", Username: "smith", Email: "agent@matrix.io", Blocked: true})
	f.signInAdmin(t)

	list, stats, err := f.adminUsers.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || stats.Total != 3 || stats.Blocked != 1 || stats.WithOrders != 1 {
		t.Fatalf("unexpected stats %+v (%d rows)", stats, len(list))
	}
	if !list[0].TotalSpent.Equal(inr(1015)) || list[0].OrderCount != 3 {
		t.Fatalf("spend should skip cancelled orders: %+v", list[0])
	}
	if list[0].RecentOrders[0].ID != "ORD-3" {
		t.Fatalf("recent orders should be newest first")
	}

	list, stats, _ = f.adminUsers.List(ctx, "AGENT")
	if len(list) != 1 || list[0].User.ID != "c2" || stats.Total != 3 {
		t.Fatalf("search failed: %+v", list)
	}
}

func TestAdminUsers_RecentOrdersLimit(t *testing.T) {
	var orders []domain.Order
	for day := 1; day <= 7; day++ {
		orders = append(orders, orderAt(fmt.Sprintf("ORD-%d", day), domain.OrderStatusPending, 10, day))
	}
	recent := RecentOrders(orders, RecentOrderLimit)
	if len(recent) != RecentOrderLimit || recent[0].ID != "ORD-7" || recent[4].ID != "ORD-3" {
		t.Fatalf("unexpected recent orders: %v", ids(recent))
	}
}

func TestAdminUsers_Block(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.addUser(t, domain.User{ID: "c1", Username: "neo", Email: "neo@matrix.io", Password: "secret1"})
	admin := f.signInAdmin(t)

	u, err := f.adminUsers.SetBlocked(ctx, "c1", true)
	if err != nil || !u.Blocked {
		t.Fatalf("block: %v", err)
	}
	if _, err := f.adminUsers.SetBlocked(ctx, admin.ID, true); !errors.Is(err, ErrProtectedAccount) {
		t.Fatalf("admin must be protected, got %v", err)
	}
	detail, err := f.adminUsers.Get(ctx, "c1")
	if err != nil || !detail.User.Blocked {
		t.Fatalf("detail: %v", err)
	}

	// blocked user can no longer sign in
	f.session.Logout(ctx)
	if _, err := f.session.Login(ctx, "neo@matrix.io", "secret1"); !errors.Is(err, ErrAccountBlocked) {
		t.Fatalf("expected blocked login, got %v", err)
	}

	if _, err := f.session.Login(ctx, admin.Email, admin.Password); err != nil {
		t.Fatal(err)
	}
	if u, err := f.adminUsers.SetBlocked(ctx, "c1", false); err != nil || u.Blocked {
		t.Fatalf("unblock: %v", err)
	}
}

// recordingUsers keeps the last patch it forwarded
type recordingUsers struct {
	*repository.MemoryUsers
	last repository.UserPatch
}

func (r *recordingUsers) Patch(ctx context.Context, id string, patch repository.UserPatch) (*domain.User, error) {
	r.last = patch
	return r.MemoryUsers.Patch(ctx, id, patch)
}

func TestAdminUsers_UnblockClearsLegacyFlag(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.addUser(t, domain.User{ID: "c1", Username: "neo", Email: "neo@matrix.io", Password: "secret1"})
	f.signInAdmin(t)
	rec := &recordingUsers{MemoryUsers: f.users}
	f.adminUsers.users = rec

	if _, err := f.adminUsers.SetBlocked(ctx, "c1", true); err != nil {
		t.Fatalf("block: %v", err)
	}
	body, _ := json.Marshal(rec.last)
	if !strings.Contains(string(body), `"isBlocked":true`) || strings.Contains(string(body), `"isBlock":`) {
		t.Fatalf("block patch = %s", body)
	}

	if _, err := f.adminUsers.SetBlocked(ctx, "c1", false); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	body, _ = json.Marshal(rec.last)
	if !strings.Contains(string(body), `"isBlocked":false`) || !strings.Contains(string(body), `"isBlock":false`) {
		t.Fatalf("unblock patch should clear both flags: %s", body)
	}
}
