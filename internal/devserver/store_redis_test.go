package devserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test")
}

func TestRedisStorePaymentRoundtrip(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPayment(ctx, "pay-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing payment: err = %v, want ErrNotFound", err)
	}

	rec := PaymentRecord{
		Payment: domain.Payment{
			ID:            "pay-1",
			Status:        domain.PaymentPending,
			PaymentMethod: domain.MethodOrangeMoney,
			Amount:        1500000,
			CreatedAt:     time.Now().UTC(),
		},
		OccupationRequestID: "occ-1",
		VerifyCount:         2,
	}
	if err := s.PutPayment(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.GetPayment(ctx, "pay-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VerifyCount != 2 || got.Payment.Amount != 1500000 || got.OccupationRequestID != "occ-1" {
		t.Fatalf("got %+v", got)
	}

	list, err := s.ListPayments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Payment.ID != "pay-1" {
		t.Fatalf("list = %+v", list)
	}
}

func TestRedisStoreListPaymentsOrderedByCreation(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"pay-c", "pay-a", "pay-b"} {
		rec := PaymentRecord{Payment: domain.Payment{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}}
		if err := s.PutPayment(ctx, rec); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	list, err := s.ListPayments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"pay-c", "pay-a", "pay-b"}
	for i, rec := range list {
		if rec.Payment.ID != want[i] {
			t.Fatalf("position %d = %s, want %s", i, rec.Payment.ID, want[i])
		}
	}
}

func TestRedisStoreDefaultMethodIsExclusive(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	if err := s.PutMethod(ctx, domain.SavedPaymentMethod{ID: "pm-1", Method: domain.MethodOrangeMoney, IsDefault: true, CreatedAt: base}); err != nil {
		t.Fatalf("put pm-1: %v", err)
	}
	if err := s.PutMethod(ctx, domain.SavedPaymentMethod{ID: "pm-2", Method: domain.MethodWave, IsDefault: true, CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("put pm-2: %v", err)
	}

	methods, err := s.ListMethods(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
			if m.ID != "pm-2" {
				t.Fatalf("default = %s, want pm-2", m.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("%d defaults, want 1", defaults)
	}
}

func TestRedisStoreDeleteMethod(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()

	if err := s.DeleteMethod(ctx, "pm-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: err = %v, want ErrNotFound", err)
	}
	if err := s.PutMethod(ctx, domain.SavedPaymentMethod{ID: "pm-1", Method: domain.MethodMTNMoney}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.DeleteMethod(ctx, "pm-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	methods, err := s.ListMethods(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(methods) != 0 {
		t.Fatalf("methods = %+v after delete", methods)
	}
}

func TestServerRunsOnRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	srv := NewServer(Options{Store: NewRedisStore(client, "test"), VerifyAfter: 1})
	if err := srv.SeedDemoData(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	occ, err := srv.store.GetOccupation(context.Background(), "occ-123")
	if err != nil {
		t.Fatalf("seeded occupation not in redis: %v", err)
	}
	if occ.PaymentAmount != 1500000 {
		t.Fatalf("seeded amount = %d", occ.PaymentAmount)
	}
}
