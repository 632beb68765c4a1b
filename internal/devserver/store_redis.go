package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// RedisStore keeps simulator state in redis so several processes (or demo
// restarts) share one world. Records are JSON blobs; per-kind sets hold the
// IDs for listing.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "kiraye_dev"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

func (s *RedisStore) setKey(kind string) string {
	return fmt.Sprintf("%s:%s", s.prefix, kind)
}

func (s *RedisStore) put(ctx context.Context, kind, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(kind, id), payload, 0)
	pipe.SAdd(ctx, s.setKey(kind), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) get(ctx context.Context, kind, id string, out any) error {
	raw, err := s.client.Get(ctx, s.key(kind, id)).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *RedisStore) members(ctx context.Context, kind string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.setKey(kind)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) PutOccupation(ctx context.Context, o domain.OccupationRequest) error {
	return s.put(ctx, "occupation", o.ID, o)
}

func (s *RedisStore) GetOccupation(ctx context.Context, id string) (*domain.OccupationRequest, error) {
	var o domain.OccupationRequest
	if err := s.get(ctx, "occupation", id, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *RedisStore) ListOccupations(ctx context.Context) ([]domain.OccupationRequest, error) {
	ids, err := s.members(ctx, "occupation")
	if err != nil {
		return nil, err
	}
	out := make([]domain.OccupationRequest, 0, len(ids))
	for _, id := range ids {
		o, err := s.GetOccupation(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *RedisStore) PutPayment(ctx context.Context, rec PaymentRecord) error {
	return s.put(ctx, "payment", rec.Payment.ID, rec)
}

func (s *RedisStore) GetPayment(ctx context.Context, id string) (*PaymentRecord, error) {
	var rec PaymentRecord
	if err := s.get(ctx, "payment", id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) ListPayments(ctx context.Context) ([]PaymentRecord, error) {
	ids, err := s.members(ctx, "payment")
	if err != nil {
		return nil, err
	}
	out := make([]PaymentRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetPayment(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Payment.CreatedAt.Before(out[j].Payment.CreatedAt)
	})
	return out, nil
}

func (s *RedisStore) PutEscrow(ctx context.Context, e domain.Escrow) error {
	return s.put(ctx, "escrow", e.ID, e)
}

func (s *RedisStore) GetEscrow(ctx context.Context, id string) (*domain.Escrow, error) {
	var e domain.Escrow
	if err := s.get(ctx, "escrow", id, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *RedisStore) PutDispute(ctx context.Context, d domain.Dispute) error {
	return s.put(ctx, "dispute", d.ID, d)
}

func (s *RedisStore) GetDispute(ctx context.Context, id string) (*domain.Dispute, error) {
	var d domain.Dispute
	if err := s.get(ctx, "dispute", id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RedisStore) ListDisputes(ctx context.Context) ([]domain.Dispute, error) {
	ids, err := s.members(ctx, "dispute")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Dispute, 0, len(ids))
	for _, id := range ids {
		d, err := s.GetDispute(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *RedisStore) PutTransaction(ctx context.Context, t domain.Transaction) error {
	return s.put(ctx, "transaction", t.ID, t)
}

func (s *RedisStore) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := s.get(ctx, "transaction", id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *RedisStore) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ids, err := s.members(ctx, "transaction")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTransaction(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *RedisStore) PutMethod(ctx context.Context, m domain.SavedPaymentMethod) error {
	if m.IsDefault {
		existing, err := s.ListMethods(ctx)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.ID == m.ID || !other.IsDefault {
				continue
			}
			other.IsDefault = false
			if err := s.put(ctx, "method", other.ID, other); err != nil {
				return err
			}
		}
	}
	return s.put(ctx, "method", m.ID, m)
}

func (s *RedisStore) DeleteMethod(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key("method", id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.client.SRem(ctx, s.setKey("method"), id).Err()
}

func (s *RedisStore) ListMethods(ctx context.Context) ([]domain.SavedPaymentMethod, error) {
	ids, err := s.members(ctx, "method")
	if err != nil {
		return nil, err
	}
	out := make([]domain.SavedPaymentMethod, 0, len(ids))
	for _, id := range ids {
		var m domain.SavedPaymentMethod
		err := s.get(ctx, "method", id, &m)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
