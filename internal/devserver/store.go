package devserver

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// ErrNotFound is returned for any missing record.
var ErrNotFound = errors.New("devserver: not found")

// PaymentRecord is a payment plus the simulator's bookkeeping.
type PaymentRecord struct {
	Payment             domain.Payment `json:"payment"`
	OccupationRequestID string         `json:"occupation_request_id"`
	VerifyCount         int            `json:"verify_count"`
}

// Store holds the simulator's state. Implementations must be safe for
// concurrent handlers.
type Store interface {
	PutOccupation(ctx context.Context, o domain.OccupationRequest) error
	GetOccupation(ctx context.Context, id string) (*domain.OccupationRequest, error)
	ListOccupations(ctx context.Context) ([]domain.OccupationRequest, error)

	PutPayment(ctx context.Context, rec PaymentRecord) error
	GetPayment(ctx context.Context, id string) (*PaymentRecord, error)
	ListPayments(ctx context.Context) ([]PaymentRecord, error)

	PutEscrow(ctx context.Context, e domain.Escrow) error
	GetEscrow(ctx context.Context, id string) (*domain.Escrow, error)

	PutDispute(ctx context.Context, d domain.Dispute) error
	GetDispute(ctx context.Context, id string) (*domain.Dispute, error)
	ListDisputes(ctx context.Context) ([]domain.Dispute, error)

	PutTransaction(ctx context.Context, t domain.Transaction) error
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	PutMethod(ctx context.Context, m domain.SavedPaymentMethod) error
	DeleteMethod(ctx context.Context, id string) error
	ListMethods(ctx context.Context) ([]domain.SavedPaymentMethod, error)
}

// MemoryStore is the default single-process store.
type MemoryStore struct {
	mu           sync.RWMutex
	occupations  map[string]domain.OccupationRequest
	payments     map[string]PaymentRecord
	escrows      map[string]domain.Escrow
	disputes     map[string]domain.Dispute
	transactions map[string]domain.Transaction
	methods      map[string]domain.SavedPaymentMethod
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		occupations:  map[string]domain.OccupationRequest{},
		payments:     map[string]PaymentRecord{},
		escrows:      map[string]domain.Escrow{},
		disputes:     map[string]domain.Dispute{},
		transactions: map[string]domain.Transaction{},
		methods:      map[string]domain.SavedPaymentMethod{},
	}
}

func (s *MemoryStore) PutOccupation(_ context.Context, o domain.OccupationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.occupations[o.ID] = o
	return nil
}

func (s *MemoryStore) GetOccupation(_ context.Context, id string) (*domain.OccupationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.occupations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *MemoryStore) ListOccupations(_ context.Context) ([]domain.OccupationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OccupationRequest, 0, len(s.occupations))
	for _, o := range s.occupations {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) PutPayment(_ context.Context, rec PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[rec.Payment.ID] = rec
	return nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id string) (*PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) ListPayments(_ context.Context) ([]PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PaymentRecord, 0, len(s.payments))
	for _, rec := range s.payments {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Payment.CreatedAt.Before(out[j].Payment.CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) PutEscrow(_ context.Context, e domain.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.escrows[e.ID] = e
	return nil
}

func (s *MemoryStore) GetEscrow(_ context.Context, id string) (*domain.Escrow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.escrows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) PutDispute(_ context.Context, d domain.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disputes[d.ID] = d
	return nil
}

func (s *MemoryStore) GetDispute(_ context.Context, id string) (*domain.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.disputes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) ListDisputes(_ context.Context) ([]domain.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Dispute, 0, len(s.disputes))
	for _, d := range s.disputes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) PutTransaction(_ context.Context, t domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) PutMethod(_ context.Context, m domain.SavedPaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.IsDefault {
		for id, existing := range s.methods {
			existing.IsDefault = false
			s.methods[id] = existing
		}
	}
	s.methods[m.ID] = m
	return nil
}

func (s *MemoryStore) DeleteMethod(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[id]; !ok {
		return ErrNotFound
	}
	delete(s.methods, id)
	return nil
}

func (s *MemoryStore) ListMethods(_ context.Context) ([]domain.SavedPaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SavedPaymentMethod, 0, len(s.methods))
	for _, m := range s.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
