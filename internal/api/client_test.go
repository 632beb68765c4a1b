package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]domain.Payment{})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/api/", WithTokenSource(TokenSourceFunc(func() string { return "tok-123" })))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.ListPayments(context.Background()); err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestClientOmitsHeaderWhenTokenEmpty(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode([]domain.Payment{})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/api/", WithTokenSource(TokenSourceFunc(func() string { return "" })))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.ListPayments(context.Background()); err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if sawAuth {
		t.Fatal("empty token must not produce an Authorization header")
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "PAYMENT_NOT_FOUND",
			"message": "Paiement introuvable",
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetPayment(context.Background(), "pay-missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "PAYMENT_NOT_FOUND" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if apiErr.Message != "Paiement introuvable" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestClientUnauthorizedIsJustAnError(t *testing.T) {
	// A 401 surfaces as an APIError like any other failure; the session
	// layer decides what to do about it, not the transport.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "TOKEN_INVALID"})
	}))
	defer srv.Close()

	token := "stale"
	client, err := NewClient(srv.URL+"/api/", WithTokenSource(TokenSourceFunc(func() string { return token })))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.ListPayments(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if token != "stale" {
		t.Fatal("client must not touch the token source on 401")
	}
}

func TestInitiatePaymentSendsIdempotencyKey(t *testing.T) {
	keys := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			t.Error("initiate payment without Idempotency-Key")
		}
		keys[key] = true
		var req InitiatePaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.PaymentPhone != "622112233" {
			t.Errorf("phone = %q", req.PaymentPhone)
		}
		_ = json.NewEncoder(w).Encode(InitiatePaymentResponse{Success: true, PaymentID: "pay-1"})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	req := InitiatePaymentRequest{
		OccupationRequestID: "occ-1",
		PaymentMethod:       domain.MethodOrangeMoney,
		PaymentPhone:        "622112233",
	}
	for i := 0; i < 2; i++ {
		if _, err := client.InitiatePayment(context.Background(), req); err != nil {
			t.Fatalf("initiate %d: %v", i, err)
		}
	}
	if len(keys) != 2 {
		t.Fatalf("got %d distinct idempotency keys over 2 calls, want 2", len(keys))
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient("://not-a-url"); err == nil {
		t.Fatal("expected error for malformed base URL")
	}
}

func TestClientTransportIsInstrumented(t *testing.T) {
	c, err := NewClient("http://localhost/api/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, ok := c.http.Transport.(*otelhttp.Transport); !ok {
		t.Fatalf("transport = %T, want *otelhttp.Transport", c.http.Transport)
	}

	// A caller-supplied http.Client gets wrapped too, once.
	custom := &http.Client{}
	c, err = NewClient("http://localhost/api/", WithHTTPClient(custom))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	wrapped, ok := c.http.Transport.(*otelhttp.Transport)
	if !ok {
		t.Fatalf("transport = %T, want *otelhttp.Transport", c.http.Transport)
	}
	c, err = NewClient("http://localhost/api/", WithHTTPClient(custom))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.http.Transport != http.RoundTripper(wrapped) {
		t.Fatal("already-instrumented transport must not be wrapped again")
	}
}
