package security

import (
	"testing"
	"time"
)

func newTestManager() *JWTManager {
	return NewJWTManager("kiraye-devserver", "kiraye-cli", "access-secret-0123456789abcdef", "refresh-secret-0123456789abcdef")
}

func TestAccessTokenRoundtrip(t *testing.T) {
	m := newTestManager()
	raw, err := m.SignAccessToken("user-1", "demo", true, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := m.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "demo" || !claims.IsStaff {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Fatalf("token type = %q", claims.TokenType)
	}
}

func TestRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	m := newTestManager()
	raw, err := m.SignRefreshToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.ParseAccessToken(raw); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := newTestManager()
	raw, err := m.SignAccessToken("user-1", "demo", false, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.ParseAccessToken(raw); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestWrongIssuerRejected(t *testing.T) {
	other := NewJWTManager("someone-else", "kiraye-cli", "access-secret-0123456789abcdef", "refresh-secret-0123456789abcdef")
	raw, err := other.SignAccessToken("user-1", "demo", false, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestManager().ParseAccessToken(raw); err == nil {
		t.Fatal("token from another issuer accepted")
	}
}

func TestTamperedSecretRejected(t *testing.T) {
	m := newTestManager()
	raw, err := m.SignAccessToken("user-1", "demo", false, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	forged := NewJWTManager("kiraye-devserver", "kiraye-cli", "a-different-secret-entirely!!", "refresh-secret-0123456789abcdef")
	if _, err := forged.ParseAccessToken(raw); err == nil {
		t.Fatal("token verified against the wrong secret")
	}
}
