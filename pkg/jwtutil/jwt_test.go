package jwtutil

import (
	"testing"

	"stock-service/pkg/config"
)

func TestTokenRoundTrip(t *testing.T) {
	util := New(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := util.GenerateToken("shop@example.com", "Shop")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := util.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Email != "shop@example.com" || claims.EntrepriseName != "Shop" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := New(&config.JWTConfig{SigningKey: "issuer-key", ExpirationHours: 1})
	verifier := New(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})

	token, err := issuer.GenerateToken("shop@example.com", "Shop")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different key was accepted")
	}
}
