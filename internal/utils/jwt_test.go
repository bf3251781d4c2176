package utils

import "testing"

func TestHashRefreshRawIsDeterministic(t *testing.T) {
	a := HashRefreshRaw("token-one")
	b := HashRefreshRaw("token-one")
	if a != b {
		t.Fatalf("same input hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(a))
	}
	if a == HashRefreshRaw("token-two") {
		t.Fatal("different inputs produced the same hash")
	}
}

func TestNewRefreshTokenIsUnique(t *testing.T) {
	first, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	second, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if first.Raw == second.Raw {
		t.Fatal("two refresh tokens share the same raw value")
	}
	if len(first.Raw) != 96 {
		t.Fatalf("raw length = %d, want 96 hex chars", len(first.Raw))
	}
}
