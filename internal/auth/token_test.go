package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken("u-1", "a@b.c", "Alice", "client")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "u-1" || claims.Email != "a@b.c" {
		t.Errorf("unexpected claims %+v", claims)
	}
	got, ok := TokenExpiry(token)
	if !ok {
		t.Fatal("expected exp claim")
	}
	if !got.Equal(exp.Truncate(time.Second)) {
		t.Errorf("expected exp %v, got %v", exp, got)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", 5).GenerateToken("u", "e", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("two", 5).ParseToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestTokenUsable(t *testing.T) {
	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	})
	expiredStr, err := expired.SignedString([]byte("backend-key"))
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]struct {
		token string
		want  bool
	}{
		"empty":   {"", false},
		"opaque":  {"not-a-jwt", true},
		"expired": {expiredStr, false},
	}
	for name, tc := range cases {
		if got := TokenUsable(tc.token, now); got != tc.want {
			t.Errorf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"client":   "user",
		"employee": "operator",
		"ADMIN":    "admin",
		"system":   "system",
		"":         "user",
	}
	for in, want := range cases {
		if got := string(NormalizeRole(in)); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("g@kb$78N", 4)
	if err != nil {
		t.Fatal(err)
	}
	if hash == "g@kb$78N" {
		t.Fatal("password stored in clear")
	}
	if err := ComparePassword(hash, "g@kb$78N"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("expected mismatch")
	}
}
