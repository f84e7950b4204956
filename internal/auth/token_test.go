package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testUserID = "6f1c2a4e-8a55-4a8e-9d3a-1b2c3d4e5f60"

func validClaims() Claims {
	return Claims{
		Email:     "avery@example.com",
		Role:      RoleAuthenticated,
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUserID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			Issuer:    "https://project.supabase.co/auth/v1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, validClaims())
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	claims, err := ParseToken(secret, issued, ParseOptions{Audience: "authenticated"})
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != testUserID || claims.Email != "avery@example.com" || claims.SessionID != "sess-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("secret")
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	issued, err := IssueToken(secret, claims)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := ParseToken(secret, issued, ParseOptions{}); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseTokenRejectsInvalid(t *testing.T) {
	secret := []byte("secret")

	sign := func(mutate func(*Claims)) string {
		t.Helper()
		claims := validClaims()
		mutate(&claims)
		issued, err := IssueToken(secret, claims)
		if err != nil {
			t.Fatalf("IssueToken() error = %v", err)
		}
		return issued
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	cases := []struct {
		name   string
		token  string
		secret []byte
		opts   ParseOptions
	}{
		{name: "empty", token: "", secret: secret},
		{name: "garbage", token: "not.a.jwt", secret: secret},
		{name: "wrong secret", token: sign(func(*Claims) {}), secret: []byte("other")},
		{name: "alg none", token: noneToken, secret: secret},
		{name: "anon role", token: sign(func(c *Claims) { c.Role = "anon" }), secret: secret},
		{name: "subject not uuid", token: sign(func(c *Claims) { c.Subject = "user-1" }), secret: secret},
		{name: "missing exp", token: sign(func(c *Claims) { c.ExpiresAt = nil }), secret: secret},
		{name: "audience mismatch", token: sign(func(*Claims) {}), secret: secret, opts: ParseOptions{Audience: "service_role"}},
		{name: "issuer mismatch", token: sign(func(*Claims) {}), secret: secret, opts: ParseOptions{Issuer: "https://evil.example"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseToken(tc.secret, tc.token, tc.opts); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestParseTokenCanonicalizesSubject(t *testing.T) {
	secret := []byte("secret")
	claims := validClaims()
	claims.Subject = "6F1C2A4E-8A55-4A8E-9D3A-1B2C3D4E5F60"
	issued, err := IssueToken(secret, claims)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	parsed, err := ParseToken(secret, issued, ParseOptions{})
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if parsed.Subject != testUserID {
		t.Fatalf("expected canonical subject, got %q", parsed.Subject)
	}
}

func TestHashTokenStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("expected stable hash")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("expected distinct hashes")
	}
	if len(HashToken("abc")) != 64 {
		t.Fatalf("expected hex sha256, got %q", HashToken("abc"))
	}
}
