package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adnote/api/internal/auth"
)

// ErrNoSession means the request carries no usable credentials.
var ErrNoSession = errors.New("no session")

// Identity is the authenticated caller behind a request.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
	ExpiresAt time.Time
}

// Revocations is the logout list consulted on every resolution.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type ResolverConfig struct {
	Secret     []byte
	Audience   string
	Issuer     string
	CookieName string
	// Revocations may be nil, in which case logout is a no-op.
	Revocations Revocations
}

type Resolver struct {
	secret      []byte
	opts        auth.ParseOptions
	cookieName  string
	revocations Revocations
}

func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		secret:      cfg.Secret,
		opts:        auth.ParseOptions{Audience: cfg.Audience, Issuer: cfg.Issuer, Leeway: 5 * time.Second},
		cookieName:  cfg.CookieName,
		revocations: cfg.Revocations,
	}
}

// Resolve reads the access token from the Authorization header, falling
// back to the session cookie. Any credential problem yields ErrNoSession;
// other errors come from the revocation backend.
func (r *Resolver) Resolve(req *http.Request) (Identity, error) {
	token := BearerToken(req)
	if token == "" && r.cookieName != "" {
		if cookie, err := req.Cookie(r.cookieName); err == nil {
			token = strings.TrimSpace(cookie.Value)
		}
	}
	if token == "" {
		return Identity{}, ErrNoSession
	}

	claims, err := auth.ParseToken(r.secret, token, r.opts)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	identity := Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	if identity.SessionID == "" {
		identity.SessionID = auth.HashToken(token)
	}

	if r.revocations != nil {
		revoked, err := r.revocations.IsRevoked(req.Context(), identity.SessionID)
		if err != nil {
			return Identity{}, err
		}
		if revoked {
			return Identity{}, fmt.Errorf("%w: session revoked", ErrNoSession)
		}
	}
	return identity, nil
}

// Logout revokes the identity's session until its token expires. It
// reports whether a revocation was recorded.
func (r *Resolver) Logout(ctx context.Context, identity Identity) (bool, error) {
	if r.revocations == nil || identity.SessionID == "" {
		return false, nil
	}
	if err := r.revocations.Revoke(ctx, identity.SessionID, identity.ExpiresAt); err != nil {
		return false, err
	}
	return true, nil
}

func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
