package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type principalKey struct{}

// Claims are the JWT claims the API expects. Tokens are issued elsewhere
// and signed with the shared HMAC secret.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	logger *slog.Logger
}

func NewAuthenticator(secret string, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Authenticator{secret: []byte(secret), logger: logger}
}

// Require rejects requests without a valid bearer token and stores the
// caller's principal in the request context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
			return
		}

		principal, err := a.parse(token)
		if err != nil {
			a.logger.Debug("rejected token", "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) parse(tokenStr string) (domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id claim: %w", err)
	}

	return domain.NewPrincipal(domain.Role(claims.Role), userID, claims.Email, claims.Name)
}

func principalFrom(ctx context.Context) (domain.Principal, error) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	if !ok {
		return nil, fmt.Errorf("no authenticated caller: %w", domain.ErrUnauthorized)
	}

	return p, nil
}

func customerFrom(ctx context.Context) (domain.Customer, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, ok := p.(domain.Customer)
	if !ok {
		return domain.Customer{}, fmt.Errorf("customer role required: %w", domain.ErrUnauthorized)
	}

	return customer, nil
}
