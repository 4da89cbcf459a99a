package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenIssuer = "cnc-capture"

// LocalAuthenticator issues and validates HS256 tokens signed with a local
// secret. Login is identity issuance only: any username gets a token, there
// is no password check.
type LocalAuthenticator struct {
	signingKey []byte
	validity   time.Duration
}

func NewLocalAuthenticator(signingKey string, validity time.Duration) (*LocalAuthenticator, error) {
	if signingKey == "" {
		return nil, errors.New("token signing key must not be empty")
	}
	return &LocalAuthenticator{signingKey: []byte(signingKey), validity: validity}, nil
}

// IssueToken creates a bearer token for username, valid for the configured
// duration.
func (a *LocalAuthenticator) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.validity)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate validates a bearer token and returns the user it names.
func (a *LocalAuthenticator) Authenticate(token string) (User, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	t, err := parser.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return a.signingKey, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to authenticate token: %w", err)
	}

	subject, err := t.Claims.GetSubject()
	if err != nil || subject == "" {
		return User{}, errors.New("token has no subject")
	}

	return User{Username: subject, Token: t}, nil
}

func (a *LocalAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := r.Header.Get("Authorization")
		if !strings.HasPrefix(accessToken, "Bearer ") {
			http.Error(w, "No token provided", http.StatusUnauthorized)
			return
		}

		user, err := a.Authenticate(strings.TrimPrefix(accessToken, "Bearer "))
		if err != nil {
			zap.S().Named("auth").Debugw("rejected bearer token", "error", err)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		ctx := NewTokenContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
