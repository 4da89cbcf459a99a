package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cnc-capture/capture/internal/config"
)

// Authenticator gates console access. Implementations validate the bearer
// token and place the authenticated user into the request context.
type Authenticator interface {
	Authenticator(next http.Handler) http.Handler
}

const (
	LocalAuthentication string = "local"
	NoneAuthentication  string = "none"
)

func NewAuthenticator(authConfig config.Auth) (Authenticator, error) {
	zap.S().Named("auth").Infof("authentication: '%s'", authConfig.AuthenticationType)

	switch authConfig.AuthenticationType {
	case LocalAuthentication:
		return NewLocalAuthenticator(authConfig.TokenSigningKey, authConfig.TokenValidity)
	default:
		return NewNoneAuthenticator()
	}
}
