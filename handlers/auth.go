package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Nerzal/gocloak/v13"
	"github.com/google/uuid"

	"github.com/kova98/footroll.api/config"
	"github.com/kova98/footroll.api/models"
)

// AuthHandler authenticates operators against Keycloak for the admin routes.
type AuthHandler struct {
	keycloak *gocloak.GoCloak
	clientId string
	secret   string
	realm    string
}

func NewAuthHandler(keycloak *gocloak.GoCloak) *AuthHandler {
	return &AuthHandler{
		keycloak: keycloak,
		secret:   config.Config.KeycloakClientSecret,
		realm:    config.Config.KeycloakRealm,
		clientId: config.Config.KeycloakClientID,
	}
}

// GetOperator validates the bearer token and resolves the operator behind it.
// With client credentials configured the token is also introspected, so revoked
// sessions are rejected before they expire.
func (h *AuthHandler) GetOperator(ctx context.Context, authHeader string) Result {
	if authHeader == "" {
		return Unauthorized("Missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Unauthorized("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if _, _, err := h.keycloak.DecodeAccessToken(ctx, token, h.realm); err != nil {
		return Unauthorized("Invalid token")
	}

	if h.clientId != "" && h.secret != "" {
		res, err := h.keycloak.RetrospectToken(ctx, token, h.clientId, h.secret, h.realm)
		if err != nil {
			return InternalError(err, "Failed to introspect token")
		}
		if res.Active == nil || !*res.Active {
			return Unauthorized("Token is not active")
		}
	}

	userInfo, err := h.keycloak.GetUserInfo(ctx, token, h.realm)
	if err != nil {
		return InternalError(err, "Failed to get user info")
	}
	if userInfo == nil || userInfo.Sub == nil {
		return Unauthorized("User not found")
	}

	id, err := uuid.Parse(*userInfo.Sub)
	if err != nil {
		slog.Error("Failed to parse operator ID from Keycloak", "sub", *userInfo.Sub, "error", err)
		return InternalError(err, "Failed to parse operator ID from Keycloak")
	}

	operator := models.Operator{ID: id, Name: gocloak.PString(userInfo.PreferredUsername)}
	if userInfo.Email != nil {
		operator.Email = *userInfo.Email
	}
	// Fall back to the local part of the email when there is no username.
	if operator.Name == "" {
		operator.Name = strings.Split(operator.Email, "@")[0]
	}

	return Ok(operator)
}

type contextKey string

// OperatorContextKey holds the models.Operator of an authenticated request.
const OperatorContextKey contextKey = "operator"
