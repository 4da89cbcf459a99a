package v1alpha1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	api "github.com/cnc-capture/capture/api/v1alpha1"
)

// Login issues a bearer token for the console. There is no password check:
// login is identity issuance only, mirroring the provisioning model where
// operators are created out of band.
//
// (POST /api/v1/auth/login)
func (h *ServiceHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "username is required")
		return
	}

	token, err := h.tokenSrv.IssueToken(req.Username)
	if err != nil {
		zap.S().Named("auth_handler").Errorw("failed to issue token", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, api.Token{AccessToken: token, TokenType: "bearer"})
}
