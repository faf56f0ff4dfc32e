package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/errutil"
)

type sessionResponse struct {
	TokenID     string    `json:"token_id"`
	TokenSecret string    `json:"token_secret"`
	Sub         string    `json:"sub"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type meResponse struct {
	ResponsibleID string   `json:"responsible_id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	AreaIDs       []string `json:"area_ids"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// authLoginHandler exchanges an identity-provider JWT for a session token.
// The JWT travels in the Authorization header.
func authLoginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authUC == nil {
			errutil.HandleHTTP(r.Context(), w, goerr.New("authentication is not configured"), http.StatusUnauthorized)
			return
		}

		var rawToken string
		if !authUC.IsNoAuthn() {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				errutil.HandleHTTP(r.Context(), w, goerr.New("identity token required"), http.StatusUnauthorized)
				return
			}
			rawToken = raw
		}

		token, secret, err := authUC.HandleLogin(r.Context(), rawToken)
		if err != nil {
			if errors.Is(err, usecase.ErrResponsibleNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusForbidden)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, sessionResponse{
			TokenID:     string(token.ID),
			TokenSecret: string(secret),
			Sub:         string(token.Sub),
			ExpiresAt:   token.ExpiresAt,
		})
	}
}

// authLogoutHandler revokes the presented session token
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authUC == nil || authUC.IsNoAuthn() {
			writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
			return
		}

		tokenID, _, err := bearerCredentials(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
			return
		}
		if err := authUC.Logout(r.Context(), tokenID); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to logout"), http.StatusInternalServerError)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns the acting responsible resolved by the middleware
func authMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.ActorFromContext(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
			return
		}

		areaIDs := make([]string, len(actor.AreaIDs))
		for i, id := range actor.AreaIDs {
			areaIDs[i] = string(id)
		}

		writeJSON(r.Context(), w, http.StatusOK, meResponse{
			ResponsibleID: string(actor.ResponsibleID),
			Name:          actor.Name,
			Role:          string(actor.Role),
			AreaIDs:       areaIDs,
		})
	}
}
