package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/utils/errutil"
)

// bearerCredentials extracts the "<token_id>:<token_secret>" pair from the
// Authorization header.
func bearerCredentials(r *http.Request) (auth.TokenID, auth.TokenSecret, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", "", goerr.New("authentication required")
	}

	id, secret, ok := strings.Cut(raw, ":")
	if !ok {
		return "", "", goerr.New("malformed session token")
	}
	return auth.TokenID(id), auth.TokenSecret(secret), nil
}

// authMiddleware resolves the session token to an actor and attaches it to
// the request context
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				errutil.HandleHTTP(r.Context(), w, goerr.New("authentication is not configured"), http.StatusUnauthorized)
				return
			}

			var tokenID auth.TokenID
			var secret auth.TokenSecret

			// No-auth mode resolves the configured responsible without
			// credentials
			if !authUC.IsNoAuthn() {
				var err error
				tokenID, secret, err = bearerCredentials(r)
				if err != nil {
					errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
					return
				}
			}

			actor, err := authUC.ValidateToken(r.Context(), tokenID, secret)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.New("invalid session token"), http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
