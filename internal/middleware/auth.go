package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/autoagenda/internal/auth"
	"github.com/dukerupert/autoagenda/internal/logging"
	"github.com/dukerupert/autoagenda/internal/model"
)

// UserLookup finds a user by email. It returns nil, nil when none exists.
type UserLookup interface {
	GetByEmail(email string) (*model.User, error)
}

// RequireAuth validates the bearer token and populates the request Identity.
// Clients that cannot set headers (websocket upgrades from a browser) may
// pass the token as the access_token query parameter.
func RequireAuth(tokens *auth.TokenIssuer, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			email, err := tokens.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Debug("rejected token", "error", err)
				unauthorized(w, "Could not validate credentials")
				return
			}

			user, err := users.GetByEmail(email)
			if err != nil {
				logging.FromContext(r.Context()).Error("auth user lookup failed", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				unauthorized(w, "Could not validate credentials")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: user.ID, Email: user.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": detail})
}
