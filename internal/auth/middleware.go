package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// RequireAuth resolves the Authorization bearer token into a customer id and
// rejects requests without a valid one.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "bearer token required")
			return
		}
		customerID, err := s.CustomerIDForToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired")
				return
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithCustomerID(r.Context(), customerID)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
