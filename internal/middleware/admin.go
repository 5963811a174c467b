package middleware

import (
	"net/http"

	"vaultchat/internal/auth"
)

// AdminRole is the value an admin token must carry.
const AdminRole = "admin"

// AdminAuth gates the admin endpoints (stats, backup) behind a signed
// token in the X-Admin-Token header.
func AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		role, err := auth.VerifyToken(token)
		if err != nil || role != AdminRole {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
