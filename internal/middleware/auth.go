package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// AuthCookie is the cookie carrying the admin session token.
const AuthCookie = "authenticated"

// AuthToken derives the cookie value from the admin password.
func AuthToken(password string) string {
	sum := sha256.Sum256([]byte("portfolio-admin:" + password))
	return hex.EncodeToString(sum[:])
}

// AuthMiddleware guards the admin paths (the log viewer). Everything else,
// including the gallery and the front end, is public.
func AuthMiddleware(password string, next http.Handler) http.Handler {
	token := AuthToken(password)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAdminPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(AuthCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(token)) != 1 {
			// AJAX/API callers get 401, browsers are sent to the login page
			if r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
				r.Header.Get("Content-Type") == "application/json" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAdminPath(path string) bool {
	return path == "/logs" || strings.HasPrefix(path, "/logs/")
}
