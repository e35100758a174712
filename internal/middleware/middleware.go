package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"sociogram/internal/handler"
	"sociogram/internal/service"
)

type Middleware func(http.Handler) http.Handler

// AuthMiddleware accepts the signed token from the HTTP-only cookie first and
// falls back to the Authorization bearer header.
func AuthMiddleware(authService service.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			publicPrefixes := []string{
				"/auth/register",
				"/auth/login",
				"/assets/",
				"/ws",
				"/health",
			}

			if r.URL.Path == "/" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			for _, prefix := range publicPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			tokenString := ""
			if cookie, err := r.Cookie("token"); err == nil {
				tokenString = cookie.Value
			}

			if tokenString == "" {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					handler.WriteError(w, "authentication required", http.StatusUnauthorized)
					return
				}

				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					handler.WriteError(w, "invalid token format", http.StatusUnauthorized)
					return
				}
				tokenString = parts[1]
			}

			userID, err := authService.ValidateToken(tokenString)
			if err != nil {
				handler.WriteError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := handler.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
