package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/jankeeper/jankeeper/services"
)

type contextKey string

const actorContextKey contextKey = "actor"

var errNoActor = errors.New("no authenticated user in request context")

// Authenticator verifies bearer tokens and stores the resolved actor in
// the request context.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(jwtSecret string) *Authenticator {
	return &Authenticator{secret: []byte(jwtSecret)}
}

// Authenticate rejects requests without a valid HS256 token. The token
// comes from the Authorization header, or from the "token" query
// parameter when the header is absent (browser WebSocket clients cannot
// set request headers).
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := tokenFromRequest(r)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			unauthorized(w, "invalid or expired token")
			return
		}

		actor, err := actorFromClaims(claims)
		if err != nil {
			unauthorized(w, "invalid token claims")
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin sits behind Authenticate and rejects non-admin actors.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromContext(r.Context())
		if err != nil {
			unauthorized(w, "authentication required")
			return
		}
		if !actor.IsAdmin {
			forbidden(w, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext returns the actor placed by Authenticate.
func ActorFromContext(ctx context.Context) (services.Actor, error) {
	actor, ok := ctx.Value(actorContextKey).(services.Actor)
	if !ok {
		return services.Actor{}, errNoActor
	}
	return actor, nil
}

func tokenFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
		return "", errors.New("missing authorization header")
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errors.New("authorization header must be a bearer token")
	}
	return tokenString, nil
}

func actorFromClaims(claims jwt.MapClaims) (services.Actor, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return services.Actor{}, errors.New("missing user_id claim")
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return services.Actor{ID: userID, IsAdmin: isAdmin}, nil
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

func forbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":` + strconv.Quote(message) + `}`))
}
