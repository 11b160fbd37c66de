package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/patient-scheduler/internal/scheduling"
)

type contextKey string

const patientClaimsKey contextKey = "patientClaims"

// PatientClaims is the identity a signed-in patient's token carries.
type PatientClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// PatientAuth reads an optional HMAC-signed bearer token. Requests without a
// token pass through anonymously; a token that fails validation is rejected
// with 401. Browsers opening a WebSocket may pass the token as the
// access_token query parameter. An empty secret disables the check.
func PatientAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}
			tokenString := bearerToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims := PatientClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), patientClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

// PatientClaimsFromContext returns the patient claims if a valid token was presented.
func PatientClaimsFromContext(ctx context.Context) (PatientClaims, bool) {
	claims, ok := ctx.Value(patientClaimsKey).(PatientClaims)
	return claims, ok
}

// IdentityFromContext returns the known patient identity, empty for anonymous requests.
func IdentityFromContext(ctx context.Context) scheduling.Identity {
	claims, ok := PatientClaimsFromContext(ctx)
	if !ok {
		return scheduling.Identity{}
	}
	return scheduling.Identity{Name: claims.Name, Email: claims.Email}
}
