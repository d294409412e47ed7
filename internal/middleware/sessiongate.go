package middleware

import (
	"context"
	"net/http"
	"strings"

	"estate-hub/internal/session"
)

// sessionVerifier is the slice of the session manager the gate needs.
type sessionVerifier interface {
	TokenFromRequest(r *http.Request) string
	Decode(token string) (*session.Claims, error)
	EpochMatches(c *session.Claims) bool
	IdleExpired(c *session.Claims) bool
	ClearCookies(w http.ResponseWriter)
}

type claimsKey struct{}

const (
	adminPrefix     = "/admin"
	dashboardPrefix = "/dashboard"
)

// publicPrefixes are never gated, regardless of any token present.
var publicPrefixes = []string{
	"/listings",
	"/blog",
	"/contact",
	"/login",
	"/api/v1/auth",
	"/403",
	"/auth/callback",
}

// SessionGate filters requests to the protected page prefixes before
// any routed handler runs. It checks token presence, the server-start
// epoch, and the inactivity threshold; it deliberately does not check
// the admin role itself — admin handlers verify the role with richer
// context. Each request is evaluated independently from its token; the
// gate keeps no state across requests.
type SessionGate struct {
	sessions sessionVerifier
}

func NewSessionGate(sessions sessionVerifier) *SessionGate {
	return &SessionGate{sessions: sessions}
}

func (g *SessionGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" || hasAnyPrefix(path, publicPrefixes) {
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(path, adminPrefix) && !strings.HasPrefix(path, dashboardPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		token := g.sessions.TokenFromRequest(r)
		if token == "" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		claims, err := g.sessions.Decode(token)
		if err != nil {
			g.reject(w, r)
			return
		}

		if !g.sessions.EpochMatches(claims) {
			g.reject(w, r)
			return
		}

		if g.sessions.IdleExpired(claims) {
			g.reject(w, r)
			return
		}

		if strings.HasPrefix(path, adminPrefix) && strings.TrimSpace(claims.Subject) == "" {
			g.reject(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *SessionGate) reject(w http.ResponseWriter, r *http.Request) {
	g.sessions.ClearCookies(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// GateClaimsFromContext returns the claims the gate attached for a
// request that passed it.
func GateClaimsFromContext(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*session.Claims)
	return claims, ok
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
