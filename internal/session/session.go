// Package session issues and reads the stateless signed session token.
//
// A token is honored only while its signature validates, its embedded
// server-start epoch equals the current process epoch, and the time since
// its last-activity claim is below the idle threshold. The epoch is the
// sole revocation mechanism: restarting the process invalidates every
// outstanding session.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"estate-hub/internal/model"
)

const (
	CookieName       = "session-token"
	SecureCookieName = "__Secure-session-token"
)

// Claims are the payload of the session token. LastActivity and
// ServerStart are epoch milliseconds.
type Claims struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	LastActivity int64  `json:"lastActivity"`
	ServerStart  int64  `json:"serverStartTime"`
	jwt.RegisteredClaims
}

// Identity is the minimal result of reading a token. The zero value
// means anonymous.
type Identity struct {
	ID   string
	Role string
}

// UserResolver is the fallback identity store consulted when a token
// carries a subject but no role claim.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type Manager struct {
	secret        []byte
	ttl           time.Duration
	idleTimeout   time.Duration
	epoch         int64
	secureCookies bool
	users         UserResolver
	now           func() time.Time
}

func NewManager(secret string, ttl time.Duration, idleTimeout time.Duration, secureCookies bool, users UserResolver) *Manager {
	now := time.Now
	return &Manager{
		secret:        []byte(secret),
		ttl:           ttl,
		idleTimeout:   idleTimeout,
		epoch:         now().UnixMilli(),
		secureCookies: secureCookies,
		users:         users,
		now:           now,
	}
}

// Epoch returns the process boot marker embedded in every issued token.
func (m *Manager) Epoch() int64 {
	return m.epoch
}

// Issue signs a fresh token for the user. The role claim is normalized
// to its canonical upper-case form at issuance.
func (m *Manager) Issue(user model.User) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Role:         strings.ToUpper(strings.TrimSpace(user.Role)),
		Name:         user.Name,
		LastActivity: now.UnixMilli(),
		ServerStart:  m.epoch,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Refresh re-issues a token for the same subject with a current
// last-activity claim. Used by the activity ping.
func (m *Manager) Refresh(c *Claims) (string, error) {
	user := model.User{ID: c.Subject, Name: c.Name, Role: c.Role}
	return m.Issue(user)
}

func (m *Manager) Decode(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// TokenFromRequest extracts the raw session token from the secure
// cookie, the plain cookie, or a bearer Authorization header.
func (m *Manager) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SecureCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	if c, err := r.Cookie(CookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}

// ReadIdentity decodes the request's token without touching the data
// store when possible. When the token carries a subject but no role
// claim, the identity store is consulted. Every failure on either path
// yields an anonymous identity, never an error.
func (m *Manager) ReadIdentity(ctx context.Context, r *http.Request) Identity {
	token := m.TokenFromRequest(r)
	if token == "" {
		return Identity{}
	}

	claims, err := m.Decode(token)
	if err != nil {
		return Identity{}
	}

	if claims.Subject != "" && claims.Role != "" {
		return Identity{ID: claims.Subject, Role: claims.Role}
	}

	if claims.Subject == "" || m.users == nil {
		return Identity{}
	}

	user, err := m.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return Identity{}
	}

	return Identity{ID: user.ID, Role: strings.ToUpper(strings.TrimSpace(user.Role))}
}

// VerifyAdmin answers whether the caller is an administrator. Role is
// trusted from the signed token; no store query is performed. Callers
// must treat a false result or empty id as an unconditional 401.
func (m *Manager) VerifyAdmin(ctx context.Context, r *http.Request) (bool, string) {
	identity := m.ReadIdentity(ctx, r)
	if identity.ID == "" {
		return false, ""
	}

	return strings.EqualFold(identity.Role, model.RoleAdmin), identity.ID
}

// EpochMatches reports whether the token was issued by this process.
func (m *Manager) EpochMatches(c *Claims) bool {
	return c != nil && c.ServerStart == m.epoch
}

// IdleExpired reports whether the token's last activity is older than
// the inactivity threshold.
func (m *Manager) IdleExpired(c *Claims) bool {
	if c == nil {
		return true
	}

	last := time.UnixMilli(c.LastActivity)
	return m.now().Sub(last) > m.idleTimeout
}

// SetCookies writes the session token under both cookie names.
func (m *Manager) SetCookies(w http.ResponseWriter, token string) {
	maxAge := int(m.ttl.Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if m.secureCookies {
		http.SetCookie(w, &http.Cookie{
			Name:     SecureCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   maxAge,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearCookies expires both session cookie names.
func (m *Manager) ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{CookieName, SecureCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
