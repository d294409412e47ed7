package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-hub/internal/model"
)

const testSecret = "test-secret-0123456789"

type stubResolver struct {
	user model.User
	err  error
}

func (s *stubResolver) FindByID(context.Context, string) (model.User, error) {
	return s.user, s.err
}

func newTestManager(resolver UserResolver) *Manager {
	return NewManager(testSecret, time.Hour, 10*time.Minute, true, resolver)
}

// signRaw builds a token outside the manager so tests can control
// individual claims.
func signRaw(t *testing.T, claims Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	return req
}

func TestIssueAndDecodeRoundtrip(t *testing.T) {
	m := newTestManager(nil)

	token, err := m.Issue(model.User{ID: "u1", Name: "Ada", Role: "agent"})
	require.NoError(t, err)

	claims, err := m.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "AGENT", claims.Role, "role is normalized at issuance")
	assert.Equal(t, m.Epoch(), claims.ServerStart)
	assert.NotZero(t, claims.LastActivity)
}

func TestReadIdentity_FastPath(t *testing.T) {
	m := newTestManager(nil)

	token, err := m.Issue(model.User{ID: "u1", Role: "AGENT"})
	require.NoError(t, err)

	identity := m.ReadIdentity(context.Background(), requestWithToken(token))
	assert.Equal(t, Identity{ID: "u1", Role: "AGENT"}, identity)
}

func TestReadIdentity_FallbackMatchesFastPath(t *testing.T) {
	resolver := &stubResolver{user: model.User{ID: "u1", Role: "AGENT"}}
	m := newTestManager(resolver)

	fast, err := m.Issue(model.User{ID: "u1", Role: "AGENT"})
	require.NoError(t, err)

	// Same user, but the token carries no role claim; the identity
	// store fills the gap.
	now := time.Now().UTC()
	missingRole := signRaw(t, Claims{
		LastActivity: now.UnixMilli(),
		ServerStart:  m.Epoch(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	fastIdentity := m.ReadIdentity(context.Background(), requestWithToken(fast))
	fallbackIdentity := m.ReadIdentity(context.Background(), requestWithToken(missingRole))

	assert.Equal(t, fastIdentity, fallbackIdentity)
}

func TestReadIdentity_NeverErrors(t *testing.T) {
	cases := map[string]struct {
		token    string
		resolver UserResolver
	}{
		"no token":        {token: "", resolver: nil},
		"garbage":         {token: "not-a-jwt", resolver: nil},
		"wrong secret":    {token: mustSignOther(t), resolver: nil},
		"resolver errors": {token: "", resolver: &stubResolver{err: errors.New("db down")}},
	}

	for name, tc := range cases {
		m := newTestManager(tc.resolver)
		req := httptest.NewRequest("GET", "/", nil)
		if tc.token != "" {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: tc.token})
		}

		identity := m.ReadIdentity(context.Background(), req)
		assert.Equal(t, Identity{}, identity, name)
	}
}

func TestReadIdentity_FallbackLookupFailure(t *testing.T) {
	m := newTestManager(&stubResolver{err: errors.New("db down")})

	now := time.Now().UTC()
	missingRole := signRaw(t, Claims{
		ServerStart: m.Epoch(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	identity := m.ReadIdentity(context.Background(), requestWithToken(missingRole))
	assert.Equal(t, Identity{}, identity)
}

func mustSignOther(t *testing.T) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})
	signed, err := token.SignedString([]byte("a-different-secret"))
	require.NoError(t, err)
	return signed
}

func TestVerifyAdmin_RoleCasing(t *testing.T) {
	m := newTestManager(nil)
	now := time.Now().UTC()

	cases := map[string]struct {
		role string
		want bool
	}{
		"upper":     {role: "ADMIN", want: true},
		"lower":     {role: "admin", want: true},
		"canonical": {role: model.RoleAdmin, want: true},
		"agent":     {role: "AGENT", want: false},
		"writer":    {role: "WRITER", want: false},
	}

	for name, tc := range cases {
		token := signRaw(t, Claims{
			Role:         tc.role,
			LastActivity: now.UnixMilli(),
			ServerStart:  m.Epoch(),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})

		isAdmin, userID := m.VerifyAdmin(context.Background(), requestWithToken(token))
		assert.Equal(t, tc.want, isAdmin, name)
		assert.Equal(t, "u1", userID, name)
	}
}

func TestVerifyAdmin_AbsentRole(t *testing.T) {
	// No resolver: an absent role cannot be recovered, so the caller
	// is not an admin.
	m := newTestManager(nil)
	now := time.Now().UTC()

	token := signRaw(t, Claims{
		ServerStart: m.Epoch(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	isAdmin, userID := m.VerifyAdmin(context.Background(), requestWithToken(token))
	assert.False(t, isAdmin)
	assert.Empty(t, userID)
}

func TestIdleExpired(t *testing.T) {
	m := newTestManager(nil)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	idle := &Claims{LastActivity: base.Add(-11 * time.Minute).UnixMilli()}
	fresh := &Claims{LastActivity: base.Add(-9 * time.Minute).UnixMilli()}

	assert.True(t, m.IdleExpired(idle))
	assert.False(t, m.IdleExpired(fresh))
	assert.True(t, m.IdleExpired(nil))
}

func TestEpochMatches(t *testing.T) {
	m := newTestManager(nil)

	assert.True(t, m.EpochMatches(&Claims{ServerStart: m.Epoch()}))
	assert.False(t, m.EpochMatches(&Claims{ServerStart: m.Epoch() - 1}))
	assert.False(t, m.EpochMatches(nil))
}

func TestTokenFromRequest_SecureCookieWins(t *testing.T) {
	m := newTestManager(nil)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "plain"})
	req.AddCookie(&http.Cookie{Name: SecureCookieName, Value: "secure"})

	assert.Equal(t, "secure", m.TokenFromRequest(req))
}

func TestTokenFromRequest_BearerFallback(t *testing.T) {
	m := newTestManager(nil)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")

	assert.Equal(t, "abc123", m.TokenFromRequest(req))
}

func TestClearCookies_ExpiresBothNames(t *testing.T) {
	m := newTestManager(nil)
	rec := httptest.NewRecorder()
	m.ClearCookies(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	names := []string{cookies[0].Name, cookies[1].Name}
	assert.Contains(t, names, CookieName)
	assert.Contains(t, names, SecureCookieName)
	for _, c := range cookies {
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	}
}
