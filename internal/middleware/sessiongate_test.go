package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"estate-hub/internal/session"
)

type stubVerifier struct {
	token        string
	claims       *session.Claims
	decodeErr    error
	epochOK      bool
	idle         bool
	decodeCalls  int
	clearedCalls int
}

func (s *stubVerifier) TokenFromRequest(*http.Request) string { return s.token }

func (s *stubVerifier) Decode(string) (*session.Claims, error) {
	s.decodeCalls++
	return s.claims, s.decodeErr
}

func (s *stubVerifier) EpochMatches(*session.Claims) bool { return s.epochOK }
func (s *stubVerifier) IdleExpired(*session.Claims) bool  { return s.idle }

func (s *stubVerifier) ClearCookies(w http.ResponseWriter) {
	s.clearedCalls++
	for _, name := range []string{session.CookieName, session.SecureCookieName} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", MaxAge: -1, Path: "/"})
	}
}

func okHandler() (http.Handler, *bool) {
	reached := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}), &reached
}

func serve(t *testing.T, verifier *stubVerifier, path string) (*httptest.ResponseRecorder, *bool) {
	t.Helper()

	next, reached := okHandler()
	gate := NewSessionGate(verifier)

	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	gate.Handler(next).ServeHTTP(rec, req)

	return rec, reached
}

func validClaims(subject string) *session.Claims {
	return &session.Claims{
		Role:             "AGENT",
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
}

func TestGate_PublicPathsSkipDecoding(t *testing.T) {
	for _, path := range []string{"/", "/listings", "/listings/some-house", "/blog", "/contact", "/login", "/403", "/auth/callback", "/api/v1/auth/login", "/health"} {
		verifier := &stubVerifier{token: "present-but-ignored"}
		rec, reached := serve(t, verifier, path)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.True(t, *reached, path)
		assert.Equal(t, 0, verifier.decodeCalls, path)
	}
}

func TestGate_MissingTokenRedirectsWithoutCookies(t *testing.T) {
	for _, path := range []string{"/admin", "/admin/users", "/dashboard", "/dashboard/listings"} {
		verifier := &stubVerifier{token: ""}
		rec, reached := serve(t, verifier, path)

		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
		assert.False(t, *reached, path)
		assert.Empty(t, rec.Result().Cookies(), path)
	}
}

func TestGate_EpochMismatchClearsBothCookies(t *testing.T) {
	verifier := &stubVerifier{token: "tok", claims: validClaims("u1"), epochOK: false}
	rec, reached := serve(t, verifier, "/dashboard")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.False(t, *reached)
	assert.Equal(t, 1, verifier.clearedCalls)

	names := make([]string, 0)
	for _, c := range rec.Result().Cookies() {
		names = append(names, c.Name)
		assert.Equal(t, -1, c.MaxAge)
	}
	assert.Contains(t, names, session.CookieName)
	assert.Contains(t, names, session.SecureCookieName)
}

func TestGate_IdleTimeoutRejects(t *testing.T) {
	verifier := &stubVerifier{token: "tok", claims: validClaims("u1"), epochOK: true, idle: true}
	rec, reached := serve(t, verifier, "/dashboard")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, 1, verifier.clearedCalls)
}

func TestGate_FreshTokenPassesDashboard(t *testing.T) {
	verifier := &stubVerifier{token: "tok", claims: validClaims("u1"), epochOK: true}
	rec, reached := serve(t, verifier, "/dashboard")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
	assert.Equal(t, 0, verifier.clearedCalls)
}

func TestGate_AdminRequiresSubjectOnly(t *testing.T) {
	// Any role with a subject passes the gate; the role check belongs
	// to the admin pages themselves.
	verifier := &stubVerifier{token: "tok", claims: validClaims("u1"), epochOK: true}
	rec, reached := serve(t, verifier, "/admin/users")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestGate_AdminWithEmptySubjectRejected(t *testing.T) {
	verifier := &stubVerifier{token: "tok", claims: validClaims(""), epochOK: true}
	rec, reached := serve(t, verifier, "/admin")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, 1, verifier.clearedCalls)
}

func TestGate_InvalidTokenClearsCookies(t *testing.T) {
	verifier := &stubVerifier{token: "garbage", decodeErr: jwt.ErrTokenSignatureInvalid}
	rec, reached := serve(t, verifier, "/dashboard")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, 1, verifier.clearedCalls)
}

func TestGate_AttachesClaimsToContext(t *testing.T) {
	verifier := &stubVerifier{token: "tok", claims: validClaims("u1"), epochOK: true}
	gate := NewSessionGate(verifier)

	var got *session.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GateClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()
	gate.Handler(next).ServeHTTP(rec, req)

	if assert.NotNil(t, got) {
		assert.Equal(t, "u1", got.Subject)
		assert.True(t, strings.EqualFold("agent", got.Role))
	}
}
