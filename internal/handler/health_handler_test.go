package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Health(context.Context) error {
	return s.err
}

func TestHealthHandler_ReportsOK(t *testing.T) {
	h := NewHealthHandler(stubPinger{})

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	h := NewHealthHandler(stubPinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
}
