package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-hub/internal/model"
	"estate-hub/pkg/apierror"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var resp model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// The repositories surface misses as package sentinels; writeError owns
// the mapping to status codes and envelope error codes.
func TestWriteError_SentinelMapping(t *testing.T) {
	cases := map[string]struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		"user not found":    {model.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		"listing not found": {model.ErrListingNotFound, http.StatusNotFound, "NOT_FOUND"},
		"post not found":    {model.ErrPostNotFound, http.StatusNotFound, "NOT_FOUND"},
	}

	for name, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)

		assert.Equal(t, tc.wantStatus, rec.Code, name)
		resp := decodeEnvelope(t, rec)
		assert.False(t, resp.Success, name)
		require.NotNil(t, resp.Error, name)
		assert.Equal(t, tc.wantCode, resp.Error.Code, name)
	}
}

func TestWriteError_CodedError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apierror.Forbidden("not the listing owner"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	assert.Equal(t, "not the listing owner", resp.Error.Message)
}

func TestWriteError_UnclassifiedDefaultsTo500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}
