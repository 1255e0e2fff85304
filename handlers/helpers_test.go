package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jankeeper/jankeeper/scoring"
	"github.com/jankeeper/jankeeper/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"section not found", services.ErrSectionNotFound, http.StatusNotFound},
		{"game not found", services.ErrGameNotFound, http.StatusNotFound},
		{"display name taken", services.ErrDisplayNameTaken, http.StatusConflict},
		{"permission denied", services.ErrPermissionDenied, http.StatusForbidden},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"section closed", services.ErrSectionNotActive, http.StatusConflict},
		{"section not closed", services.ErrSectionNotClosed, http.StatusConflict},
		{"bad rate", services.ErrRateInvalid, http.StatusBadRequest},
		{"avatar storage off", services.ErrAvatarStorageUnavailable, http.StatusServiceUnavailable},
		{"balance error", &scoring.BalanceError{Expected: 100000, Actual: 99000}, http.StatusUnprocessableEntity},
		{"shape error", &scoring.ShapeError{Expected: 4, Got: 3}, http.StatusUnprocessableEntity},
		{"quantization error", &scoring.QuantizationError{UserID: "u1", Points: 25050}, http.StatusUnprocessableEntity},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestMapBalanceErrorDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sections/s1/games", nil)
	rec := httptest.NewRecorder()

	mapServiceErrorToHTTP(rec, req, &scoring.BalanceError{Expected: 100000, Actual: 99000})

	var body struct {
		Error struct {
			Expected int `json:"expected"`
			Actual   int `json:"actual"`
			Diff     int `json:"diff"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 100000, body.Error.Expected)
	assert.Equal(t, 99000, body.Error.Actual)
	assert.Equal(t, 1000, body.Error.Diff)
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
		var dst payload
		require.NoError(t, readJSON(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "ok", dst.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","extra":1}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Equal(t, "body must not be empty", err.Error())
	})

	t.Run("two JSON values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Equal(t, "body must only contain a single JSON value", err.Error())
	})
}

func TestParseDateRange(t *testing.T) {
	t.Run("both bounds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats?from=2026-03-01&to=2026-03-31", nil)
		dateRange, err := parseDateRange(req)
		require.NoError(t, err)
		require.NotNil(t, dateRange.From)
		require.NotNil(t, dateRange.To)
		assert.Equal(t, "2026-03-01", dateRange.From.Format(dateLayout))
		assert.Equal(t, "2026-03-31", dateRange.To.Format(dateLayout))
	})

	t.Run("open range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		dateRange, err := parseDateRange(req)
		require.NoError(t, err)
		assert.Nil(t, dateRange.From)
		assert.Nil(t, dateRange.To)
	})

	t.Run("bad format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats?from=03-01-2026", nil)
		_, err := parseDateRange(req)
		assert.Error(t, err)
	})

	t.Run("inverted range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats?from=2026-03-31&to=2026-03-01", nil)
		_, err := parseDateRange(req)
		assert.Error(t, err)
	})
}
