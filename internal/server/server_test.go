package server

import (
	"net/http"
	"testing"

	"blogshare/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readinessBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestLivenessCheck(t *testing.T) {
	_, app := newTestServer(t)

	resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadinessCheck(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		_, app := newTestServer(t)

		resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[readinessBody](t, resp)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "healthy", body.Checks["database"])
		assert.Equal(t, "disabled", body.Checks["redis"])
	})

	t.Run("with redis", func(t *testing.T) {
		s, _ := newTestServer(t)
		mr := miniredis.RunT(t)
		s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = s.redis.Close() })

		resp := doRequest(t, s.App(), jsonRequest(t, http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "healthy", decodeBody[readinessBody](t, resp).Checks["redis"])
	})

	t.Run("database closed", func(t *testing.T) {
		s, app := newTestServer(t)
		sqlDB, err := s.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decodeBody[readinessBody](t, resp)
		assert.Equal(t, "unhealthy", body.Checks["database"])
	})
}

func TestAuthHandlers_Validation(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		payload    any
		wantStatus int
		wantCode   string
	}{
		{"register blank username", "/register", map[string]string{"username": "  ", "password": "secret1"}, http.StatusBadRequest, models.CodeValidation},
		{"register empty password", "/register", map[string]string{"username": "carol"}, http.StatusBadRequest, models.CodeValidation},
		{"login unknown user", "/login", map[string]string{"username": "ghost", "password": "secret1"}, http.StatusBadRequest, models.CodeInvalidCredentials},
		{"login empty body", "/login", map[string]string{}, http.StatusBadRequest, models.CodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, app := newTestServer(t)

			resp := doRequest(t, app, jsonRequest(t, http.MethodPost, tt.path, tt.payload))

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeBody[models.ErrorResponse](t, resp).Code)
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	_, app := newTestServer(t)
	req := jsonRequest(t, http.MethodPost, "/register", nil)
	req.Header.Set("Content-Type", "application/json")

	resp := doRequest(t, app, req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	_, app := newTestServer(t)

	resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, decodeBody[models.ErrorResponse](t, resp).Code)
}

func TestMetricsAndDocsEndpoints(t *testing.T) {
	_, app := newTestServer(t)

	resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, jsonRequest(t, http.MethodGet, "/api/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
