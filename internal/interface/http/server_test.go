package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestLive(t *testing.T) {
	s := NewServer(DefaultConfig())
	rec := doRequest(t, s, "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealth_AllChecksPass(t *testing.T) {
	s := NewServer(DefaultConfig())
	s.AddCheck("postgres", func(context.Context) error { return nil })

	rec := doRequest(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Healthy bool              `json:"healthy"`
		Checks  map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Healthy)
	assert.Equal(t, "ok", resp.Checks["postgres"])
}

func TestHealth_FailingCheck(t *testing.T) {
	s := NewServer(DefaultConfig())
	s.AddCheck("postgres", func(context.Context) error { return nil })
	s.AddCheck("telegram", func(context.Context) error { return errors.New("unauthorized") })

	rec := doRequest(t, s, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Healthy bool              `json:"healthy"`
		Checks  map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Healthy)
	assert.Equal(t, "ok", resp.Checks["postgres"])
	assert.Equal(t, "unauthorized", resp.Checks["telegram"])
}

func TestReady(t *testing.T) {
	s := NewServer(DefaultConfig())
	assert.Equal(t, http.StatusOK, doRequest(t, s, "/ready").Code)

	s.AddCheck("postgres", func(context.Context) error { return errors.New("down") })
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, s, "/ready").Code)
}
