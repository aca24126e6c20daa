package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPMATE_BACK-END/internal/realtime"
)

func TestHealthCheckEndpoints(t *testing.T) {
	hub := realtime.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	h := NewHealthHandler(nil, hub)

	cases := map[string]struct {
		handler http.HandlerFunc
		status  string
	}{
		"health":   {h.HealthCheck, "ok"},
		"liveness": {h.LivenessCheck, "alive"},
	}
	for name, tc := range cases {
		rec := httptest.NewRecorder()
		tc.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code, name)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), name)
		assert.Equal(t, tc.status, body["status"], name)
	}
}
