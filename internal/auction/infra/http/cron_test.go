package http

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCron_Authorization(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		path    string
		headers map[string]string
		status  int
	}{
		{"no secret configured", "", "/api/cron", map[string]string{"Authorization": "Bearer anything"}, fiber.StatusUnauthorized},
		{"missing credentials", testSecret, "/api/cron", nil, fiber.StatusUnauthorized},
		{"wrong bearer", testSecret, "/api/cron", map[string]string{"Authorization": "Bearer nope"}, fiber.StatusUnauthorized},
		{"bearer", testSecret, "/api/cron", map[string]string{"Authorization": "Bearer " + testSecret}, fiber.StatusOK},
		{"lowercase bearer", testSecret, "/api/cron", map[string]string{"Authorization": "bearer " + testSecret}, fiber.StatusOK},
		{"bare authorization", testSecret, "/api/cron", map[string]string{"Authorization": testSecret}, fiber.StatusOK},
		{"cron header", testSecret, "/api/cron", map[string]string{"X-Cron-Secret": testSecret}, fiber.StatusOK},
		{"query", testSecret, "/api/cron?secret=" + testSecret, nil, fiber.StatusOK},
		{"authorization takes precedence", testSecret, "/api/cron?secret=" + testSecret, map[string]string{"Authorization": "Bearer nope"}, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.secret)
			status, body := s.do(t, fiber.MethodGet, tt.path, nil, tt.headers)
			assert.Equal(t, tt.status, status, body)
		})
	}
}

func TestCron_EndAuctions(t *testing.T) {
	s := newTestServer(t, testSecret)
	s.seed(t, 10, -time.Minute)
	s.seed(t, 10, -time.Hour)
	s.seed(t, 10, time.Hour)
	auth := map[string]string{"Authorization": "Bearer " + testSecret}

	status, body := s.do(t, fiber.MethodPost, "/api/cron?type=end-auctions", nil, auth)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	results := body["results"].(map[string]any)
	assert.EqualValues(t, 2, results["ended_count"])
	assert.NotContains(t, results, "reminders")
	assert.Regexp(t, `^\d+ms$`, body["duration"])
	assert.NotEmpty(t, body["timestamp"])

	// second trigger finds nothing left to end
	_, body = s.do(t, fiber.MethodPost, "/api/cron?type=end-auctions", nil, auth)
	assert.EqualValues(t, 0, body["results"].(map[string]any)["ended_count"])
}

func TestCron_BothJobsByDefault(t *testing.T) {
	s := newTestServer(t, testSecret)
	status, body := s.do(t, fiber.MethodGet, "/api/cron", nil, map[string]string{"X-Cron-Secret": testSecret})
	require.Equal(t, fiber.StatusOK, status)
	results := body["results"].(map[string]any)
	assert.Contains(t, results, "ended_count")
	assert.Contains(t, results, "reminders")
}

func TestCron_UnknownType(t *testing.T) {
	s := newTestServer(t, testSecret)
	status, _ := s.do(t, fiber.MethodGet, "/api/cron?type=cleanup", nil, map[string]string{"X-Cron-Secret": testSecret})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
