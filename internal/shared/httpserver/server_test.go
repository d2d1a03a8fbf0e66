package httpserver

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Health(t *testing.T) {
	s := NewServer()
	resp, err := s.App().Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestServer_ErrorHandler(t *testing.T) {
	s := NewServer()
	s.App().Get("/boom", func(c *fiber.Ctx) error { panic("boom") })
	s.App().Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/boom", fiber.StatusInternalServerError, `{"error":"internal server error"}`},
		{"/teapot", fiber.StatusTeapot, `{"error":"short and stout"}`},
		{"/missing", fiber.StatusNotFound, `{"error":"Cannot GET /missing"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := s.App().Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.body, string(body))
		})
	}
}
