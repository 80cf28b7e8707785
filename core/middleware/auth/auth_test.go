package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		path   string
		header map[string]string
		want   int
	}{
		{"disabled", Config{}, "/companies", nil, 200},
		{"missing key", Config{ApiKey: "k"}, "/companies", nil, 401},
		{"wrong key", Config{ApiKey: "k"}, "/companies", map[string]string{HeaderName: "x"}, 401},
		{"header key", Config{ApiKey: "k"}, "/companies", map[string]string{HeaderName: "k"}, 200},
		{"bearer", Config{ApiKey: "k"}, "/companies", map[string]string{"Authorization": "Bearer k"}, 200},
		{"skipped prefix", Config{ApiKey: "k", Skip: []string{"/metrics"}}, "/metrics", nil, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(New(tt.cfg))
			app.Get(tt.path, func(c *fiber.Ctx) error { return c.SendStatus(200) })

			req := httptest.NewRequest("GET", tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
