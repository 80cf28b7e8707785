package rayid

import (
	"net/http/httptest"
	"testing"

	"company-manager/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(FromCtx(c))
	})
	return app
}

func TestRayID_Generated(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	id := resp.Header.Get(HeaderName)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRayID_ReusesValidHeader(t *testing.T) {
	want := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderName, want)

	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, want, resp.Header.Get(HeaderName))
}

func TestRayID_ReplacesGarbage(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderName, "not-a-uuid")

	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(HeaderName))
}

func TestRayID_TagsRejectedRequests(t *testing.T) {
	app := fiber.New()
	app.Use(New())
	app.Use(auth.New(auth.Config{ApiKey: "k"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(HeaderName))
	assert.NoError(t, err)
}
