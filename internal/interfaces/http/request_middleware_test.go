package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/nfse-emissor/internal/interfaces/http"
)

func TestRequestLogger_GeneraYPropagaID(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.New(&buf)))
	app.Get("/ping", func(c *fiber.Ctx) error {
		zerolog.Ctx(c.UserContext()).Info().Msg("dentro del handler")
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	id := resp.Header.Get("X-Request-ID")
	require.Len(t, id, 36, "uuid generado")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, l := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(l, &entry))
		assert.Equal(t, id, entry["request_id"], "todas las líneas llevan el mismo request_id")
	}

	var access map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, "/ping", access["path"])
	assert.EqualValues(t, 200, access["status"])
}

func TestRequestLogger_RespetaIDDelCliente(t *testing.T) {
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.Nop()))
	app.Get("/ping", func(c *fiber.Ctx) error { return fiber.ErrTeapot })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode, "el error se traduce antes de registrar")
}
