package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalRequestID clave en c.Locals del identificador de la petición.
const LocalRequestID = "request_id"

// RequestLogger asigna X-Request-ID (si el cliente no lo envía), deja un logger con ese id en el
// contexto de la petición y registra método, ruta, status y duración.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalRequestID, id)
		c.Set(fiber.HeaderXRequestID, id)

		reqLog := log.With().Str("request_id", id).Logger()
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		start := time.Now()
		err := c.Next()
		if err != nil {
			// el ErrorHandler escribe la respuesta; se registra el status final
			_ = c.App().ErrorHandler(c, err)
		}

		status := c.Response().StatusCode()
		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_id", GetClientID(c)).
			Msg("petición HTTP")
		return nil
	}
}
