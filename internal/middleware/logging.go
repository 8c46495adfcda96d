package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

// RequestLogger attaches a request-scoped logger to the context and logs every
// request once it completes
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		log := base.With().Str("request_id", requestID).Logger()
		c.SetContext(logger.WithContext(c.Context(), log))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = utils.StatusOf(err)
		}

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")

		return err
	}
}
