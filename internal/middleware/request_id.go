package middleware

import (
	"GateROI/pkg/utils"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDKey = "X-Request-ID"

var clientRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// NewRequestIDMiddleware keeps a well formed incoming X-Request-ID and
// otherwise assigns a ULID. The id is echoed in the response.
func NewRequestIDMiddleware() fiber.Handler {
	return requestIDHandler(utils.New())
}

func requestIDHandler(ids utils.IUtils) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)
		if !clientRequestID.MatchString(requestID) {
			id, err := ids.NewULIDFromTimestamp(time.Now())
			if err != nil {
				// entropy exhausted; a UUID still keeps logs correlated
				id = uuid.NewString()
			}
			requestID = id
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
