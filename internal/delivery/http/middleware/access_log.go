package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const CtxRequestIDKey = "request_id"

// Probe endpoints are only logged when they fail.
var quietPaths = map[string]bool{"/health": true, "/metrics": true}

type AccessLogMiddleware struct {
	logger *log.Logger
}

func NewAccessLogMiddleware(logger *log.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &AccessLogMiddleware{logger: logger}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		if m == nil || m.logger == nil || (quietPaths[c.Path()] && status < fiber.StatusBadRequest) {
			return err
		}

		caller := "-"
		if p := PrincipalFrom(c); p.Authenticated() {
			caller = p.ID.String() + "/" + string(p.Role)
		}
		m.logger.Printf(
			"[HTTP] access | rid=%s ip=%s method=%s path=%s status=%d latency=%s caller=%s ua=%q",
			rid, c.IP(), c.Method(), c.OriginalURL(), status, time.Since(start), caller, c.Get("User-Agent"),
		)
		return err
	}
}

func RequestID(c fiber.Ctx) string {
	rid, _ := c.Locals(CtxRequestIDKey).(string)
	return rid
}
