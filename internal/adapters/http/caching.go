package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint, unless the handler already set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}
		if c.Response().StatusCode() >= 400 {
			c.Set("Cache-Control", "no-store")
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/navigation/"):
			ttl = "no-cache" // live session state

		case strings.HasPrefix(path, "/v1/markers"):
			ttl = "public, max-age=30"

		case strings.HasPrefix(path, "/v1/spots/"):
			ttl = "public, max-age=600" // single spot

		case strings.HasPrefix(path, "/v1/spots"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/bounds/"), strings.HasPrefix(path, "/v1/coordinates/"):
			ttl = "public, max-age=86400" // pure computation

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
