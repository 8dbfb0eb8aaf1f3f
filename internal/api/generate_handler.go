package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ProxyModelRun forwards a generation request verbatim to the external
// model API and copies the response back untouched. Auth gating happens in
// the middleware chain; this handler knows nothing about request shapes.
func ProxyModelRun(baseURL, apiKey, targetPath string) fiber.Handler {
	otelClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return func(c *fiber.Ctx) error {
		targetURL := baseURL + targetPath

		body := c.Body()
		req, err := http.NewRequestWithContext(c.UserContext(), c.Method(), targetURL, bytes.NewReader(body))
		if err != nil {
			return err
		}

		c.Request().Header.VisitAll(func(key, value []byte) {
			req.Header.Set(string(key), string(value))
		})
		req.ContentLength = int64(len(body))

		// The client's session credentials must not leak to the provider,
		// whether they arrived as a cookie or a Bearer header.
		req.Header.Del("Cookie")
		req.Header.Del("Authorization")
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}

		resp, err := otelClient.Do(req)

		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Model API unavailable",
			})
		}

		defer resp.Body.Close()

		c.Status(resp.StatusCode)
		for key, values := range resp.Header {
			for _, value := range values {
				c.Set(key, value)
			}
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		c.Context().SetBody(bodyBytes)

		return nil
	}
}
