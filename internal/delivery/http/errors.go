package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

// NewErrorHandler renders errors as JSON under /api and as an HTML page elsewhere
func NewErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	log = log.WithField("component", "http")

	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		requestID := c.GetRespHeader(fiber.HeaderXRequestID)
		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     c.Method(),
				"path":       c.Path(),
				"status":     code,
			}).Error("Request failed")
		}

		if isAPI(c) {
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		}

		data := errorData{
			Title:     pageTitle,
			Code:      code,
			Status:    utils.StatusMessage(code),
			Message:   message,
			RequestID: requestID,
		}
		if err := renderHTML(c, code, "error.html", data); err != nil {
			return c.Status(code).SendString(message)
		}
		return nil
	}
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || p == "/health"
}
