package httpx

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, kind string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Kind:      kind,
		RequestID: requestID(c),
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, string(errs.KindValidation), message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, string(errs.KindAuthentication), message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, string(errs.KindPermission), message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, string(errs.KindNotFound), message)
}

func Internal(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, string(errs.KindPersistence), message)
}

// FromError renders a classified error with the status its Kind maps to.
func FromError(c *fiber.Ctx, err error) error {
	kind := errs.KindOf(err)
	status := fiber.StatusInternalServerError
	switch kind {
	case errs.KindAuthentication:
		status = fiber.StatusUnauthorized
	case errs.KindPermission:
		status = fiber.StatusForbidden
	case errs.KindValidation:
		status = fiber.StatusBadRequest
	case errs.KindNotFound:
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     err.Error(),
		Kind:      string(kind),
		Retryable: errs.Retryable(err),
		RequestID: requestID(c),
	})
}

func LocalUint(c *fiber.Ctx, key string) (uint, error) {
	v := c.Locals(key)
	if v == nil {
		return 0, fmt.Errorf("missing local %s", key)
	}
	u, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid local %s", key)
	}
	return u, nil
}
