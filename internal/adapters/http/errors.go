package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`  // Error code: parse_error, range_error, compute_error, etc.
	Message   string `json:"error"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID. Errors are never
// cacheable: the body carries a per-request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// computeErrorMessage is all a client learns about a ComputeError.
const computeErrorMessage = "computation error: the distance could not be computed"

// errFromCalculation maps calculator errors onto HTTP responses.
func errFromCalculation(c *fiber.Ctx, err error) error {
	status, code, msg := classify(err)
	if status >= fiber.StatusInternalServerError {
		logging.FromContext(c.UserContext()).Error("distance calculation failed", "error", err)
	}
	return newError(c, status, code, msg)
}

func classify(err error) (status int, code, msg string) {
	var (
		pe *domain.ParseError
		re *domain.RangeError
	)
	switch {
	case errors.As(err, &pe):
		return fiber.StatusBadRequest, "parse_error", err.Error()
	case errors.As(err, &re):
		return fiber.StatusBadRequest, "range_error", err.Error()
	default:
		return fiber.StatusInternalServerError, "compute_error", computeErrorMessage
	}
}
