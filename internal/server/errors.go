package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const messageInternal = "Internal server error"

// AppError is returned by handlers; the error middleware renders it as a
// failure envelope with StatusCode.
type AppError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func badRequest(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusBadRequest, Message: message}
}

// withCause builds an error whose client-visible message ends with the
// cause, e.g. "Calculation failed: decode progress: ...".
func withCause(status int, prefix string, cause error) *AppError {
	return &AppError{StatusCode: status, Message: prefix + ": " + cause.Error(), Cause: cause}
}

func errorMiddleware(log *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", zap.Any("panic", r), zap.String("path", c.Path()))
				err = writeFailure(c, fiber.StatusInternalServerError, messageInternal)
			}
		}()

		if err = c.Next(); err == nil {
			return nil
		}
		return writeError(log, c, err)
	}
}

func writeError(log *zap.Logger, c fiber.Ctx, err error) error {
	status, msg := normalizeError(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return writeFailure(c, status, msg)
}

func normalizeError(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}
		msg := appErr.Message
		if msg == "" {
			msg = messageInternal
		}
		return status, msg
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code <= 0 || fiberErr.Code >= fiber.StatusInternalServerError {
			return fiber.StatusInternalServerError, messageInternal
		}
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, messageInternal
}
