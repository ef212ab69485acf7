package server

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/spigell/contest-guide/internal/config"
)

// Envelope wraps every endpoint reply. Failures carry Error and a null Data.
type Envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
	Meta    *Meta   `json:"meta,omitempty"`
}

type Meta struct {
	ProcessingTime int64       `json:"processingTime"`
	ModelUsed      string      `json:"modelUsed"`
	AIMode         config.Mode `json:"aiMode"`
}

func newMeta(elapsed time.Duration, model string, mode config.Mode) *Meta {
	return &Meta{ProcessingTime: elapsed.Milliseconds(), ModelUsed: model, AIMode: mode}
}

func writeSuccess(c fiber.Ctx, data any, meta *Meta) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data, Meta: meta})
}

func writeFailure(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: &message})
}

type HealthStatus struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Service string      `json:"service"`
	AIMode  config.Mode `json:"aiMode"`
	Model   string      `json:"model"`
}
