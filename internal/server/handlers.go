package server

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/spigell/contest-guide/internal/advisor"
	"github.com/spigell/contest-guide/internal/ai"
	"github.com/spigell/contest-guide/internal/config"
)

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(HealthStatus{
		Status:  "healthy",
		Version: config.Version,
		Service: config.Service,
		AIMode:  s.service.Mode(),
		Model:   s.service.Model(),
	})
}

func (s *Server) analyze(c fiber.Ctx) error {
	start := time.Now()

	profile, err := ParseProfile(c.FormValue("user_profile"))
	if err != nil {
		return err
	}
	opts := ParseOptions(c.FormValue("options"))
	contestText := c.FormValue("contest_text")

	var image *ai.Image
	if fh, ferr := c.FormFile("contest_image"); ferr == nil {
		if image, err = readImage(fh); err != nil {
			return err
		}
	}

	if contestText == "" && image == nil {
		return badRequest("Please provide contest text or image")
	}

	out := s.service.Analyze(c.Context(), ai.AnalysisRequest{
		Profile:     profile,
		ContestText: contestText,
		Image:       image,
		Options:     opts,
	})

	return writeSuccess(c, out.Data, newMeta(time.Since(start), out.Model, out.Mode))
}

func (s *Server) extract(c fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest("Image file is required")
	}
	image, err := readImage(fh)
	if err != nil {
		return err
	}

	out := s.service.Extract(c.Context(), *image)
	return writeSuccess(c, out.Data, nil)
}

func (s *Server) suggest(c fiber.Ctx) error {
	var req advisor.AssistantRequest
	if err := c.Bind().Body(&req); err != nil {
		return withCause(fiber.StatusBadRequest, "Invalid request body", err)
	}

	msg, err := advisor.Suggest(req)
	if err != nil {
		return withCause(fiber.StatusInternalServerError, "Failed to generate suggestion", err)
	}
	return writeSuccess(c, msg, nil)
}

func (s *Server) readiness(c fiber.Ctx) error {
	var req advisor.ReadinessRequest
	if err := c.Bind().Body(&req); err != nil {
		return withCause(fiber.StatusBadRequest, "Invalid request body", err)
	}

	result, err := advisor.CalculateReadiness(req)
	if err != nil {
		return withCause(fiber.StatusInternalServerError, "Calculation failed", err)
	}
	return writeSuccess(c, result, nil)
}
