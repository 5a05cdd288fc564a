package server

import (
	"errors"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register handles POST /auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
			// A taken username is an unprocessable registration, not a plain conflict.
			return models.RespondWithError(c, fiber.StatusUnprocessableEntity, appErr)
		}
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /auth/login. Credentials are accepted as JSON or as an
// OAuth2-style form body.
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	token, err := s.authService.Login(c.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(token)
}

// DeleteAccount handles DELETE /auth
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := s.currentUserID(c)

	if err := s.authService.DeleteAccount(c.Context(), userID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
