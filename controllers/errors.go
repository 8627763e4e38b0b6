package controllers

import (
	"github.com/gofiber/fiber/v2"

	"reachly/apperrors"
)

// statusForError maps engine error categories onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return fiber.StatusNotFound
	case apperrors.IsValidation(err):
		return fiber.StatusBadRequest
	case apperrors.IsConfiguration(err):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
