package web

import (
	"errors"

	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// apiProblem carries the server error code next to the problem fields.
type apiProblem struct {
	problems.Problem

	Code int `json:"code"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleKerioError maps translator and transport failures to problems.
func handleKerioError(c fiber.Ctx, err error) error {
	var apiErr *kerio.APIError

	switch {
	case kerio.IsUnsupportedOperation(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("unsupported_operation").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case kerio.IsValidationError(err):
		return badRequest(c, err.Error())

	case kerio.IsInvalidCredentials(err) && errors.As(err, &apiErr):
		problem := apiProblem{
			Problem: *problems.NewStatusProblem(401).
				WithInstance(c.Path()).
				WithType("invalid_credentials").
				WithDetail(apiErr.Message),
			Code: apiErr.Code,
		}

		return c.Status(fiber.StatusUnauthorized).JSON(problem)

	case errors.As(err, &apiErr):
		problem := apiProblem{
			Problem: *problems.NewStatusProblem(502).
				WithInstance(c.Path()).
				WithType("api_error").
				WithDetail(apiErr.Message),
			Code: apiErr.Code,
		}

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case kerio.IsTransportError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("transport_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
