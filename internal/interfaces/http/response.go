package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

func respondOK(c *fiber.Ctx, data any) error {
	return c.JSON(dto.Response{Success: true, Data: data})
}

func respondCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(dto.Response{Success: true, Data: data})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(dto.Response{Success: true, Message: message})
}

// respondError traduce errores de dominio a códigos HTTP. Las violaciones de
// validación viajan completas en errors[] para que el cliente corrija todo de
// una vuelta.
func respondError(c *fiber.Ctx, err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{
			Success: false,
			Message: "datos inválidos",
			Errors:  vErr.Violations,
		})
	}

	var insErr *domain.InsufficientStockError
	if errors.As(err, &insErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.Response{
			Success: false,
			Message: insErr.Error(),
		})
	}

	status := fiber.StatusInternalServerError
	message := "error interno"
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTransfer):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = fiber.StatusNotFound, "recurso no encontrado"
	case errors.Is(err, domain.ErrDuplicate):
		status, message = fiber.StatusConflict, "ya existe un recurso con esa clave"
	case errors.Is(err, domain.ErrLocationInUse):
		status, message = fiber.StatusConflict, "la ubicación tiene stock o movimientos asociados"
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrConcurrencyConflict):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrTimeout):
		status, message = fiber.StatusGatewayTimeout, "la operación expiró; es seguro reintentarla"
	case errors.Is(err, domain.ErrUnauthorized):
		status, message = fiber.StatusUnauthorized, "no autorizado"
	}
	return c.Status(status).JSON(dto.Response{Success: false, Message: message})
}
