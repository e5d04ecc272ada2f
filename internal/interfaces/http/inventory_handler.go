package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
)

// InventoryHandler API compatible con el backend de inventario: lista completa y upsert por lotes.
type InventoryHandler struct {
	svc partsService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc partsService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List godoc
// @Summary      Inventario completo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PartDTO
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.svc.All(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		out = []dto.PartDTO{}
	}
	return c.JSON(out)
}

// Save godoc
// @Summary      Guardar partes (upsert)
// @Description  Crea las partes nuevas y actualiza las existentes. El historial guardado debe
// @Description  ser prefijo del recibido; si alguna parte lo reescribe no se guarda ninguna.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  []dto.PartDTO  true  "Partes"
// @Success      200   {object}  dto.SyncResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Save(c *fiber.Ctx) error {
	var in []dto.PartDTO
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	n, err := h.svc.Sync(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SyncResponse{Message: "inventario guardado", Saved: n})
}
