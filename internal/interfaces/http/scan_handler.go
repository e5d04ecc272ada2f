package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain"
)

// ScanHandler expone las sesiones de doble escaneo. Cada evento devuelve la sesión
// resultante; los rechazos del flujo (parte no encontrada, destino inválido, fallo de
// persistencia) viajan como lastError dentro de un 200.
type ScanHandler struct {
	sessions *scanflow.Registry
}

// NewScanHandler construye el handler.
func NewScanHandler(sessions *scanflow.Registry) *ScanHandler {
	return &ScanHandler{sessions: sessions}
}

// Open godoc
// @Summary      Abrir sesión de escaneo
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.SessionResponse
// @Router       /api/scan/sessions [post]
func (h *ScanHandler) Open(c *fiber.Ctx) error {
	m := h.sessions.Open(ActorFrom(c))
	return c.Status(fiber.StatusCreated).JSON(dto.SessionFromScanflow(m.Snapshot()))
}

// Get godoc
// @Summary      Estado de la sesión
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id} [get]
func (h *ScanHandler) Get(c *fiber.Ctx) error {
	m, err := h.sessions.Get(c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SessionFromScanflow(m.Snapshot()))
}

// Close godoc
// @Summary      Cerrar sesión
// @Tags         scan
// @Security     Bearer
// @Param        id   path  string  true  "ID de la sesión"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id} [delete]
func (h *ScanHandler) Close(c *fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Scan godoc
// @Summary      Escaneo genérico (parte o destino según el paso)
// @Tags         scan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de la sesión"
// @Param        body  body  dto.ScanRequest  true  "Texto decodificado"
// @Success      200   {object}  dto.SessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id}/scan [post]
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) {
		return m.HandleScan(c.UserContext(), in.Code)
	})
}

// Part godoc
// @Summary      Escanear parte
// @Tags         scan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de la sesión"
// @Param        body  body  dto.ScanRequest  true  "Código de la parte o URL /scan/{id}"
// @Success      200   {object}  dto.SessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id}/part [post]
func (h *ScanHandler) Part(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) {
		return m.ScanPart(c.UserContext(), in.Code)
	})
}

// Destination godoc
// @Summary      Escanear o elegir destino
// @Tags         scan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la sesión"
// @Param        body  body  dto.DestinationRequest  true  "Destino"
// @Success      200   {object}  dto.SessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id}/destination [post]
func (h *ScanHandler) Destination(c *fiber.Ctx) error {
	var in dto.DestinationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) {
		if in.Quick {
			return m.SelectDestination(c.UserContext(), in.Code)
		}
		return m.ScanDestination(c.UserContext(), in.Code)
	})
}

// Confirm godoc
// @Summary      Confirmar traslado
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id}/confirm [post]
func (h *ScanHandler) Confirm(c *fiber.Ctx) error {
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) {
		return m.Confirm(c.UserContext())
	})
}

// Override godoc
// @Summary      Forzar traslado de material rechazado
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id}/override [post]
func (h *ScanHandler) Override(c *fiber.Ctx) error {
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) {
		return m.Override(c.UserContext())
	})
}

// Back godoc
// @Summary      Volver a elegir destino
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/scan/sessions/{id}/back [post]
func (h *ScanHandler) Back(c *fiber.Ctx) error {
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) { return m.Back() })
}

// Cancel godoc
// @Summary      Cancelar el traslado en curso
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/scan/sessions/{id}/cancel [post]
func (h *ScanHandler) Cancel(c *fiber.Ctx) error {
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) { return m.Cancel() })
}

// Reset godoc
// @Summary      Nuevo traslado tras un éxito
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/scan/sessions/{id}/reset [post]
func (h *ScanHandler) Reset(c *fiber.Ctx) error {
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) { return m.Reset() })
}

// Reprint godoc
// @Summary      Reimprimir la etiqueta del último traslado
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/scan/sessions/{id}/reprint [post]
func (h *ScanHandler) Reprint(c *fiber.Ctx) error {
	return h.event(c, func(m *scanflow.Machine) (scanflow.Session, error) {
		return m.Reprint(c.UserContext())
	})
}

// event resuelve la sesión del operador y aplica fn. Ocupada, transición inválida y
// acceso ajeno son errores HTTP; el resto queda en la sesión devuelta.
func (h *ScanHandler) event(c *fiber.Ctx, fn func(m *scanflow.Machine) (scanflow.Session, error)) error {
	m, err := h.sessions.Get(c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	s, err := fn(m)
	if err != nil && !flowRejection(err) {
		return writeError(c, err)
	}
	return c.JSON(dto.SessionFromScanflow(s))
}

func flowRejection(err error) bool {
	return !errors.Is(err, domain.ErrSessionBusy) &&
		!errors.Is(err, domain.ErrInvalidTransition) &&
		!errors.Is(err, domain.ErrForbidden) &&
		!errors.Is(err, domain.ErrNotFound)
}
