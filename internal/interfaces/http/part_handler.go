package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/repository"
)

// partsService casos de uso que consumen los handlers de partes e inventario.
// Lo implementa *parts.Service.
type partsService interface {
	Register(ctx context.Context, actor entity.Actor, in dto.CreatePartRequest) (*dto.PartDTO, error)
	UpdateData(ctx context.Context, actor entity.Actor, id string, in dto.UpdatePartRequest) (*dto.PartDTO, error)
	Get(ctx context.Context, id string) (*dto.PartDTO, error)
	List(ctx context.Context, filter repository.PartFilter, page dto.PageRequest) (*dto.PartListResponse, error)
	All(ctx context.Context) ([]dto.PartDTO, error)
	Sync(ctx context.Context, in []dto.PartDTO) (int, error)
	Locations(category string) ([]dto.LocationDTO, error)
	Stats(ctx context.Context) (*dto.PartStatsResponse, error)
	StockLookup(ctx context.Context, pn string) (*dto.StockLookupResponse, error)
	BrandStats(ctx context.Context) (map[string]int, error)
	LocationBreakdown(ctx context.Context, loc string) (*dto.TagBreakdownResponse, error)
	TypeBreakdown(ctx context.Context, name string) (*dto.TagBreakdownResponse, error)
	Label(ctx context.Context, id string) ([]byte, string, error)
}

// PartHandler maneja las peticiones HTTP de partes (protegido).
type PartHandler struct {
	svc partsService
}

// NewPartHandler construye el handler.
func NewPartHandler(svc partsService) *PartHandler {
	return &PartHandler{svc: svc}
}

// Create godoc
// @Summary      Registrar parte
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePartRequest  true  "Datos de la parte"
// @Success      201   {object}  dto.PartDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/parts [post]
func (h *PartHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePartRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.TagColor == "" || strings.TrimSpace(in.Location) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tagColor y location son requeridos"})
	}
	out, err := h.svc.Register(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener parte por ID
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la parte"
// @Success      200  {object}  dto.PartDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parts/{id} [get]
func (h *PartHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar partes
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        tagColor  query  string  false  "YELLOW | GREEN | WHITE | RED"
// @Param        location  query  string  false  "Ubicación"
// @Param        pn        query  string  false  "Part number"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200       {object}  dto.PartListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/parts [get]
func (h *PartHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	filter := repository.PartFilter{
		TagColor: entity.TagColor(strings.ToUpper(c.Query("tagColor"))),
		Location: c.Query("location"),
		PN:       c.Query("pn"),
	}
	out, err := h.svc.List(c.UserContext(), filter, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar datos de la parte
// @Description  Registra un evento DATA_UPDATE. La etiqueta y la ubicación no cambian por esta vía.
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la parte"
// @Param        body  body  dto.UpdatePartRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.PartDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/parts/{id} [put]
func (h *PartHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePartRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.UpdateData(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Label godoc
// @Summary      Descargar etiqueta PDF
// @Tags         parts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la parte"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/label [get]
func (h *PartHandler) Label(c *fiber.Ctx) error {
	doc, title, err := h.svc.Label(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+title+`.pdf"`)
	return c.Send(doc)
}

// Locations godoc
// @Summary      Destinos para selección rápida
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "QUARANTINE | STORAGE | HANGAR"
// @Success      200       {array}   dto.LocationDTO
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/locations [get]
func (h *PartHandler) Locations(c *fiber.Ctx) error {
	out, err := h.svc.Locations(c.Query("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Conteos por etiqueta y ubicación
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PartStatsResponse
// @Router       /api/stats [get]
func (h *PartHandler) Stats(c *fiber.Ctx) error {
	out, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StockLookup godoc
// @Summary      Existencias de un P/N
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        pn   query  string  true  "Part number"
// @Success      200  {object}  dto.StockLookupResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-lookup [get]
func (h *PartHandler) StockLookup(c *fiber.Ctx) error {
	out, err := h.svc.StockLookup(c.UserContext(), c.Query("pn"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// BrandStats godoc
// @Summary      Top de marcas por número de partes
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/stats/brands [get]
func (h *PartHandler) BrandStats(c *fiber.Ctx) error {
	out, err := h.svc.BrandStats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LocationBreakdown godoc
// @Summary      Conteo por etiqueta en una ubicación
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        loc  query  string  true  "Ubicación"
// @Success      200  {object}  dto.TagBreakdownResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stats/location-breakdown [get]
func (h *PartHandler) LocationBreakdown(c *fiber.Ctx) error {
	out, err := h.svc.LocationBreakdown(c.UserContext(), c.Query("loc"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// TypeBreakdown godoc
// @Summary      Conteo por etiqueta de un tipo de parte
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        name  query  string  true  "Nombre de la parte"
// @Success      200   {object}  dto.TagBreakdownResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stats/type-breakdown [get]
func (h *PartHandler) TypeBreakdown(c *fiber.Ctx) error {
	out, err := h.svc.TypeBreakdown(c.UserContext(), c.Query("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
