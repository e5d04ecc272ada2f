package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Parts     partsService
	Sessions  *scanflow.Registry
	JWTSecret string
}

// Roles con permiso de escritura sobre datos de partes; bodega además sincroniza inventario.
var (
	editorRoles = []string{"admin", "tecnico", "inspector"}
	syncRoles   = append([]string{"bodega"}, editorRoles...)
)

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Parts
	partHandler := NewPartHandler(deps.Parts)
	parts := api.Group("/parts")
	parts.Get("/", partHandler.List)
	parts.Post("/", RequireRole(editorRoles...), partHandler.Create)
	parts.Get("/:id", partHandler.GetByID)
	parts.Put("/:id", RequireRole(editorRoles...), partHandler.Update)
	parts.Get("/:id/label", partHandler.Label)
	api.Get("/locations", partHandler.Locations)
	api.Get("/stats", partHandler.Stats)
	api.Get("/stats/brands", partHandler.BrandStats)
	api.Get("/stats/location-breakdown", partHandler.LocationBreakdown)
	api.Get("/stats/type-breakdown", partHandler.TypeBreakdown)
	api.Get("/stock-lookup", partHandler.StockLookup)

	// Inventory (compatible con el backend)
	inventoryHandler := NewInventoryHandler(deps.Parts)
	inventory := api.Group("/inventory")
	inventory.Get("/", inventoryHandler.List)
	inventory.Post("/", RequireRole(syncRoles...), inventoryHandler.Save)

	// Scan sessions
	scanHandler := NewScanHandler(deps.Sessions)
	sessions := api.Group("/scan/sessions")
	sessions.Post("/", scanHandler.Open)
	sessions.Get("/:id", scanHandler.Get)
	sessions.Delete("/:id", scanHandler.Close)
	sessions.Post("/:id/scan", scanHandler.Scan)
	sessions.Post("/:id/part", scanHandler.Part)
	sessions.Post("/:id/destination", scanHandler.Destination)
	sessions.Post("/:id/confirm", scanHandler.Confirm)
	sessions.Post("/:id/override", scanHandler.Override)
	sessions.Post("/:id/back", scanHandler.Back)
	sessions.Post("/:id/cancel", scanHandler.Cancel)
	sessions.Post("/:id/reset", scanHandler.Reset)
	sessions.Post("/:id/reprint", scanHandler.Reprint)
}
