package server

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires the devserver's endpoints. Scan routes sit behind the
// device auth middleware; health and login are public.
func SetupRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	api.Get("/health", h.Health)
	api.Post("/auth/login", h.Login)

	authed := api.Use(AuthMiddleware())
	authed.Post("/stores/:id/qr", h.MintQR)

	scan := authed.Group("/scan")
	scan.Post("/validate", h.ValidateScan)
	scan.Post("/checkin", h.ProcessCheckIn)
	scan.Post("/geofence", h.CheckGeofence)
	scan.Post("/log", h.LogScan)
}
