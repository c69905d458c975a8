package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Auth        TokenIssuer
	Emission    EmissionService
	Environment string
	AppVersion  string
	JWTSecret   string
	JWTIssuer   string
}

// Router registra las rutas de la API. /api/auth/token es pública; /api/nfse requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Auth != nil {
		authHandler := NewAuthHandler(deps.Auth)
		app.Post("/api/auth/token", authHandler.Token)
	}

	nfse := app.Group("/api/nfse", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	h := NewNFSeHandler(deps.Emission, deps.Environment, deps.AppVersion)
	nfse.Post("/dps", h.Emit)
	nfse.Post("/dps/preview", h.Preview)
	// submissions antes de /:chave para que no la capture el parámetro.
	nfse.Get("/submissions/:id", h.GetSubmission)
	nfse.Get("/submissions/:id/pdf", h.SummaryPDF)
	nfse.Post("/:chave/cancelamento", h.Cancel)
	nfse.Get("/:chave", h.Query)
}
