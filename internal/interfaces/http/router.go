package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/movement"
	"github.com/jhoicas/Activos-api/internal/application/reconcile"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	MovementUC  *movement.UseCase
	ReconcileUC *reconcile.UseCase
	LocRepo     repository.LocationRepository
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Locations (protegido; alta solo admin)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocRepo)
	locations.Post("/", RequireRole(entity.RoleAdmin), locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)

	// Movements (protegido)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Post("/", movementHandler.Create)
	movements.Post("/:id/close", movementHandler.Close)
	movements.Post("/:id/close-source", movementHandler.CloseSource)
	movements.Post("/:id/reject", movementHandler.Reject)
	movements.Post("/:id/items", movementHandler.AddItem)
	movements.Delete("/:id/items/:assetID", movementHandler.RemoveItem)

	// Purchase orders (protegido)
	orders := protected.Group("/orders")
	orderHandler := NewPurchaseOrderHandler(deps.ReconcileUC, deps.MovementUC, deps.LocRepo)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Patch("/:id/lines/:lineID", orderHandler.UpdateLine)
	orders.Get("/:id/unmoved", orderHandler.Unmoved)
	orders.Post("/:id/receive", orderHandler.Receive)
}
