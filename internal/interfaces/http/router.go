package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IngredientUC    *usecase.IngredientUseCase
	UserUC          *usecase.UserUseCase
	ProductUC       *usecase.ProductUseCase
	ProfitabilityUC *usecase.ProfitabilityUseCase
	JWTSecret       string
	Log             *logger.Logger
}

// Router registra las rutas de la API. Cada ruta se habilita con la misma tabla de
// pantallas que usa el cliente de terminal.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", OptionalAuth(deps.JWTSecret), RoleMiddleware(deps.UserUC, deps.Log))

	sessionHandler := NewSessionHandler()
	api.Get("/session", sessionHandler.Session)
	api.Get("/screens", sessionHandler.Screens)

	// Products (catálogo público; la venta requiere sesión)
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products", RequireScreen(views.ScreenProducts))
	products.Get("/", productHandler.List)
	products.Post("/:id/sell", RequireSession(), productHandler.Sell)

	// Ingredients (admin, empleado)
	ingredientHandler := NewIngredientHandler(deps.IngredientUC)
	ingredients := api.Group("/ingredients", RequireScreen(views.ScreenIngredients))
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Post("/", ingredientHandler.Create)
	ingredients.Put("/:id", ingredientHandler.Update)
	ingredients.Delete("/:id", ingredientHandler.Delete)

	// Users (admin)
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/users")
	users.Get("/", RequireScreen(views.ScreenUsers), userHandler.List)
	users.Put("/:id/role", RequireScreen(views.ScreenUsers), userHandler.UpdateRole)
	users.Post("/", RequireScreen(views.ScreenCreateUser), userHandler.Create)

	// Profitability (admin)
	if deps.ProfitabilityUC != nil {
		profitHandler := NewProfitabilityHandler(deps.ProfitabilityUC)
		profit := api.Group("/profitability", RequireScreen(views.ScreenProfitability))
		profit.Get("/", profitHandler.Report)
		profit.Get("/pdf", profitHandler.PDF)
	}
}
