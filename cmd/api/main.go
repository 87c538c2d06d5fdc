package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/heladeria/docs"
	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	infrapdf "github.com/jhoicas/heladeria/internal/infrastructure/pdf"
	"github.com/jhoicas/heladeria/internal/infrastructure/postgres"
	"github.com/jhoicas/heladeria/internal/infrastructure/supabase"
	httpRouter "github.com/jhoicas/heladeria/internal/interfaces/http"
	"github.com/jhoicas/heladeria/pkg/config"
	"github.com/jhoicas/heladeria/pkg/logger"
)

// @title        Heladería El Buen Sabor API
// @version      1.0
// @description  Catálogo, inventario de ingredientes, usuarios y rentabilidad.
// @BasePath     /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	gateway := postgres.NewGateway(pool)

	// El alta de usuarios registra la cuenta en el servicio de auth alojado; sin él, solo se
	// deshabilita esa operación.
	var authGW ports.AuthGateway
	if err := cfg.Supabase.Validate(); err == nil {
		client, err := supabase.NewClient(cfg.Supabase, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente del servicio de auth")
		}
		sbAuth := supabase.NewAuth(client, &supabase.MemoryStore{})
		defer sbAuth.Close()
		authGW = sbAuth
	} else {
		log.Warn().Err(err).Msg("servicio de auth no configurado: alta de usuarios deshabilitada")
	}
	if cfg.Supabase.JWTSecret == "" {
		log.Warn().Msg("SUPABASE_JWT_SECRET vacío: toda petición con token será rechazada")
	}

	ingredientUC := usecase.NewIngredientUseCase(gateway)
	userUC := usecase.NewUserUseCase(gateway, authGW)
	productUC := usecase.NewProductUseCase(gateway)
	profitabilityUC := usecase.NewProfitabilityUseCase(productUC, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Heladería API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if err := pool.Ping(c.UserContext()); err != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{"status": status, "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		IngredientUC:    ingredientUC,
		UserUC:          userUC,
		ProductUC:       productUC,
		ProfitabilityUC: profitabilityUC,
		JWTSecret:       cfg.Supabase.JWTSecret,
		Log:             log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
