// seed carga el catálogo inicial de ingredientes en PostgreSQL dentro de una sola transacción.
// Los ingredientes que ya existen (mismo nombre) se omiten.
//
// Uso: go run ./cmd/seed [ruta/ingredientes.yaml]
// Sin argumento usa el catálogo embebido.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/internal/infrastructure/postgres"
	"github.com/jhoicas/heladeria/pkg/config"
	"github.com/jhoicas/heladeria/pkg/logger"
)

//go:embed ingredientes.yaml
var defaultCatalogue []byte

type catalogue struct {
	Ingredientes []ingredient `yaml:"ingredientes"`
}

type ingredient struct {
	Nombre        string `yaml:"nombre"`
	Precio        string `yaml:"precio"`
	Calorias      int    `yaml:"calorias"`
	Inventario    int    `yaml:"inventario"`
	EsVegetariano bool   `yaml:"es_vegetariano"`
	EsSano        bool   `yaml:"es_sano"`
	Tipo          string `yaml:"tipo"`
	Sabor         string `yaml:"sabor"`
}

func (i ingredient) input() entity.IngredientInput {
	return entity.IngredientInput{
		Name:         i.Nombre,
		Price:        i.Precio,
		Calories:     fmt.Sprint(i.Calorias),
		Inventory:    fmt.Sprint(i.Inventario),
		IsVegetarian: i.EsVegetariano,
		IsHealthy:    i.EsSano,
		Kind:         entity.IngredientKind(i.Tipo),
		Flavor:       i.Sabor,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	raw := defaultCatalogue
	if len(os.Args) > 1 {
		raw, err = os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Str("path", os.Args[1]).Msg("leer catálogo")
		}
	}
	var cat catalogue
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		log.Fatal().Err(err).Msg("decodificar catálogo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var inserted, skipped int
	err = postgres.NewTxRunner(pool).Run(ctx, func(gw *postgres.Gateway) error {
		for _, ing := range cat.Ingredientes {
			ok, err := seedIngredient(ctx, gw, ing)
			if err != nil {
				return fmt.Errorf("%s: %w", ing.Nombre, err)
			}
			if ok {
				inserted++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("carga del catálogo revertida")
	}
	log.Info().Int("insertados", inserted).Int("omitidos", skipped).Msg("catálogo cargado")
}

// seedIngredient inserta ing salvo que ya exista uno con el mismo nombre.
func seedIngredient(ctx context.Context, gw ports.DataGateway, ing ingredient) (bool, error) {
	rec, err := ing.input().Record()
	if err != nil {
		return false, err
	}
	_, err = gw.QueryRecord(ctx, entity.IngredientsTable, ports.Filter{entity.FieldNombre: rec[entity.FieldNombre]})
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, err
	}
	if _, err := gw.InsertRecord(ctx, entity.IngredientsTable, rec); err != nil {
		return false, err
	}
	return true, nil
}
