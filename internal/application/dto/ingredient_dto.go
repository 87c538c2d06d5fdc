package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// IngredientRequest alta o edición de ingrediente. Los números llegan como texto o número JSON.
type IngredientRequest struct {
	Name         string          `json:"nombre"`
	Price        decimal.Decimal `json:"precio"`
	Calories     int             `json:"calorias"`
	Inventory    int             `json:"inventario"`
	IsVegetarian bool            `json:"es_vegetariano"`
	IsHealthy    bool            `json:"es_sano"`
	Kind         string          `json:"tipo"`
	Flavor       *string         `json:"sabor"`
}

// Input convierte la petición en el borrador que valida el dominio.
func (r IngredientRequest) Input(id int64) entity.IngredientInput {
	in := entity.NewIngredientInput()
	in.ID = id
	in.Name = r.Name
	in.Price = r.Price.String()
	in.Calories = itoa(r.Calories)
	in.Inventory = itoa(r.Inventory)
	in.IsVegetarian = r.IsVegetarian
	in.IsHealthy = r.IsHealthy
	if r.Kind != "" {
		in.Kind = entity.IngredientKind(r.Kind)
	}
	if r.Flavor != nil {
		in.Flavor = *r.Flavor
	}
	return in
}

// IngredientResponse ingrediente.
type IngredientResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"nombre"`
	Price        decimal.Decimal `json:"precio"`
	Calories     int             `json:"calorias"`
	Inventory    int             `json:"inventario"`
	IsVegetarian bool            `json:"es_vegetariano"`
	IsHealthy    bool            `json:"es_sano"`
	Kind         string          `json:"tipo"`
	Flavor       *string         `json:"sabor"`
}

// NewIngredientResponse convierte la entidad.
func NewIngredientResponse(i entity.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:           i.ID,
		Name:         i.Name,
		Price:        i.Price,
		Calories:     i.Calories,
		Inventory:    i.Inventory,
		IsVegetarian: i.IsVegetarian,
		IsHealthy:    i.IsHealthy,
		Kind:         string(i.Kind),
		Flavor:       i.Flavor,
	}
}
