package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// IngredientUseCase casos de uso CRUD para ingredientes sobre el backend alojado.
type IngredientUseCase struct {
	gw ports.DataGateway
}

// NewIngredientUseCase construye el caso de uso.
func NewIngredientUseCase(gw ports.DataGateway) *IngredientUseCase {
	return &IngredientUseCase{gw: gw}
}

// List devuelve todos los ingredientes en una sola petición.
func (uc *IngredientUseCase) List(ctx context.Context) ([]entity.Ingredient, error) {
	recs, err := uc.gw.QueryCollection(ctx, entity.IngredientsTable)
	if err != nil {
		return nil, err
	}
	list := make([]entity.Ingredient, 0, len(recs))
	for _, rec := range recs {
		ing, err := entity.IngredientFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decodificar ingrediente: %w", err)
		}
		list = append(list, ing)
	}
	return list, nil
}

// Create valida el borrador e inserta. Devuelve el ingrediente con el id asignado por el almacén.
func (uc *IngredientUseCase) Create(ctx context.Context, in entity.IngredientInput) (entity.Ingredient, error) {
	fields, err := in.Record()
	if err != nil {
		return entity.Ingredient{}, err
	}
	rec, err := uc.gw.InsertRecord(ctx, entity.IngredientsTable, fields)
	if err != nil {
		return entity.Ingredient{}, err
	}
	return entity.IngredientFromRecord(rec)
}

// Update reemplaza todos los campos editables del ingrediente in.ID.
func (uc *IngredientUseCase) Update(ctx context.Context, in entity.IngredientInput) (entity.Ingredient, error) {
	if in.ID == 0 {
		return entity.Ingredient{}, domain.Invalid(entity.FieldID, "es obligatorio")
	}
	fields, err := in.Record()
	if err != nil {
		return entity.Ingredient{}, err
	}
	rec, err := uc.gw.UpdateRecord(ctx, entity.IngredientsTable, in.ID, fields)
	if err != nil {
		return entity.Ingredient{}, err
	}
	return entity.IngredientFromRecord(rec)
}

// Delete elimina un ingrediente por ID.
func (uc *IngredientUseCase) Delete(ctx context.Context, id int64) error {
	return uc.gw.DeleteRecord(ctx, entity.IngredientsTable, id)
}
