package listing

import (
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// IngredientController lista editable de ingredientes.
type IngredientController = Editor[int64, entity.Ingredient, entity.IngredientInput]

// NewIngredientController valida el borrador localmente antes de enviarlo.
func NewIngredientController(uc *usecase.IngredientUseCase) *IngredientController {
	return NewEditor[int64, entity.Ingredient, entity.IngredientInput](uc, func(in entity.IngredientInput) error {
		_, err := in.Record()
		return err
	})
}
