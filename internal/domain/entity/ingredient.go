package entity

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria/internal/domain"
)

// Tabla y columnas de ingredientes.
const (
	IngredientsTable = "ingredientes"

	FieldPrecio        = "precio"
	FieldCalorias      = "calorias"
	FieldInventario    = "inventario"
	FieldTipo          = "tipo"
	FieldSabor         = "sabor"
	FieldEsVegetariano = "es_vegetariano"
	FieldEsSano        = "es_sano"
)

// IngredientKind categoría del ingrediente.
type IngredientKind string

const (
	KindBase    IngredientKind = "base"
	KindTopping IngredientKind = "complemento"
)

// Ingredient ingrediente del inventario. Flavor solo existe cuando Kind es base.
type Ingredient struct {
	ID           int64
	Name         string
	Price        decimal.Decimal
	Calories     int
	Inventory    int
	IsVegetarian bool
	IsHealthy    bool
	Kind         IngredientKind
	Flavor       *string
}

// IngredientFromRecord decodifica una fila de ingredientes.
func IngredientFromRecord(rec Record) (Ingredient, error) {
	id, err := rec.Int64(FieldID)
	if err != nil {
		return Ingredient{}, err
	}
	name, _ := rec.String(FieldNombre)
	price, err := rec.Decimal(FieldPrecio)
	if err != nil && rec.Has(FieldPrecio) {
		return Ingredient{}, err
	}
	calories, _ := rec.Int(FieldCalorias)
	inventory, _ := rec.Int(FieldInventario)
	kind, _ := rec.String(FieldTipo)
	ing := Ingredient{
		ID:           id,
		Name:         name,
		Price:        price,
		Calories:     calories,
		Inventory:    inventory,
		IsVegetarian: rec.Bool(FieldEsVegetariano),
		IsHealthy:    rec.Bool(FieldEsSano),
		Kind:         IngredientKind(kind),
	}
	if ing.Kind == KindBase {
		ing.Flavor = rec.OptionalString(FieldSabor)
	}
	return ing, nil
}

// Key identidad usada por las colecciones locales.
func (i Ingredient) Key() int64 { return i.ID }

// Input devuelve el borrador editable con los valores actuales (para el formulario de edición).
func (i Ingredient) Input() IngredientInput {
	in := IngredientInput{
		Name:         i.Name,
		Price:        i.Price.String(),
		Calories:     strconv.Itoa(i.Calories),
		Inventory:    strconv.Itoa(i.Inventory),
		IsVegetarian: i.IsVegetarian,
		IsHealthy:    i.IsHealthy,
		Kind:         i.Kind,
	}
	if in.Kind == "" {
		in.Kind = KindTopping
	}
	if i.Flavor != nil {
		in.Flavor = *i.Flavor
	}
	return in
}

// IngredientInput borrador de ingrediente tal como se captura en un formulario (números como texto).
type IngredientInput struct {
	ID           int64 // 0 en altas
	Name         string
	Price        string
	Calories     string
	Inventory    string
	IsVegetarian bool
	IsHealthy    bool
	Kind         IngredientKind
	Flavor       string
}

// NewIngredientInput borrador vacío con los valores por defecto del formulario de alta.
func NewIngredientInput() IngredientInput {
	return IngredientInput{Kind: KindTopping}
}

// Record valida el borrador y devuelve las columnas a enviar.
// sabor se envía NULL salvo cuando tipo es base, donde es obligatorio.
func (in IngredientInput) Record() (Record, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid(FieldNombre, "es obligatorio")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return nil, domain.Invalid(FieldPrecio, "debe ser un número")
	}
	if price.IsNegative() {
		return nil, domain.Invalid(FieldPrecio, "no puede ser negativo")
	}
	calories, err := parseCount(FieldCalorias, in.Calories)
	if err != nil {
		return nil, err
	}
	inventory, err := parseCount(FieldInventario, in.Inventory)
	if err != nil {
		return nil, err
	}
	kind := in.Kind
	if kind == "" {
		kind = KindTopping
	}
	if kind != KindBase && kind != KindTopping {
		return nil, domain.Invalid(FieldTipo, "debe ser base o complemento")
	}
	var flavor any
	if kind == KindBase {
		f := strings.TrimSpace(in.Flavor)
		if f == "" {
			return nil, domain.Invalid(FieldSabor, "es obligatorio para ingredientes base")
		}
		flavor = f
	}
	return Record{
		FieldNombre:        name,
		FieldPrecio:        price,
		FieldCalorias:      calories,
		FieldInventario:    inventory,
		FieldEsVegetariano: in.IsVegetarian,
		FieldEsSano:        in.IsHealthy,
		FieldTipo:          string(kind),
		FieldSabor:         flavor,
	}, nil
}

func parseCount(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, domain.Invalid(field, "debe ser un número entero")
	}
	if n < 0 {
		return 0, domain.Invalid(field, "no puede ser negativo")
	}
	return n, nil
}
