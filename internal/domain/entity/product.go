package entity

import "github.com/shopspring/decimal"

// Vistas y procedimiento del backend para productos.
const (
	ProfitabilityView = "v_rentabilidad_producto"
	CaloriesView      = "v_calorias_producto"
	SellProcedure     = "vender_producto"
	SellParam         = "producto_id_param"

	FieldProductoID    = "producto_id"
	FieldPrecioPublico = "precio_publico"
	FieldCosto         = "costo"
	FieldRentabilidad  = "rentabilidad"
	FieldTotalCalorias = "total_calorias"
)

// Product proyección de solo lectura armada al unir la vista de rentabilidad con la de calorías.
// TotalCalories es nil cuando la vista de calorías no tiene fila para el producto.
type Product struct {
	ID            int64
	Name          string
	PublicPrice   decimal.Decimal
	Cost          decimal.Decimal
	Profitability decimal.Decimal
	TotalCalories *int
}

// Key identidad usada por las colecciones locales.
func (p Product) Key() int64 { return p.ID }

// ProductFromRecord decodifica una fila de v_rentabilidad_producto.
func ProductFromRecord(rec Record) (Product, error) {
	id, err := rec.Int64(FieldProductoID)
	if err != nil {
		return Product{}, err
	}
	name, _ := rec.String(FieldNombre)
	price, _ := rec.Decimal(FieldPrecioPublico)
	cost, _ := rec.Decimal(FieldCosto)
	profit, _ := rec.Decimal(FieldRentabilidad)
	return Product{ID: id, Name: name, PublicPrice: price, Cost: cost, Profitability: profit}, nil
}

// CaloriesFromRecord decodifica una fila de v_calorias_producto.
func CaloriesFromRecord(rec Record) (productID int64, total *int, err error) {
	productID, err = rec.Int64(FieldProductoID)
	if err != nil {
		return 0, nil, err
	}
	return productID, rec.OptionalInt(FieldTotalCalorias), nil
}
