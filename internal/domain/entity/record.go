package entity

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record fila tal como la devuelve el backend, indexada por nombre de columna.
// Los adaptadores producen tipos distintos para la misma columna (pgx: int64, decimal.Decimal,
// [16]byte; REST: json.Number, string), así que los accesores aceptan todas las variantes.
type Record map[string]any

// Has indica si la columna existe y no es NULL.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String lee una columna de texto (o uuid).
func (r Record) String(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", fmt.Errorf("columna %s: ausente", key)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case [16]byte:
		return uuid.UUID(t).String(), nil
	case uuid.UUID:
		return t.String(), nil
	case json.Number:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return fmt.Sprint(t), nil
	}
}

// OptionalString lee una columna de texto que puede ser NULL.
func (r Record) OptionalString(key string) *string {
	if !r.Has(key) {
		return nil
	}
	s, err := r.String(key)
	if err != nil {
		return nil
	}
	return &s
}

// Int64 lee una columna entera.
func (r Record) Int64(key string) (int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("columna %s: ausente", key)
	}
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case json.Number:
		return t.Int64()
	case decimal.Decimal:
		return t.IntPart(), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("columna %s: tipo %T no es entero", key, v)
	}
}

// Int lee una columna entera como int.
func (r Record) Int(key string) (int, error) {
	n, err := r.Int64(key)
	return int(n), err
}

// OptionalInt lee una columna entera que puede ser NULL.
func (r Record) OptionalInt(key string) *int {
	if !r.Has(key) {
		return nil
	}
	n, err := r.Int(key)
	if err != nil {
		return nil
	}
	return &n
}

// Decimal lee una columna numérica.
func (r Record) Decimal(key string) (decimal.Decimal, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("columna %s: ausente", key)
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		return decimal.NewFromString(t)
	default:
		return decimal.Zero, fmt.Errorf("columna %s: tipo %T no es numérico", key, v)
	}
}

// Bool lee una columna booleana; NULL se interpreta como false.
func (r Record) Bool(key string) bool {
	switch t := r[key].(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}
