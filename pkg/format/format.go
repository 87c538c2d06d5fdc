// Package format da formato local (español) a importes y cantidades para las pantallas y reportes.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Spanish)

// Price formatea un importe con dos decimales y signo de pesos: 2.5 -> "$2,50".
func Price(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("$%.2f", f)
}

// Decimal formatea un valor con dos decimales sin símbolo.
func Decimal(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}

// Int formatea un entero con el separador de miles local.
func Int(n int) string {
	return printer.Sprintf("%d", n)
}

// OptionalInt formatea n o "N/A" cuando el dato no existe.
func OptionalInt(n *int) string {
	if n == nil {
		return "N/A"
	}
	return Int(*n)
}
