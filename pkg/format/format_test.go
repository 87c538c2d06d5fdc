package format_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/heladeria/pkg/format"
)

func TestPrice_UsaComaDecimal(t *testing.T) {
	assert.Equal(t, "$2,50", format.Price(decimal.RequireFromString("2.5")))
	assert.Equal(t, "$0,00", format.Price(decimal.Zero))
}

func TestDecimal_Redondea(t *testing.T) {
	assert.Equal(t, "1,13", format.Decimal(decimal.RequireFromString("1.126")))
}

func TestOptionalInt(t *testing.T) {
	n := 120
	assert.Equal(t, "120", format.OptionalInt(&n))
	assert.Equal(t, "N/A", format.OptionalInt(nil))
}
