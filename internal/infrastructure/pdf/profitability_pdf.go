// Package pdf genera el reporte de rentabilidad de productos en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Heladería + título   │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos / promedio / más y menos rentable        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Precio | Costo | Calorías | Rentabilidad  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: precio público / costo                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/pkg/format"
)

var _ usecase.ReportPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 196, Green: 62, Blue: 120}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorHeader  = &props.Color{Red: 250, Green: 228, Blue: 238}
	colorLoss    = &props.Color{Red: 190, Green: 30, Blue: 45}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa usecase.ReportPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	shopName string
}

// NewMarotoPDFGenerator construye el generador; shopName va en el encabezado.
func NewMarotoPDFGenerator(shopName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{shopName: nonEmpty(shopName, "Heladería El Buen Sabor")}
}

// GenerateProfitabilityPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateProfitabilityPDF(_ context.Context, report *usecase.ProfitabilityReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de rentabilidad", true).
		WithAuthor(g.shopName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.shopName, report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRows(report)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(report.Products)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(shop string, report *usecase.ProfitabilityReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(shop, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte de rentabilidad por producto", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func summaryRows(report *usecase.ProfitabilityReport) []core.Row {
	item := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 9, Top: 5}),
		)
	}
	return []core.Row{
		row.New(12).Add(
			item("PRODUCTOS", format.Int(len(report.Products))),
			item("RENTABILIDAD PROMEDIO", format.Price(report.AverageProfitability)),
			item("MÁS RENTABLE", productLabel(report.MostProfitable)),
			item("MENOS RENTABLE", productLabel(report.LeastProfitable)),
		),
	}
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("Precio venta", 2, align.Right),
		h("Costo", 2, align.Right),
		h("Calorías", 2, align.Center),
		h("Rentabilidad", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

func tableDetailRows(products []entity.Product) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		profit := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if p.Profitability.IsNegative() {
			profit.Color = colorLoss
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(nonEmpty(p.Name, "—"), props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(format.Price(p.PublicPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(format.Price(p.Cost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(format.OptionalInt(p.TotalCalories), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(format.Price(p.Profitability), profit)),
		))
	}
	if len(result) == 0 {
		result = append(result, row.New(8).Add(col.New(12).Add(
			text.New("No hay productos registrados.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	return result
}

func totalsRow(report *usecase.ProfitabilityReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(
			label("Total precio público:"),
			label("Total costo:"),
		),
		col.New(3).Add(
			value(format.Price(report.TotalPublicPrice)),
			value(format.Price(report.TotalCost)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func productLabel(p *entity.Product) string {
	if p == nil {
		return "—"
	}
	return fmt.Sprintf("%s (%s)", p.Name, format.Price(p.Profitability))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
