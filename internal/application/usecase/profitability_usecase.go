package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// ProfitabilityReport resumen del panel de rentabilidad.
type ProfitabilityReport struct {
	GeneratedAt          time.Time
	Products             []entity.Product
	AverageProfitability decimal.Decimal
	TotalPublicPrice     decimal.Decimal
	TotalCost            decimal.Decimal
	MostProfitable       *entity.Product
	LeastProfitable      *entity.Product
}

// ReportPDFGenerator puerto para exportar el reporte (lo implementa infrastructure/pdf).
type ReportPDFGenerator interface {
	GenerateProfitabilityPDF(ctx context.Context, report *ProfitabilityReport) ([]byte, error)
}

// ProfitabilityUseCase arma el panel de rentabilidad a partir del listado de productos.
// El cálculo de costo y rentabilidad por producto lo hace la vista remota; aquí solo se resume.
type ProfitabilityUseCase struct {
	products *ProductUseCase
	pdf      ReportPDFGenerator
	now      func() time.Time
}

// NewProfitabilityUseCase construye el caso de uso. pdf puede ser nil si no se exporta.
func NewProfitabilityUseCase(products *ProductUseCase, pdf ReportPDFGenerator) *ProfitabilityUseCase {
	return &ProfitabilityUseCase{products: products, pdf: pdf, now: time.Now}
}

// Report consulta los productos y calcula el resumen.
func (uc *ProfitabilityUseCase) Report(ctx context.Context) (*ProfitabilityReport, error) {
	list, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(list, uc.now()), nil
}

// PDF genera el reporte en PDF.
func (uc *ProfitabilityUseCase) PDF(ctx context.Context) ([]byte, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateProfitabilityPDF(ctx, report)
}

// Summarize calcula los agregados del panel sobre una lista ya cargada.
func Summarize(list []entity.Product, at time.Time) *ProfitabilityReport {
	r := &ProfitabilityReport{
		GeneratedAt:          at,
		Products:             list,
		AverageProfitability: decimal.Zero,
		TotalPublicPrice:     decimal.Zero,
		TotalCost:            decimal.Zero,
	}
	if len(list) == 0 {
		return r
	}
	sum := decimal.Zero
	for i := range list {
		p := &list[i]
		sum = sum.Add(p.Profitability)
		r.TotalPublicPrice = r.TotalPublicPrice.Add(p.PublicPrice)
		r.TotalCost = r.TotalCost.Add(p.Cost)
		if r.MostProfitable == nil || p.Profitability.GreaterThan(r.MostProfitable.Profitability) {
			r.MostProfitable = p
		}
		if r.LeastProfitable == nil || p.Profitability.LessThan(r.LeastProfitable.Profitability) {
			r.LeastProfitable = p
		}
	}
	r.AverageProfitability = sum.Div(decimal.NewFromInt(int64(len(list)))).Round(2)
	return r
}
