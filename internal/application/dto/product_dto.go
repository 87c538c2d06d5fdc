package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// ProductResponse producto con rentabilidad y calorías. TotalCalories "N/A" si no hay dato.
type ProductResponse struct {
	ID            int64           `json:"producto_id"`
	Name          string          `json:"nombre"`
	PublicPrice   decimal.Decimal `json:"precio_publico"`
	Cost          decimal.Decimal `json:"costo"`
	Profitability decimal.Decimal `json:"rentabilidad"`
	TotalCalories string          `json:"total_calorias"`
}

// NewProductResponse convierte la entidad.
func NewProductResponse(p entity.Product) ProductResponse {
	cal := "N/A"
	if p.TotalCalories != nil {
		cal = strconv.Itoa(*p.TotalCalories)
	}
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		PublicPrice:   p.PublicPrice,
		Cost:          p.Cost,
		Profitability: p.Profitability,
		TotalCalories: cal,
	}
}

// ProfitabilityResponse panel de rentabilidad.
type ProfitabilityResponse struct {
	GeneratedAt          time.Time         `json:"generated_at"`
	ProductCount         int               `json:"product_count"`
	AverageProfitability decimal.Decimal   `json:"average_profitability"`
	TotalPublicPrice     decimal.Decimal   `json:"total_public_price"`
	TotalCost            decimal.Decimal   `json:"total_cost"`
	MostProfitable       *ProductResponse  `json:"most_profitable,omitempty"`
	LeastProfitable      *ProductResponse  `json:"least_profitable,omitempty"`
	Products             []ProductResponse `json:"products"`
}

// NewProfitabilityResponse convierte el reporte.
func NewProfitabilityResponse(r *usecase.ProfitabilityReport) ProfitabilityResponse {
	out := ProfitabilityResponse{
		GeneratedAt:          r.GeneratedAt,
		ProductCount:         len(r.Products),
		AverageProfitability: r.AverageProfitability,
		TotalPublicPrice:     r.TotalPublicPrice,
		TotalCost:            r.TotalCost,
		Products:             make([]ProductResponse, 0, len(r.Products)),
	}
	for _, p := range r.Products {
		out.Products = append(out.Products, NewProductResponse(p))
	}
	if r.MostProfitable != nil {
		p := NewProductResponse(*r.MostProfitable)
		out.MostProfitable = &p
	}
	if r.LeastProfitable != nil {
		p := NewProductResponse(*r.LeastProfitable)
		out.LeastProfitable = &p
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
