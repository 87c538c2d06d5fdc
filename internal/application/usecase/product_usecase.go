package usecase

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// ProductUseCase listado de productos (vistas de solo lectura) y venta vía procedimiento remoto.
type ProductUseCase struct {
	gw ports.DataGateway
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(gw ports.DataGateway) *ProductUseCase {
	return &ProductUseCase{gw: gw}
}

// List consulta la vista de rentabilidad y la de calorías en paralelo y las une por producto_id.
// Si cualquiera de las dos falla, falla el listado completo.
func (uc *ProductUseCase) List(ctx context.Context) ([]entity.Product, error) {
	var profitRecs, calorieRecs []entity.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := uc.gw.QueryCollection(gctx, entity.ProfitabilityView)
		profitRecs = recs
		return err
	})
	g.Go(func() error {
		recs, err := uc.gw.QueryCollection(gctx, entity.CaloriesView, entity.FieldProductoID, entity.FieldTotalCalorias)
		calorieRecs = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	calories := make(map[int64]*int, len(calorieRecs))
	for _, rec := range calorieRecs {
		id, total, err := entity.CaloriesFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decodificar calorías: %w", err)
		}
		calories[id] = total
	}

	list := make([]entity.Product, 0, len(profitRecs))
	for _, rec := range profitRecs {
		p, err := entity.ProductFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decodificar producto: %w", err)
		}
		p.TotalCalories = calories[p.ID]
		list = append(list, p)
	}
	return list, nil
}

// Sell invoca vender_producto y devuelve el mensaje que produce el procedimiento.
func (uc *ProductUseCase) Sell(ctx context.Context, productID int64) (string, error) {
	res, err := uc.gw.InvokeProcedure(ctx, entity.SellProcedure, map[string]any{entity.SellParam: productID})
	if err != nil {
		return "", err
	}
	return procedureMessage(res, productID), nil
}

func procedureMessage(res any, productID int64) string {
	switch t := res.(type) {
	case string:
		if t != "" {
			return t
		}
	case nil:
	default:
		return fmt.Sprint(t)
	}
	return "Producto " + strconv.FormatInt(productID, 10) + " vendido"
}
