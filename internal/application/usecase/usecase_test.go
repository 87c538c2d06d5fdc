package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria/internal/application/ports/portstest"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

var errCaido = errors.New("backend caído")

func vanilla() entity.IngredientInput {
	return entity.IngredientInput{
		Name: "Vanilla", Price: "2.50", Calories: "120", Inventory: "50",
		Kind: entity.KindBase, Flavor: "vanilla", IsVegetarian: true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ingredientes
// ──────────────────────────────────────────────────────────────────────────────

func TestIngredientUseCase_CreateDevuelveIDAsignado(t *testing.T) {
	gw := portstest.NewMemoryData()
	uc := usecase.NewIngredientUseCase(gw)

	ing, err := uc.Create(context.Background(), vanilla())
	require.NoError(t, err)
	assert.NotZero(t, ing.ID, "el almacén debe asignar el id")
	assert.Equal(t, "Vanilla", ing.Name)
	assert.True(t, decimal.RequireFromString("2.5").Equal(ing.Price))
	require.NotNil(t, ing.Flavor)
	assert.Equal(t, "vanilla", *ing.Flavor)
}

func TestIngredientUseCase_ValidacionNoEnviaPeticion(t *testing.T) {
	gw := portstest.NewMemoryData()
	uc := usecase.NewIngredientUseCase(gw)

	in := vanilla()
	in.Flavor = ""
	_, err := uc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Zero(t, gw.Calls("insert", entity.IngredientsTable))
}

func TestIngredientUseCase_UpdateYDelete(t *testing.T) {
	gw := portstest.NewMemoryData()
	uc := usecase.NewIngredientUseCase(gw)
	ctx := context.Background()

	ing, err := uc.Create(ctx, vanilla())
	require.NoError(t, err)

	in := ing.Input()
	in.ID = ing.ID
	in.Inventory = "49"
	upd, err := uc.Update(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 49, upd.Inventory)

	require.NoError(t, uc.Delete(ctx, ing.ID))
	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngredientUseCase_UpdateSinID(t *testing.T) {
	uc := usecase.NewIngredientUseCase(portstest.NewMemoryData())
	_, err := uc.Update(context.Background(), vanilla())
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUserUseCase_ResolveRole_PerfilExistente(t *testing.T) {
	gw := portstest.NewMemoryData()
	id := uuid.NewString()
	gw.Seed(entity.UsersTable, entity.Record{"id": id, "nombre": "Ana", "rol": "admin"})
	uc := usecase.NewUserUseCase(gw, nil)

	res := uc.ResolveRole(context.Background(), id, "ana@example.com")
	assert.Equal(t, entity.RoleAdmin, res.User.Role)
	assert.False(t, res.Provisioned)
	assert.Zero(t, gw.Calls("insert", entity.UsersTable))
}

func TestUserUseCase_ResolveRole_SinPerfilCreaCliente(t *testing.T) {
	gw := portstest.NewMemoryData()
	uc := usecase.NewUserUseCase(gw, nil)
	id := uuid.NewString()

	res := uc.ResolveRole(context.Background(), id, "nuevo@example.com")
	assert.Equal(t, entity.RoleCustomer, res.User.Role)
	assert.True(t, res.Provisioned)
	assert.NoError(t, res.ProvisionErr)

	rows := gw.Rows(entity.UsersTable)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0]["id"])
	assert.Equal(t, "cliente", rows[0]["rol"])
}

func TestUserUseCase_ResolveRole_FalloDeBusquedaTambienProvisiona(t *testing.T) {
	gw := portstest.NewMemoryData()
	gw.SetError("query", entity.UsersTable, errCaido)
	uc := usecase.NewUserUseCase(gw, nil)

	res := uc.ResolveRole(context.Background(), uuid.NewString(), "x@example.com")
	assert.Equal(t, entity.RoleCustomer, res.User.Role)
	assert.Equal(t, 1, gw.Calls("insert", entity.UsersTable))
}

func TestUserUseCase_ResolveRole_FalloDeAltaSeInformaPeroAdoptaCliente(t *testing.T) {
	gw := portstest.NewMemoryData()
	gw.SetError("insert", entity.UsersTable, errCaido)
	uc := usecase.NewUserUseCase(gw, nil)

	res := uc.ResolveRole(context.Background(), uuid.NewString(), "x@example.com")
	assert.Equal(t, entity.RoleCustomer, res.User.Role)
	require.Error(t, res.ProvisionErr)
	assert.ErrorIs(t, res.ProvisionErr, errCaido)
}

func TestUserUseCase_UpdateRole(t *testing.T) {
	gw := portstest.NewMemoryData()
	id := uuid.NewString()
	gw.Seed(entity.UsersTable, entity.Record{"id": id, "nombre": "Ana", "rol": "cliente"})
	uc := usecase.NewUserUseCase(gw, nil)

	u, err := uc.UpdateRole(context.Background(), id, entity.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, u.Role)

	_, err = uc.UpdateRole(context.Background(), id, entity.RoleUnrecognized)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUserUseCase_CreateUser(t *testing.T) {
	gw := portstest.NewMemoryData()
	auth := portstest.NewFakeAuth(nil)
	uc := usecase.NewUserUseCase(gw, auth)

	u, err := uc.CreateUser(context.Background(), usecase.CreateUserInput{
		Email: "luis@example.com", Name: "Luis", Role: entity.RoleEmployee, Password: "secreto123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Luis", u.Name)
	assert.Equal(t, entity.RoleEmployee, u.Role)
	_, err = uuid.Parse(u.ID)
	assert.NoError(t, err)
	assert.Nil(t, auth.CurrentSession(), "el alta no debe iniciar sesión como el usuario nuevo")
}

func TestUserUseCase_CreateUser_FalloDeRegistro(t *testing.T) {
	gw := portstest.NewMemoryData()
	auth := portstest.NewFakeAuth(nil)
	auth.SignUpErr = &domain.RemoteError{Message: "User already registered"}
	uc := usecase.NewUserUseCase(gw, auth)

	_, err := uc.CreateUser(context.Background(), usecase.CreateUserInput{
		Email: "luis@example.com", Name: "Luis", Role: entity.RoleCustomer, Password: "x",
	})
	assert.True(t, errors.Is(err, domain.ErrRemoteRejection))
	assert.Zero(t, gw.Calls("insert", entity.UsersTable))
}

func TestCreateUserInput_Validate(t *testing.T) {
	in := usecase.NewCreateUserInput()
	assert.Error(t, in.Validate())
	in.Email, in.Name, in.Password = "a@b.co", "A", "p"
	assert.NoError(t, in.Validate())
	in.Email = "no-es-email"
	assert.True(t, errors.Is(in.Validate(), domain.ErrValidation))
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y rentabilidad
// ──────────────────────────────────────────────────────────────────────────────

func seedProducts(gw *portstest.MemoryData) {
	gw.Seed(entity.ProfitabilityView,
		entity.Record{"producto_id": int64(1), "nombre": "Copa", "precio_publico": "10", "costo": "4", "rentabilidad": "6"},
		entity.Record{"producto_id": int64(2), "nombre": "Malteada", "precio_publico": "12", "costo": "9", "rentabilidad": "3"},
	)
	gw.Seed(entity.CaloriesView, entity.Record{"producto_id": int64(1), "total_calorias": int64(450)})
}

func TestProductUseCase_ListUneVistas(t *testing.T) {
	gw := portstest.NewMemoryData()
	seedProducts(gw)
	uc := usecase.NewProductUseCase(gw)

	list, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].TotalCalories)
	assert.Equal(t, 450, *list[0].TotalCalories)
	assert.Nil(t, list[1].TotalCalories, "sin fila de calorías el dato queda como N/A")
}

func TestProductUseCase_ListFallaSiFallaCualquierVista(t *testing.T) {
	gw := portstest.NewMemoryData()
	seedProducts(gw)
	gw.SetError("list", entity.CaloriesView, errCaido)
	uc := usecase.NewProductUseCase(gw)

	_, err := uc.List(context.Background())
	assert.ErrorIs(t, err, errCaido)
}

func TestProductUseCase_Sell(t *testing.T) {
	gw := portstest.NewMemoryData()
	var got any
	gw.Procedures[entity.SellProcedure] = func(params map[string]any) (any, error) {
		got = params[entity.SellParam]
		return "Venta registrada", nil
	}
	uc := usecase.NewProductUseCase(gw)

	msg, err := uc.Sell(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Venta registrada", msg)
	assert.Equal(t, int64(7), got)
}

func TestSummarize(t *testing.T) {
	list := []entity.Product{
		{ID: 1, Name: "Copa", PublicPrice: decimal.NewFromInt(10), Cost: decimal.NewFromInt(4), Profitability: decimal.NewFromInt(6)},
		{ID: 2, Name: "Malteada", PublicPrice: decimal.NewFromInt(12), Cost: decimal.NewFromInt(9), Profitability: decimal.NewFromInt(3)},
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := usecase.Summarize(list, at)

	assert.Equal(t, at, r.GeneratedAt)
	assert.True(t, decimal.RequireFromString("4.5").Equal(r.AverageProfitability))
	assert.True(t, decimal.NewFromInt(22).Equal(r.TotalPublicPrice))
	assert.True(t, decimal.NewFromInt(13).Equal(r.TotalCost))
	require.NotNil(t, r.MostProfitable)
	assert.Equal(t, "Copa", r.MostProfitable.Name)
	assert.Equal(t, "Malteada", r.LeastProfitable.Name)

	empty := usecase.Summarize(nil, at)
	assert.Nil(t, empty.MostProfitable)
	assert.True(t, empty.AverageProfitability.IsZero())
}
