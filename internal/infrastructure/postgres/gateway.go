package postgres

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

var _ ports.DataGateway = (*Gateway)(nil)

// Querier subconjunto común de *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// source tabla o vista expuesta por el gateway.
type source struct {
	writable bool
	orderBy  string
}

// Solo se aceptan los identificadores fijos del esquema de la heladería.
var (
	sources = map[string]source{
		entity.IngredientsTable:  {writable: true, orderBy: entity.FieldID},
		entity.UsersTable:        {writable: true, orderBy: entity.FieldNombre},
		entity.ProfitabilityView: {orderBy: entity.FieldProductoID},
		entity.CaloriesView:      {orderBy: entity.FieldProductoID},
	}
	procedures = map[string][]string{
		entity.SellProcedure: {entity.SellParam},
	}
	columnRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// Gateway DataGateway sobre PostgreSQL (la base del backend alojado).
type Gateway struct {
	db Querier
}

// NewGateway construye el gateway sobre un pool o una transacción.
func NewGateway(db Querier) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) QueryRecord(ctx context.Context, table string, filter ports.Filter) (entity.Record, error) {
	sql, args, err := buildSelectOne(table, filter)
	if err != nil {
		return nil, err
	}
	rows, err := g.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify("query "+table, err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, classify("query "+table, err)
	}
	return entity.Record(rec), nil
}

func (g *Gateway) InsertRecord(ctx context.Context, table string, fields entity.Record) (entity.Record, error) {
	sql, args, err := buildInsert(table, fields)
	if err != nil {
		return nil, err
	}
	return g.returning(ctx, "insert "+table, sql, args)
}

func (g *Gateway) UpdateRecord(ctx context.Context, table string, id any, fields entity.Record) (entity.Record, error) {
	sql, args, err := buildUpdate(table, id, fields)
	if err != nil {
		return nil, err
	}
	return g.returning(ctx, "update "+table, sql, args)
}

func (g *Gateway) DeleteRecord(ctx context.Context, table string, id any) error {
	if err := checkWritable(table); err != nil {
		return err
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ident(table), ident(entity.FieldID))
	if _, err := g.db.Exec(ctx, sql, id); err != nil {
		return classify("delete "+table, err)
	}
	return nil
}

func (g *Gateway) QueryCollection(ctx context.Context, src string, columns ...string) ([]entity.Record, error) {
	sql, err := buildSelectAll(src, columns)
	if err != nil {
		return nil, err
	}
	rows, err := g.db.Query(ctx, sql)
	if err != nil {
		return nil, classify("list "+src, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, classify("list "+src, err)
	}
	out := make([]entity.Record, len(maps))
	for i, m := range maps {
		out[i] = entity.Record(m)
	}
	return out, nil
}

func (g *Gateway) InvokeProcedure(ctx context.Context, name string, params map[string]any) (any, error) {
	sql, args, err := buildCall(name, params)
	if err != nil {
		return nil, err
	}
	var out any
	if err := g.db.QueryRow(ctx, sql, args...).Scan(&out); err != nil {
		return nil, classify("rpc "+name, err)
	}
	return out, nil
}

func (g *Gateway) returning(ctx context.Context, op, sql string, args []any) (entity.Record, error) {
	rows, err := g.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, classify(op, err)
	}
	return entity.Record(rec), nil
}

// ── SQL ───────────────────────────────────────────────────────────────────────

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func checkSource(name string) (source, error) {
	s, ok := sources[name]
	if !ok {
		return source{}, fmt.Errorf("%w: origen desconocido %q", domain.ErrValidation, name)
	}
	return s, nil
}

func checkWritable(table string) error {
	s, err := checkSource(table)
	if err != nil {
		return err
	}
	if !s.writable {
		return fmt.Errorf("%w: %q es de solo lectura", domain.ErrValidation, table)
	}
	return nil
}

func checkColumn(col string) error {
	if !columnRe.MatchString(col) {
		return fmt.Errorf("%w: columna inválida %q", domain.ErrValidation, col)
	}
	return nil
}

// sortedColumns columnas del registro en orden estable.
func sortedColumns(rec map[string]any) ([]string, error) {
	cols := make([]string, 0, len(rec))
	for c := range rec {
		if err := checkColumn(c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols, nil
}

func buildSelectAll(src string, columns []string) (string, error) {
	s, err := checkSource(src)
	if err != nil {
		return "", err
	}
	list := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			if err := checkColumn(c); err != nil {
				return "", err
			}
			quoted[i] = ident(c)
		}
		list = strings.Join(quoted, ", ")
	}
	sql := fmt.Sprintf("SELECT %s FROM %s", list, ident(src))
	if s.orderBy != "" {
		sql += " ORDER BY " + ident(s.orderBy)
	}
	return sql, nil
}

func buildSelectOne(table string, filter ports.Filter) (string, []any, error) {
	if _, err := checkSource(table); err != nil {
		return "", nil, err
	}
	cols, err := sortedColumns(filter)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", ident(table))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, filter[c])
		fmt.Fprintf(&b, "%s = $%d", ident(c), len(args))
	}
	b.WriteString(" LIMIT 1")
	return b.String(), args, nil
}

func buildInsert(table string, fields entity.Record) (string, []any, error) {
	if err := checkWritable(table); err != nil {
		return "", nil, err
	}
	cols, err := sortedColumns(fields)
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%w: insert sin columnas", domain.ErrValidation)
	}
	quoted := make([]string, len(cols))
	holders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
		holders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[c]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		ident(table), strings.Join(quoted, ", "), strings.Join(holders, ", "))
	return sql, args, nil
}

func buildUpdate(table string, id any, fields entity.Record) (string, []any, error) {
	if err := checkWritable(table); err != nil {
		return "", nil, err
	}
	cols, err := sortedColumns(fields)
	if err != nil {
		return "", nil, err
	}
	cols = slices.DeleteFunc(cols, func(c string) bool { return c == entity.FieldID })
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%w: update sin columnas", domain.ErrValidation)
	}
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		args = append(args, fields[c])
		sets[i] = fmt.Sprintf("%s = $%d", ident(c), len(args))
	}
	args = append(args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING *",
		ident(table), strings.Join(sets, ", "), ident(entity.FieldID), len(args))
	return sql, args, nil
}

func buildCall(name string, params map[string]any) (string, []any, error) {
	allowed, ok := procedures[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: procedimiento desconocido %q", domain.ErrValidation, name)
	}
	cols, err := sortedColumns(params)
	if err != nil {
		return "", nil, err
	}
	named := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		if !slices.Contains(allowed, c) {
			return "", nil, fmt.Errorf("%w: parámetro desconocido %q", domain.ErrValidation, c)
		}
		named[i] = fmt.Sprintf("%s => $%d", ident(c), i+1)
		args[i] = params[c]
	}
	return fmt.Sprintf("SELECT %s(%s)", ident(name), strings.Join(named, ", ")), args, nil
}
