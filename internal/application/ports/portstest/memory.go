// Package portstest ofrece implementaciones en memoria de los puertos del backend para tests.
package portstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

var _ ports.DataGateway = (*MemoryData)(nil)

// Procedure implementación de un procedimiento remoto en memoria.
type Procedure func(params map[string]any) (any, error)

// MemoryData DataGateway en memoria. Las filas sin id reciben uno incremental.
// Errors permite forzar fallos por operación con claves "op:tabla" (ej. "insert:users").
type MemoryData struct {
	mu         sync.Mutex
	tables     map[string][]entity.Record
	nextID     int64
	Procedures map[string]Procedure
	Errors     map[string]error
	calls      map[string]int
}

// NewMemoryData construye el gateway vacío.
func NewMemoryData() *MemoryData {
	return &MemoryData{
		tables:     map[string][]entity.Record{},
		nextID:     1,
		Procedures: map[string]Procedure{},
		Errors:     map[string]error{},
		calls:      map[string]int{},
	}
}

// Seed agrega filas a una tabla o vista sin contar llamadas.
func (m *MemoryData) Seed(table string, recs ...entity.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.tables[table] = append(m.tables[table], clone(rec))
	}
}

// SetError fuerza err para la operación op sobre table ("query", "insert", "update", "delete", "list", "rpc").
func (m *MemoryData) SetError(op, table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.Errors, op+":"+table)
		return
	}
	m.Errors[op+":"+table] = err
}

// Calls número de llamadas a op sobre table.
func (m *MemoryData) Calls(op, table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op+":"+table]
}

// Rows copia de las filas actuales de table.
func (m *MemoryData) Rows(table string) []entity.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Record, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, clone(r))
	}
	return out
}

func (m *MemoryData) enter(op, table string) error {
	m.calls[op+":"+table]++
	return m.Errors[op+":"+table]
}

func (m *MemoryData) QueryRecord(_ context.Context, table string, filter ports.Filter) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("query", table); err != nil {
		return nil, err
	}
	for _, r := range m.tables[table] {
		if matches(r, filter) {
			return clone(r), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryData) InsertRecord(_ context.Context, table string, fields entity.Record) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("insert", table); err != nil {
		return nil, err
	}
	rec := clone(fields)
	if !rec.Has(entity.FieldID) {
		rec[entity.FieldID] = m.nextID
		m.nextID++
	}
	for _, r := range m.tables[table] {
		if same(r[entity.FieldID], rec[entity.FieldID]) {
			return nil, domain.ErrDuplicate
		}
	}
	m.tables[table] = append(m.tables[table], rec)
	return clone(rec), nil
}

func (m *MemoryData) UpdateRecord(_ context.Context, table string, id any, fields entity.Record) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("update", table); err != nil {
		return nil, err
	}
	for _, r := range m.tables[table] {
		if same(r[entity.FieldID], id) {
			for k, v := range fields {
				r[k] = v
			}
			return clone(r), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryData) DeleteRecord(_ context.Context, table string, id any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("delete", table); err != nil {
		return err
	}
	rows := m.tables[table]
	for i, r := range rows {
		if same(r[entity.FieldID], id) {
			m.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryData) QueryCollection(_ context.Context, source string, columns ...string) ([]entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("list", source); err != nil {
		return nil, err
	}
	out := make([]entity.Record, 0, len(m.tables[source]))
	for _, r := range m.tables[source] {
		if len(columns) == 0 {
			out = append(out, clone(r))
			continue
		}
		sub := entity.Record{}
		for _, c := range columns {
			sub[c] = r[c]
		}
		out = append(out, sub)
	}
	return out, nil
}

func (m *MemoryData) InvokeProcedure(_ context.Context, name string, params map[string]any) (any, error) {
	m.mu.Lock()
	if err := m.enter("rpc", name); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	proc, ok := m.Procedures[name]
	m.mu.Unlock()
	if !ok {
		return nil, &domain.RemoteError{Code: "PGRST202", Message: "procedimiento " + name + " no existe"}
	}
	return proc(params)
}

func matches(r entity.Record, filter ports.Filter) bool {
	for k, v := range filter {
		if !same(r[k], v) {
			return false
		}
	}
	return true
}

func same(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func clone(r entity.Record) entity.Record {
	out := make(entity.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
