// Package listing contiene los controladores de listas con actualización optimista:
// la copia local se modifica solo con lo que devuelve el almacén, sin volver a consultar.
package listing

// Keyed entidad con identidad estable.
type Keyed[K comparable] interface {
	Key() K
}

// Collection colección ordenada en memoria, propiedad de un único controlador.
// No es segura para uso concurrente; el controlador la protege.
type Collection[K comparable, T Keyed[K]] struct {
	items []T
}

// NewCollection copia items en una colección nueva.
func NewCollection[K comparable, T Keyed[K]](items []T) *Collection[K, T] {
	c := &Collection[K, T]{}
	c.Reset(items)
	return c
}

// Reset reemplaza todo el contenido.
func (c *Collection[K, T]) Reset(items []T) {
	c.items = append(c.items[:0:0], items...)
}

// Append agrega al final.
func (c *Collection[K, T]) Append(item T) {
	c.items = append(c.items, item)
}

// ReplaceByID sustituye la entrada con la misma clave. Devuelve false si no existe.
func (c *Collection[K, T]) ReplaceByID(item T) bool {
	i := c.index(item.Key())
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

// RemoveByID quita la entrada con la clave dada. Devuelve false si no existe.
func (c *Collection[K, T]) RemoveByID(id K) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Get busca por clave.
func (c *Collection[K, T]) Get(id K) (T, bool) {
	i := c.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Items copia del contenido en orden.
func (c *Collection[K, T]) Items() []T {
	return append([]T(nil), c.items...)
}

// Len número de entradas.
func (c *Collection[K, T]) Len() int { return len(c.items) }

func (c *Collection[K, T]) index(id K) int {
	for i, it := range c.items {
		if it.Key() == id {
			return i
		}
	}
	return -1
}
