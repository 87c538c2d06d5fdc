package supabase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// SessionStore persistencia local de la sesión entre ejecuciones.
type SessionStore interface {
	Load() (*entity.Session, error)
	Save(s *entity.Session) error
	Clear() error
}

// FileStore guarda la sesión como YAML con permisos 0600.
type FileStore struct {
	path string
}

// NewFileStore construye el store sobre path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load devuelve nil, nil si no hay sesión guardada.
func (f *FileStore) Load() (*entity.Session, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	var s entity.Session
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decodificar sesión: %w", err)
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

func (f *FileStore) Save(s *entity.Session) error {
	if s == nil {
		return f.Clear()
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("codificar sesión: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("crear directorio de sesión: %w", err)
		}
	}
	return os.WriteFile(f.path, b, 0o600)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	return nil
}

// MemoryStore store en memoria (tests y procesos sin disco).
type MemoryStore struct {
	mu sync.Mutex
	s  *entity.Session
}

func (m *MemoryStore) Load() (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *MemoryStore) Save(s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save(nil)
}
