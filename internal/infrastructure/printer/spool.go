// Package printer salida impresa de etiquetas: un directorio de spool vigilado por el
// servicio de impresión de la estación.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jhoicas/aviation-inventory/internal/application/label"
)

// DefaultTitle título cuando nadie fijó uno.
const DefaultTitle = "inventario"

var (
	_ label.Printer      = (*Spool)(nil)
	_ label.Presentation = (*Spool)(nil)
)

// Spool escribe cada trabajo como <título>.pdf. El título vigente es el estado de
// presentación que el disparador fija y restaura alrededor de cada impresión.
type Spool struct {
	dir string

	mu    sync.Mutex
	title string
}

// NewSpool crea el directorio si no existe.
func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("spool: crear %s: %w", dir, err)
	}
	return &Spool{dir: dir, title: DefaultTitle}, nil
}

// Title título vigente.
func (s *Spool) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// SetTitle fija el título vigente.
func (s *Spool) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Print escribe el documento con el nombre del título vigente. Nunca sobrescribe:
// si el nombre existe agrega un sufijo -2, -3, ...
func (s *Spool) Print(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(doc) == 0 {
		return fmt.Errorf("spool: documento vacío")
	}
	base := fileName(s.Title())
	for n := 1; ; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		f, err := os.OpenFile(filepath.Join(s.dir, name+".pdf"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("spool: %w", err)
		}
		if _, err := f.Write(doc); err != nil {
			f.Close()
			return fmt.Errorf("spool: escribir %s: %w", name, err)
		}
		return f.Close()
	}
}

// fileName deja el título usable como nombre de archivo.
func fileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" || name == "." || name == ".." {
		return DefaultTitle
	}
	return name
}
