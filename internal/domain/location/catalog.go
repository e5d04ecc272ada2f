// Package location clasifica destinos físicos y aplica la política de destinos
// según la etiqueta de certificación de la parte.
package location

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// Códigos por defecto del hangar.
var (
	DefaultQuarantine       = []string{"CUARENTENA", "QUARANTINE", "JAULA-RECHAZOS", "MRB"}
	DefaultStorage          = []string{"RACK-01", "RACK-02", "RACK-03", "RACK-04", "ESTANTE-A", "ESTANTE-B", "BODEGA-GENERAL"}
	DefaultHangar           = []string{"HANGAR A", "HANGAR B", "LINEA"}
	DefaultQuarantineTokens = []string{"CUARENTENA", "QUARANTINE", "QRNT"}
)

// Catalog conjunto cerrado de códigos conocidos por categoría. Inmutable tras NewCatalog,
// por lo que puede compartirse entre goroutines.
type Catalog struct {
	codes  map[string]entity.LocationCategory
	tokens map[string]struct{}
	list   []entity.Location
}

// NewCatalog construye el catálogo. Los códigos se normalizan; si un código aparece en
// varias listas gana la primera categoría (cuarentena, almacén, hangar).
func NewCatalog(quarantine, storage, hangar, quarantineTokens []string) *Catalog {
	c := &Catalog{
		codes:  make(map[string]entity.LocationCategory),
		tokens: make(map[string]struct{}),
	}
	add := func(codes []string, cat entity.LocationCategory) {
		for _, raw := range codes {
			code := Normalize(raw)
			if code == "" {
				continue
			}
			if _, dup := c.codes[code]; dup {
				continue
			}
			c.codes[code] = cat
			c.list = append(c.list, entity.Location{Code: code, Category: cat})
		}
	}
	add(quarantine, entity.CategoryQuarantine)
	add(storage, entity.CategoryStorage)
	add(hangar, entity.CategoryHangar)
	for _, t := range quarantineTokens {
		if t = Normalize(t); t != "" {
			c.tokens[t] = struct{}{}
		}
	}
	return c
}

// DefaultCatalog catálogo con los códigos por defecto.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultQuarantine, DefaultStorage, DefaultHangar, DefaultQuarantineTokens)
}

// Normalize pasa el código a mayúsculas y colapsa espacios.
func Normalize(code string) string {
	code = strings.Join(strings.Fields(code), " ")
	if code == "" {
		return ""
	}
	return cases.Upper(language.Und).String(code)
}

// Classify devuelve la categoría de un código. Un código libre solo es QUARANTINE si
// contiene, como token, una de las palabras reservadas de cuarentena.
func (c *Catalog) Classify(code string) entity.LocationCategory {
	code = Normalize(code)
	if cat, ok := c.codes[code]; ok {
		return cat
	}
	for _, tok := range splitTokens(code) {
		if _, ok := c.tokens[tok]; ok {
			return entity.CategoryQuarantine
		}
	}
	return entity.CategoryUnclassified
}

// Known indica si el código pertenece al conjunto cerrado.
func (c *Catalog) Known(code string) bool {
	_, ok := c.codes[Normalize(code)]
	return ok
}

// List devuelve los destinos conocidos (copia), en el orden de alta.
func (c *Catalog) List() []entity.Location {
	out := make([]entity.Location, len(c.list))
	copy(out, c.list)
	return out
}

// ByCategory devuelve los destinos de una categoría ordenados por código.
func (c *Catalog) ByCategory(cat entity.LocationCategory) []entity.Location {
	var out []entity.Location
	for _, l := range c.list {
		if l.Category == cat {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func splitTokens(code string) []string {
	return strings.FieldsFunc(code, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == '.'
	})
}
