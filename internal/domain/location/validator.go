package location

import (
	"fmt"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// Verdict resultado de validar un destino.
type Verdict struct {
	Valid    bool
	Reason   string
	Category entity.LocationCategory
}

// Validator política de destinos: una parte RED solo puede ir a cuarentena; el resto
// de etiquetas no tiene restricción. Sin estado mutable: mismo input, mismo resultado.
type Validator struct {
	catalog *Catalog
}

// NewValidator construye el validador sobre un catálogo. Con nil usa DefaultCatalog.
func NewValidator(catalog *Catalog) Validator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return Validator{catalog: catalog}
}

// Catalog devuelve el catálogo usado para clasificar.
func (v Validator) Catalog() *Catalog { return v.catalog }

// Validate decide si code es un destino admisible para una parte con etiqueta tag.
func (v Validator) Validate(tag entity.TagColor, code string) Verdict {
	code = Normalize(code)
	if code == "" {
		return Verdict{Valid: false, Reason: "destino vacío", Category: entity.CategoryUnclassified}
	}
	cat := v.catalog.Classify(code)
	if tag == entity.TagRejected && cat != entity.CategoryQuarantine {
		return Verdict{
			Valid:    false,
			Reason:   fmt.Sprintf("material rechazado solo puede ir a cuarentena; %s es %s", code, cat),
			Category: cat,
		}
	}
	return Verdict{Valid: true, Category: cat}
}
