package repository

import (
	"context"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// PartRepository define el puerto de persistencia para partes aeronáuticas.
type PartRepository interface {
	Create(ctx context.Context, part *entity.Part) error
	GetByID(ctx context.Context, id string) (*entity.Part, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); solo tiene sentido dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Part, error)
	Update(ctx context.Context, part *entity.Part) error
	List(ctx context.Context, filter PartFilter) ([]*entity.Part, error)
	Count(ctx context.Context, filter PartFilter) (int, error)
	CountByTag(ctx context.Context, filter PartFilter) (map[entity.TagColor]int, error)
	CountByLocation(ctx context.Context) (map[string]int, error)
	// CountByBrand las limit marcas con más partes; omite partes sin marca.
	CountByBrand(ctx context.Context, limit int) (map[string]int, error)
}

// PartFilter filtros opcionales de listado. Location, PN y PartName comparan sin distinguir mayúsculas.
type PartFilter struct {
	TagColor entity.TagColor
	Location string
	PN       string
	PartName string
	Limit    int
	Offset   int
}
