// Package parts casos de uso de partes aeronáuticas: alta, edición de datos, consulta,
// sincronización compatible con el backend y guardado transaccional de traslados.
package parts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
	"github.com/jhoicas/aviation-inventory/internal/application/label"
	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
	"github.com/jhoicas/aviation-inventory/internal/domain/movement"
	"github.com/jhoicas/aviation-inventory/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con un repositorio atado a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.PartRepository) error) error
}

// LabelRenderer genera el PDF de la etiqueta sin imprimir.
type LabelRenderer interface {
	Render(ctx context.Context, part *entity.Part) ([]byte, label.Result, error)
}

// Service casos de uso de partes.
type Service struct {
	repo    repository.PartRepository
	tx      TxRunner
	builder movement.Builder
	catalog *location.Catalog
	labels  LabelRenderer
	clock   func() time.Time
	log     zerolog.Logger
}

// NewService construye el servicio. labels puede ser nil (sin descarga de etiquetas).
func NewService(repo repository.PartRepository, tx TxRunner, catalog *location.Catalog, labels LabelRenderer, log zerolog.Logger) *Service {
	if catalog == nil {
		catalog = location.DefaultCatalog()
	}
	return &Service{
		repo:    repo,
		tx:      tx,
		builder: movement.NewBuilder(),
		catalog: catalog,
		labels:  labels,
		clock:   time.Now,
		log:     log,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// WithBuilder reemplaza el constructor de movimientos (tests).
func (s *Service) WithBuilder(b movement.Builder) *Service {
	s.builder = b
	return s
}

// ── Escritura ────────────────────────────────────────────────────────────────

// Register da de alta una parte con su evento CREATION. El historial recibido se ignora.
func (s *Service) Register(ctx context.Context, actor entity.Actor, in dto.CreatePartRequest) (*dto.PartDTO, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	in.Location = location.Normalize(in.Location)
	in.History = nil
	part, err := in.ToEntity()
	if err != nil {
		return nil, err
	}
	if part.Location == "" {
		return nil, fmt.Errorf("%w: ubicación inicial requerida", domain.ErrInvalidInput)
	}
	created, _, err := s.builder.Creation(part, actor, s.clock())
	if err != nil {
		return nil, err
	}

	err = s.tx.Run(ctx, func(repo repository.PartRepository) error {
		existing, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return repo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("part_id", created.ID).Str("tag", string(created.TagColor)).Msg("parte registrada")
	out := dto.PartFromEntity(created)
	return &out, nil
}

// UpdateData edita los datos descriptivos con un evento DATA_UPDATE. Etiqueta, ubicación
// e historial no cambian por esta vía.
func (s *Service) UpdateData(ctx context.Context, actor entity.Actor, id string, in dto.UpdatePartRequest) (*dto.PartDTO, error) {
	var updated *entity.Part
	err := s.tx.Run(ctx, func(repo repository.PartRepository) error {
		current, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if in.TagColor != "" && entity.TagColor(in.TagColor) != current.TagColor {
			return fmt.Errorf("%w: la etiqueta no se puede cambiar", domain.ErrInvalidInput)
		}
		next, _, err := s.builder.DataUpdate(current, in.Info(), in.Details(current.TagColor), actor, s.clock())
		if err != nil {
			return err
		}
		updated = next
		return repo.Update(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	out := dto.PartFromEntity(updated)
	return &out, nil
}

// Save guarda la instantánea construida por el flujo de escaneo. Dentro de una transacción
// bloquea la fila y exige que el historial guardado sea prefijo del nuevo.
func (s *Service) Save(ctx context.Context, part *entity.Part) error {
	if part == nil {
		return domain.ErrInvalidInput
	}
	return s.tx.Run(ctx, func(repo repository.PartRepository) error {
		stored, err := repo.GetForUpdate(ctx, part.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("%w: %s", domain.ErrPartNotFound, part.ID)
		}
		if err := movement.VerifyAppend(stored, part); err != nil {
			return err
		}
		return repo.Update(ctx, part)
	})
}

// Sync upsert de una lista completa de partes (POST /api/inventory). Las existentes pasan
// por el mismo control append-only que Save; las nuevas se crean tal cual.
func (s *Service) Sync(ctx context.Context, in []dto.PartDTO) (int, error) {
	parts := make([]*entity.Part, 0, len(in))
	for i, d := range in {
		p, err := d.ToEntity()
		if err != nil {
			return 0, fmt.Errorf("parte %d: %w", i, err)
		}
		parts = append(parts, p)
	}
	err := s.tx.Run(ctx, func(repo repository.PartRepository) error {
		for _, p := range parts {
			stored, err := repo.GetForUpdate(ctx, p.ID)
			if err != nil {
				return err
			}
			if stored == nil {
				if err := repo.Create(ctx, p); err != nil {
					return err
				}
				continue
			}
			if err := movement.VerifyAppend(stored, p); err != nil {
				return fmt.Errorf("parte %s: %w", p.ID, err)
			}
			if err := repo.Update(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(parts), nil
}

// ── Lectura ──────────────────────────────────────────────────────────────────

// FindPart resuelve un código escaneado a la parte (puerto Inventory del flujo de escaneo).
func (s *Service) FindPart(ctx context.Context, id string) (*entity.Part, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPartNotFound
	}
	return p, nil
}

// Get obtiene una parte.
func (s *Service) Get(ctx context.Context, id string) (*dto.PartDTO, error) {
	p, err := s.FindPart(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPartNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out := dto.PartFromEntity(p)
	return &out, nil
}

// List lista partes con filtros y paginación.
func (s *Service) List(ctx context.Context, filter repository.PartFilter, page dto.PageRequest) (*dto.PartListResponse, error) {
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset
	if filter.TagColor != "" && !filter.TagColor.Valid() {
		return nil, fmt.Errorf("%w: tagColor %q", domain.ErrInvalidInput, filter.TagColor)
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.PartListResponse{
		Items: dto.PartsFromEntities(items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// All devuelve todas las partes (GET /api/inventory).
func (s *Service) All(ctx context.Context) ([]dto.PartDTO, error) {
	items, err := s.repo.List(ctx, repository.PartFilter{})
	if err != nil {
		return nil, err
	}
	return dto.PartsFromEntities(items), nil
}

// Locations destinos del catálogo para selección rápida. category vacía = todos.
func (s *Service) Locations(category string) ([]dto.LocationDTO, error) {
	var list []entity.Location
	switch cat := entity.LocationCategory(strings.ToUpper(category)); cat {
	case "":
		list = s.catalog.List()
	case entity.CategoryQuarantine, entity.CategoryStorage, entity.CategoryHangar:
		list = s.catalog.ByCategory(cat)
	default:
		return nil, fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, category)
	}
	out := make([]dto.LocationDTO, 0, len(list))
	for _, l := range list {
		out = append(out, dto.LocationDTO{Code: l.Code, Category: string(l.Category)})
	}
	return out, nil
}

// Stats conteos por etiqueta y ubicación.
func (s *Service) Stats(ctx context.Context) (*dto.PartStatsResponse, error) {
	byTag, err := s.repo.CountByTag(ctx, repository.PartFilter{})
	if err != nil {
		return nil, err
	}
	byLoc, err := s.repo.CountByLocation(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.PartStatsResponse{ByTag: tagCounts(byTag), ByLocation: byLoc}, nil
}

// topBrands tamaño del ranking de marcas.
const topBrands = 10

// BrandStats las marcas con más partes registradas.
func (s *Service) BrandStats(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByBrand(ctx, topBrands)
}

// LocationBreakdown conteo por etiqueta de las partes en loc.
func (s *Service) LocationBreakdown(ctx context.Context, loc string) (*dto.TagBreakdownResponse, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil, fmt.Errorf("%w: loc requerido", domain.ErrInvalidInput)
	}
	total, breakdown, err := s.breakdown(ctx, repository.PartFilter{Location: loc})
	if err != nil {
		return nil, err
	}
	return &dto.TagBreakdownResponse{Location: loc, Total: total, Breakdown: breakdown}, nil
}

// TypeBreakdown conteo por etiqueta de las partes con ese nombre.
func (s *Service) TypeBreakdown(ctx context.Context, name string) (*dto.TagBreakdownResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name requerido", domain.ErrInvalidInput)
	}
	total, breakdown, err := s.breakdown(ctx, repository.PartFilter{PartName: name})
	if err != nil {
		return nil, err
	}
	return &dto.TagBreakdownResponse{PartName: name, Total: total, Breakdown: breakdown}, nil
}

// StockLookup existencias de un P/N por etiqueta.
func (s *Service) StockLookup(ctx context.Context, pn string) (*dto.StockLookupResponse, error) {
	pn = strings.TrimSpace(pn)
	if pn == "" {
		return nil, fmt.Errorf("%w: pn requerido", domain.ErrInvalidInput)
	}
	first, err := s.repo.List(ctx, repository.PartFilter{PN: pn, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, domain.ErrNotFound
	}
	total, breakdown, err := s.breakdown(ctx, repository.PartFilter{PN: pn})
	if err != nil {
		return nil, err
	}
	return &dto.StockLookupResponse{
		PartName:  first[0].Info.PartName,
		PN:        pn,
		Total:     total,
		Breakdown: breakdown,
	}, nil
}

// breakdown conteo por etiqueta bajo filter; ErrNotFound si no hay partes.
func (s *Service) breakdown(ctx context.Context, filter repository.PartFilter) (int, map[string]int, error) {
	byTag, err := s.repo.CountByTag(ctx, filter)
	if err != nil {
		return 0, nil, err
	}
	counts := tagCounts(byTag)
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0, nil, domain.ErrNotFound
	}
	return total, counts, nil
}

// Label genera el PDF de la etiqueta actual de la parte, sin imprimir.
func (s *Service) Label(ctx context.Context, id string) ([]byte, string, error) {
	if s.labels == nil {
		return nil, "", fmt.Errorf("parts: etiquetas no configuradas")
	}
	p, err := s.FindPart(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, res, err := s.labels.Render(ctx, p)
	if err != nil {
		return nil, "", err
	}
	return doc, res.Title, nil
}

func tagCounts(in map[entity.TagColor]int) map[string]int {
	out := make(map[string]int, len(in))
	for tag, n := range in {
		out[string(tag)] = n
	}
	return out
}
