// Package movement construye nuevas instantáneas de una parte con su evento de auditoría.
// Ninguna función modifica la parte recibida ni su historial.
package movement

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// Builder genera instantáneas; newID permite IDs deterministas en tests.
type Builder struct {
	newID func() string
}

// NewBuilder builder con IDs UUID v4.
func NewBuilder() Builder {
	return Builder{newID: uuid.NewString}
}

// NewBuilderWithIDs builder con generador de IDs propio.
func NewBuilderWithIDs(gen func() string) Builder {
	if gen == nil {
		gen = uuid.NewString
	}
	return Builder{newID: gen}
}

// LocationChange devuelve la parte trasladada a target y el evento LOCATION_CHANGE agregado.
// override marca el evento como traslado forzado sobre la política de destinos.
func (b Builder) LocationChange(part *entity.Part, target string, actor entity.Actor, now time.Time, override bool) (*entity.Part, entity.MovementEvent, error) {
	if part == nil || target == "" {
		return nil, entity.MovementEvent{}, domain.ErrInvalidInput
	}
	ev := entity.MovementEvent{
		ID:               b.id(),
		Timestamp:        now,
		Type:             entity.EventTypeLocationChange,
		PreviousLocation: part.Location,
		NewLocation:      target,
		ActorID:          actor.ID,
		ActorName:        actor.Name,
		Override:         override,
	}
	next := appendEvent(part, ev)
	next.Location = target
	return next, ev, nil
}

// Creation devuelve la parte con su evento CREATION. La parte no debe tener historial.
func (b Builder) Creation(part *entity.Part, actor entity.Actor, now time.Time) (*entity.Part, entity.MovementEvent, error) {
	if part == nil {
		return nil, entity.MovementEvent{}, domain.ErrInvalidInput
	}
	if len(part.History) > 0 {
		return nil, entity.MovementEvent{}, fmt.Errorf("%w: la parte %s ya tiene historial", domain.ErrConflict, part.ID)
	}
	ev := entity.MovementEvent{
		ID:          b.id(),
		Timestamp:   now,
		Type:        entity.EventTypeCreation,
		NewLocation: part.Location,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
	}
	return appendEvent(part, ev), ev, nil
}

// DataUpdate reemplaza los datos descriptivos y la variante de detalles. La etiqueta y la
// ubicación no cambian por esta vía.
func (b Builder) DataUpdate(part *entity.Part, info entity.PartInfo, details entity.TagDetails, actor entity.Actor, now time.Time) (*entity.Part, entity.MovementEvent, error) {
	if part == nil {
		return nil, entity.MovementEvent{}, domain.ErrInvalidInput
	}
	if details == nil {
		details = part.Details
	}
	if details == nil || details.Tag() != part.TagColor {
		return nil, entity.MovementEvent{}, fmt.Errorf("%w: la etiqueta de la parte no se puede cambiar", domain.ErrInvalidInput)
	}
	ev := entity.MovementEvent{
		ID:               b.id(),
		Timestamp:        now,
		Type:             entity.EventTypeDataUpdate,
		PreviousLocation: part.Location,
		NewLocation:      part.Location,
		ActorID:          actor.ID,
		ActorName:        actor.Name,
	}
	next := appendEvent(part, ev)
	next.Info = info
	next.Details = details
	return next, ev, nil
}

func (b Builder) id() string {
	if b.newID == nil {
		return uuid.NewString()
	}
	return b.newID()
}

// appendEvent copia la parte y agrega ev a un historial nuevo.
func appendEvent(part *entity.Part, ev entity.MovementEvent) *entity.Part {
	next := *part
	next.History = make([]entity.MovementEvent, len(part.History), len(part.History)+1)
	copy(next.History, part.History)
	next.History = append(next.History, ev)
	return &next
}
