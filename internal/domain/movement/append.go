package movement

import (
	"fmt"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// VerifyAppend comprueba que next sea una continuación válida de stored: misma identidad y
// etiqueta, el historial guardado es prefijo intacto del nuevo y cada cambio de ubicación
// viene de un LOCATION_CHANGE añadido que parte de la ubicación guardada. Cualquier otra
// cosa es ErrConflict (edición de eventos previos, traslado sin evento o escritura concurrente).
func VerifyAppend(stored, next *entity.Part) error {
	if stored == nil || next == nil {
		return domain.ErrInvalidInput
	}
	if stored.ID != next.ID {
		return fmt.Errorf("%w: id %s != %s", domain.ErrConflict, next.ID, stored.ID)
	}
	if stored.TagColor != next.TagColor {
		return fmt.Errorf("%w: la etiqueta %s no se puede cambiar a %s", domain.ErrConflict, stored.TagColor, next.TagColor)
	}
	if len(next.History) < len(stored.History) {
		return fmt.Errorf("%w: el historial nuevo tiene %d eventos, el guardado %d", domain.ErrConflict, len(next.History), len(stored.History))
	}
	for i, ev := range stored.History {
		if !sameEvent(ev, next.History[i]) {
			return fmt.Errorf("%w: evento %d del historial fue modificado", domain.ErrConflict, i)
		}
	}
	loc := stored.Location
	for i, ev := range next.History[len(stored.History):] {
		if ev.Type != entity.EventTypeLocationChange {
			continue
		}
		if ev.PreviousLocation != loc || ev.NewLocation == "" {
			return fmt.Errorf("%w: evento %d traslada desde %q, la parte está en %q",
				domain.ErrConflict, len(stored.History)+i, ev.PreviousLocation, loc)
		}
		loc = ev.NewLocation
	}
	if loc != next.Location {
		return fmt.Errorf("%w: ubicación %q sin evento de traslado (última registrada %q)", domain.ErrConflict, next.Location, loc)
	}
	return nil
}

func sameEvent(a, b entity.MovementEvent) bool {
	return a.ID == b.ID &&
		a.Timestamp.Equal(b.Timestamp) &&
		a.Type == b.Type &&
		a.PreviousLocation == b.PreviousLocation &&
		a.NewLocation == b.NewLocation &&
		a.ActorID == b.ActorID &&
		a.ActorName == b.ActorName &&
		a.Override == b.Override
}
