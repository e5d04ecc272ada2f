package scanflow

import (
	"context"

	"github.com/jhoicas/aviation-inventory/internal/application/label"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// Inventory resuelve el código escaneado a una parte. Devuelve (nil, nil) o
// domain.ErrPartNotFound cuando no existe.
type Inventory interface {
	FindPart(ctx context.Context, id string) (*entity.Part, error)
}

// PersistenceGateway guarda de forma durable la instantánea completa de la parte.
// Un error significa que el traslado no quedó aplicado.
type PersistenceGateway interface {
	Save(ctx context.Context, part *entity.Part) error
}

// LabelPrinter imprime la etiqueta de una parte confirmada.
type LabelPrinter interface {
	PrintLabel(ctx context.Context, part *entity.Part) (label.Result, error)
}

// MovementPublisher notifica traslados confirmados (best effort).
type MovementPublisher interface {
	PublishMovement(ctx context.Context, part *entity.Part, ev entity.MovementEvent) error
}

// Recorder métricas de la máquina de estados.
type Recorder interface {
	Transition(from, to Step)
	Outcome(outcome string)
}

// Resultados reportados al Recorder.
const (
	OutcomeCommitted           = "committed"
	OutcomeOverride            = "override"
	OutcomeRejectedDestination = "rejected_destination"
	OutcomePersistenceFailure  = "persistence_failure"
	OutcomePartNotFound        = "part_not_found"
	OutcomeCancelled           = "cancelled"
)
