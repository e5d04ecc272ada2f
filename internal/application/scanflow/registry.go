package scanflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// DefaultIdleTTL tiempo sin actividad tras el cual se descarta una sesión.
const DefaultIdleTTL = 30 * time.Minute

// Registry sesiones de escaneo activas del servidor, una por estación/operador.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Machine
	deps     Deps
	idleTTL  time.Duration
	gauge    SessionGauge
}

// SessionGauge recibe el número de sesiones abiertas tras cada cambio.
type SessionGauge interface {
	SessionsOpen(n int)
}

// NewRegistry crea el registro. Cada sesión nueva recibe una copia de deps.
func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Registry{sessions: make(map[string]*Machine), deps: deps, idleTTL: idleTTL}
}

// WithGauge publica el número de sesiones abiertas en g.
func (r *Registry) WithGauge(g SessionGauge) *Registry {
	r.gauge = g
	return r
}

// Open inicia una sesión en IDLE para actor.
func (r *Registry) Open(actor entity.Actor) *Machine {
	id := uuid.NewString()
	m := NewMachine(id, actor, r.deps)
	r.mu.Lock()
	r.sessions[id] = m
	r.reportLocked()
	r.mu.Unlock()
	return m
}

// Get devuelve la sesión id si pertenece a actorID.
func (r *Registry) Get(id, actorID string) (*Machine, error) {
	r.mu.Lock()
	m, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: sesión %s", domain.ErrNotFound, id)
	}
	if m.Actor().ID != actorID {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// Close descarta la sesión. No se puede cerrar mientras confirma.
func (r *Registry) Close(id, actorID string) error {
	m, err := r.Get(id, actorID)
	if err != nil {
		return err
	}
	if m.Busy() {
		return domain.ErrSessionBusy
	}
	r.mu.Lock()
	delete(r.sessions, id)
	r.reportLocked()
	r.mu.Unlock()
	return nil
}

// Len número de sesiones activas.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep elimina sesiones inactivas. Las sesiones en CONFIRMING nunca se eliminan.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, m := range r.sessions {
		if m.Busy() || now.Sub(m.LastActivity()) < r.idleTTL {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	if removed > 0 {
		r.reportLocked()
	}
	return removed
}

func (r *Registry) reportLocked() {
	if r.gauge != nil {
		r.gauge.SessionsOpen(len(r.sessions))
	}
}

// Run barre sesiones inactivas periódicamente hasta que ctx termine.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.deps.Clock()); n > 0 {
				r.deps.Logger.Debug().Int("removed", n).Msg("sesiones inactivas descartadas")
			}
		}
	}
}
