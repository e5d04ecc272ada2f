package scanflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
	"github.com/jhoicas/aviation-inventory/internal/domain/movement"
	"github.com/jhoicas/aviation-inventory/internal/domain/scan"
)

// DefaultPersistTimeout tope de la llamada de persistencia.
const DefaultPersistTimeout = 15 * time.Second

// Deps colaboradores de la máquina. Printer, Publisher y Recorder son opcionales.
type Deps struct {
	Inventory      Inventory
	Gateway        PersistenceGateway
	Validator      location.Validator
	Builder        movement.Builder
	Printer        LabelPrinter
	Publisher      MovementPublisher
	Recorder       Recorder
	Logger         zerolog.Logger
	Clock          func() time.Time
	PersistTimeout time.Duration
}

// Machine máquina de estados de una sesión de escaneo. Es el único dueño de la sesión.
// Mientras el paso es CONFIRMING el mutex está libre pero toda entrada recibe ErrSessionBusy.
type Machine struct {
	mu      sync.Mutex
	actor   entity.Actor
	deps    Deps
	s       Session
	attempt uint64
}

// NewMachine crea una sesión en IDLE para actor.
func NewMachine(id string, actor entity.Actor, deps Deps) *Machine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = DefaultPersistTimeout
	}
	deps.Logger = deps.Logger.With().Str("session_id", id).Str("actor_id", actor.ID).Logger()
	m := &Machine{actor: actor, deps: deps}
	m.s = Session{ID: id, Step: StepIdle, UpdatedAt: deps.Clock()}
	return m
}

// ID identificador de la sesión.
func (m *Machine) ID() string { return m.s.ID }

// Actor operador dueño de la sesión.
func (m *Machine) Actor() entity.Actor { return m.actor }

// Snapshot copia del estado actual.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.clone()
}

// Busy indica si hay una persistencia en curso.
func (m *Machine) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Step == StepConfirming
}

// LastActivity momento de la última transición.
func (m *Machine) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.UpdatedAt
}

// ── Entradas de escaneo ──────────────────────────────────────────────────────

// HandleScan despacha texto decodificado según el paso: en IDLE es una parte, en
// PART_IDENTIFIED es un destino. En CONFIRMING se ignora con ErrSessionBusy.
func (m *Machine) HandleScan(ctx context.Context, raw string) (Session, error) {
	switch m.Snapshot().Step {
	case StepPartIdentified:
		return m.ScanDestination(ctx, raw)
	default:
		return m.ScanPart(ctx, raw)
	}
}

// ScanPart identifica la parte escaneada. Solo desde IDLE.
func (m *Machine) ScanPart(ctx context.Context, raw string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard(StepIdle); err != nil {
		return m.s.clone(), err
	}

	code := scan.ParsePart(raw)
	if code.Kind == scan.KindLocation {
		m.notice(NoticeInvalidInput, KindWarning, "se escaneó una ubicación; escanee primero la parte")
		return m.s.clone(), fmt.Errorf("%w: se esperaba un código de parte", domain.ErrInvalidInput)
	}
	if code.Value == "" {
		m.notice(NoticeInvalidInput, KindWarning, "código vacío")
		return m.s.clone(), fmt.Errorf("%w: código vacío", domain.ErrInvalidInput)
	}

	part, err := m.deps.Inventory.FindPart(ctx, code.Value)
	switch {
	case errors.Is(err, domain.ErrPartNotFound), errors.Is(err, domain.ErrNotFound), err == nil && part == nil:
		m.notice(NoticePartNotFound, KindError, fmt.Sprintf("parte %s no encontrada en inventario", code.Value))
		m.outcome(OutcomePartNotFound)
		m.deps.Logger.Info().Str("code", code.Value).Msg("parte no encontrada")
		return m.s.clone(), fmt.Errorf("%w: %s", domain.ErrPartNotFound, code.Value)
	case err != nil:
		m.notice(NoticeLookupFailure, KindError, "no se pudo consultar el inventario; intente de nuevo")
		m.deps.Logger.Error().Err(err).Str("code", code.Value).Msg("consulta de parte falló")
		return m.s.clone(), fmt.Errorf("scanflow: consultar parte: %w", err)
	}

	m.s.Part = part.Clone()
	m.s.LastError = nil
	m.s.PrintNotice = nil
	m.s.LastEvent = nil
	m.setStep(StepPartIdentified)
	return m.s.clone(), nil
}

// ScanDestination interpreta un escaneo de ubicación y lo valida.
func (m *Machine) ScanDestination(ctx context.Context, raw string) (Session, error) {
	code := scan.ParseLocation(raw)
	if code.Kind == scan.KindPart {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.guard(StepPartIdentified); err != nil {
			return m.s.clone(), err
		}
		m.notice(NoticeInvalidInput, KindWarning, "se escaneó una parte; escanee la ubicación de destino")
		return m.s.clone(), fmt.Errorf("%w: se esperaba una ubicación", domain.ErrInvalidInput)
	}
	return m.SelectDestination(ctx, code.Value)
}

// SelectDestination destino elegido (escaneo o selección rápida). Si la política lo
// rechaza la sesión se queda en PART_IDENTIFIED con un aviso; para material rechazado
// se ofrece el override.
func (m *Machine) SelectDestination(_ context.Context, code string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard(StepPartIdentified); err != nil {
		return m.s.clone(), err
	}

	code = location.Normalize(code)
	m.s.PendingOverride = ""
	verdict := m.deps.Validator.Validate(m.s.Part.TagColor, code)
	if !verdict.Valid {
		if code == "" {
			m.notice(NoticeInvalidInput, KindWarning, verdict.Reason)
			return m.s.clone(), fmt.Errorf("%w: %s", domain.ErrInvalidInput, verdict.Reason)
		}
		if m.s.Part.TagColor == entity.TagRejected {
			m.s.PendingOverride = code
		}
		m.notice(NoticeInvalidDestination, KindWarning, verdict.Reason)
		m.outcome(OutcomeRejectedDestination)
		m.deps.Logger.Warn().Str("part_id", m.s.Part.ID).Str("destination", code).Msg(verdict.Reason)
		return m.s.clone(), fmt.Errorf("%w: %s", domain.ErrInvalidDestination, verdict.Reason)
	}

	m.s.TargetLocation = code
	m.s.TargetCategory = verdict.Category
	m.s.Override = false
	m.s.LastError = nil
	m.setStep(StepLocationScanned)
	return m.s.clone(), nil
}

// ── Confirmación ─────────────────────────────────────────────────────────────

// Confirm persiste el traslado al destino validado. Desde LOCATION_SCANNED.
func (m *Machine) Confirm(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if err := m.guard(StepLocationScanned); err != nil {
		defer m.mu.Unlock()
		return m.s.clone(), err
	}
	return m.commit(ctx)
}

// Override fuerza el traslado al destino que la política rechazó. Salta el validador;
// el evento queda marcado como override.
func (m *Machine) Override(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if err := m.guard(StepPartIdentified); err != nil {
		defer m.mu.Unlock()
		return m.s.clone(), err
	}
	if m.s.PendingOverride == "" {
		defer m.mu.Unlock()
		return m.s.clone(), fmt.Errorf("%w: no hay destino rechazado para forzar", domain.ErrInvalidTransition)
	}
	m.s.TargetLocation = m.s.PendingOverride
	m.s.TargetCategory = m.deps.Validator.Catalog().Classify(m.s.PendingOverride)
	m.s.PendingOverride = ""
	m.s.Override = true
	m.deps.Logger.Warn().Str("part_id", m.s.Part.ID).Str("destination", m.s.TargetLocation).Msg("traslado forzado por el operador")
	return m.commit(ctx)
}

// commit se llama con el mutex tomado y lo libera. La llamada de persistencia corre sin
// el mutex con el paso en CONFIRMING; la parte en memoria solo se reemplaza si el
// gateway confirma.
func (m *Machine) commit(ctx context.Context) (Session, error) {
	prev := m.s.Part
	next, ev, err := m.deps.Builder.LocationChange(prev, m.s.TargetLocation, m.actor, m.deps.Clock(), m.s.Override)
	if err != nil {
		defer m.mu.Unlock()
		m.notice(NoticeInvalidInput, KindError, "no se pudo construir el movimiento")
		return m.s.clone(), fmt.Errorf("scanflow: construir movimiento: %w", err)
	}
	override := m.s.Override
	m.s.LastError = nil
	m.setStep(StepConfirming)
	m.attempt++
	m.mu.Unlock()

	saveErr := m.save(ctx, next.Clone())

	m.mu.Lock()
	if saveErr != nil {
		defer m.mu.Unlock()
		m.s.Part = prev
		m.notice(NoticePersistenceFailure, KindError, "no se pudo guardar el traslado; intente de nuevo")
		m.setStep(StepLocationScanned)
		m.outcome(OutcomePersistenceFailure)
		m.deps.Logger.Error().Err(saveErr).Str("part_id", prev.ID).Str("destination", ev.NewLocation).Msg("persistencia del traslado falló")
		return m.s.clone(), fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, saveErr)
	}

	m.s.Part = next
	m.s.LastEvent = &ev
	m.s.PrintNotice = nil
	m.setStep(StepSuccess)
	if override {
		m.outcome(OutcomeOverride)
	} else {
		m.outcome(OutcomeCommitted)
	}
	m.deps.Logger.Info().
		Str("part_id", next.ID).
		Str("from", ev.PreviousLocation).
		Str("to", ev.NewLocation).
		Bool("override", override).
		Msg("traslado confirmado")
	attempt := m.attempt
	confirmed := next.Clone()
	m.mu.Unlock()

	m.publish(ctx, confirmed, ev)
	m.print(ctx, attempt, confirmed)
	return m.Snapshot(), nil
}

// save invoca el gateway con tope de tiempo. Un panic o un gateway que ignora el contexto
// terminan como error: la sesión nunca queda colgada en CONFIRMING.
func (m *Machine) save(ctx context.Context, part *entity.Part) error {
	saveCtx, cancel := context.WithTimeout(ctx, m.deps.PersistTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var err error
		if r := panics.Try(func() { err = m.deps.Gateway.Save(saveCtx, part) }); r != nil {
			err = r.AsError()
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-saveCtx.Done():
		return fmt.Errorf("persistencia sin respuesta: %w", saveCtx.Err())
	}
}

func (m *Machine) publish(ctx context.Context, part *entity.Part, ev entity.MovementEvent) {
	if m.deps.Publisher == nil {
		return
	}
	if err := m.deps.Publisher.PublishMovement(ctx, part, ev); err != nil {
		m.deps.Logger.Warn().Err(err).Str("part_id", part.ID).Msg("no se pudo publicar el traslado")
	}
}

// print imprime la instantánea confirmada y deja el resultado en la sesión si sigue
// siendo el mismo intento.
func (m *Machine) print(ctx context.Context, attempt uint64, part *entity.Part) {
	if m.deps.Printer == nil {
		return
	}
	res, err := m.deps.Printer.PrintLabel(ctx, part)

	var n *Notice
	switch {
	case err != nil:
		m.deps.Logger.Error().Err(err).Str("part_id", part.ID).Msg("impresión de etiqueta falló")
		n = &Notice{Code: NoticePrintFailure, Kind: KindError, Message: "el traslado quedó guardado pero la etiqueta no se imprimió; use reimprimir"}
	case res.TimedOut:
		n = &Notice{Code: NoticeAssetLoadTimeout, Kind: KindWarning, Message: "la etiqueta se imprimió sin todas sus imágenes"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt == attempt && m.s.Step == StepSuccess {
		m.s.PrintNotice = n
	}
}

// Reprint vuelve a imprimir la etiqueta de la parte confirmada. Solo en SUCCESS.
func (m *Machine) Reprint(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if err := m.guard(StepSuccess); err != nil {
		defer m.mu.Unlock()
		return m.s.clone(), err
	}
	attempt := m.attempt
	part := m.s.Part.Clone()
	m.mu.Unlock()

	m.print(ctx, attempt, part)
	return m.Snapshot(), nil
}

// ── Navegación ───────────────────────────────────────────────────────────────

// Back vuelve de LOCATION_SCANNED a PART_IDENTIFIED descartando el destino.
func (m *Machine) Back() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard(StepLocationScanned); err != nil {
		return m.s.clone(), err
	}
	m.clearTarget()
	m.s.LastError = nil
	m.setStep(StepPartIdentified)
	return m.s.clone(), nil
}

// Cancel descarta la sesión y vuelve a IDLE sin efectos. No se permite en CONFIRMING.
func (m *Machine) Cancel() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Step == StepConfirming {
		return m.s.clone(), domain.ErrSessionBusy
	}
	if m.s.Step != StepIdle {
		m.outcome(OutcomeCancelled)
	}
	m.toIdle()
	return m.s.clone(), nil
}

// Reset cierra un traslado exitoso y deja la sesión lista para la siguiente parte.
func (m *Machine) Reset() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard(StepSuccess); err != nil {
		return m.s.clone(), err
	}
	m.toIdle()
	return m.s.clone(), nil
}

// ── Helpers (requieren el mutex tomado) ─────────────────────────────────────

func (m *Machine) guard(want Step) error {
	if m.s.Step == StepConfirming {
		return domain.ErrSessionBusy
	}
	if m.s.Step != want {
		return fmt.Errorf("%w: paso actual %s, se requiere %s", domain.ErrInvalidTransition, m.s.Step, want)
	}
	return nil
}

func (m *Machine) setStep(to Step) {
	from := m.s.Step
	m.s.Step = to
	m.s.UpdatedAt = m.deps.Clock()
	if m.deps.Recorder != nil && from != to {
		m.deps.Recorder.Transition(from, to)
	}
	m.deps.Logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("transición")
}

func (m *Machine) notice(code string, kind NoticeKind, msg string) {
	m.s.LastError = &Notice{Code: code, Kind: kind, Message: msg}
	m.s.UpdatedAt = m.deps.Clock()
}

func (m *Machine) outcome(o string) {
	if m.deps.Recorder != nil {
		m.deps.Recorder.Outcome(o)
	}
}

func (m *Machine) clearTarget() {
	m.s.TargetLocation = ""
	m.s.TargetCategory = ""
	m.s.PendingOverride = ""
	m.s.Override = false
}

func (m *Machine) toIdle() {
	m.clearTarget()
	m.s.Part = nil
	m.s.LastError = nil
	m.s.PrintNotice = nil
	m.s.LastEvent = nil
	m.attempt++
	m.setStep(StepIdle)
}
