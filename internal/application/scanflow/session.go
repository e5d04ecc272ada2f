// Package scanflow implementa el flujo de doble escaneo: identificar la parte, escanear o
// elegir el destino, confirmar el traslado y, una vez persistido, imprimir la etiqueta nueva.
package scanflow

import (
	"time"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// Step paso del flujo de escaneo.
type Step string

const (
	StepIdle            Step = "IDLE"
	StepPartIdentified  Step = "PART_IDENTIFIED"
	StepLocationScanned Step = "LOCATION_SCANNED"
	StepConfirming      Step = "CONFIRMING"
	StepSuccess         Step = "SUCCESS"
)

// Códigos de aviso al operador.
const (
	NoticePartNotFound       = "PART_NOT_FOUND"
	NoticeInvalidDestination = "INVALID_DESTINATION"
	NoticePersistenceFailure = "PERSISTENCE_FAILURE"
	NoticeAssetLoadTimeout   = "ASSET_LOAD_TIMEOUT"
	NoticeInvalidInput       = "INVALID_INPUT"
	NoticeLookupFailure      = "LOOKUP_FAILURE"
	NoticePrintFailure       = "PRINT_FAILURE"
)

// NoticeKind severidad del aviso.
type NoticeKind string

const (
	KindError   NoticeKind = "error"
	KindWarning NoticeKind = "warning"
)

// Notice mensaje visible para el operador.
type Notice struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Kind    NoticeKind `json:"kind"`
}

// Session estado transitorio de un intento de traslado. Nunca se persiste.
type Session struct {
	ID             string
	Step           Step
	Part           *entity.Part
	TargetLocation string
	TargetCategory entity.LocationCategory
	// PendingOverride destino rechazado por la política que el operador puede forzar.
	PendingOverride string
	Override        bool
	LastError       *Notice
	PrintNotice     *Notice
	LastEvent       *entity.MovementEvent
	UpdatedAt       time.Time
}

// OverrideOffered indica si el operador puede forzar el último destino rechazado.
func (s Session) OverrideOffered() bool {
	return s.Step == StepPartIdentified && s.PendingOverride != ""
}

func (s Session) clone() Session {
	out := s
	out.Part = s.Part.Clone()
	if s.LastError != nil {
		n := *s.LastError
		out.LastError = &n
	}
	if s.PrintNotice != nil {
		n := *s.PrintNotice
		out.PrintNotice = &n
	}
	if s.LastEvent != nil {
		ev := *s.LastEvent
		out.LastEvent = &ev
	}
	return out
}
