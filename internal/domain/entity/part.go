package entity

import (
	"fmt"

	"github.com/jhoicas/aviation-inventory/internal/domain"
)

// TagColor clasificación de certificación de la parte. Los valores son los del backend.
type TagColor string

const (
	TagServiceable     TagColor = "YELLOW" // material serviciable
	TagRepairable      TagColor = "GREEN"  // material reparable
	TagRemovedNoDefect TagColor = "WHITE"  // removido sin defecto
	TagRejected        TagColor = "RED"    // material rechazado
)

// Valid indica si el color es uno de los cuatro conocidos.
func (t TagColor) Valid() bool {
	switch t {
	case TagServiceable, TagRepairable, TagRemovedNoDefect, TagRejected:
		return true
	}
	return false
}

// Label nombre FAA/EASA del estado.
func (t TagColor) Label() string {
	switch t {
	case TagServiceable:
		return "Serviceable Material"
	case TagRepairable:
		return "Repairable Material"
	case TagRemovedNoDefect:
		return "Removed – No Defect"
	case TagRejected:
		return "Rejected Material"
	}
	return string(t)
}

// PartInfo datos descriptivos comunes a todas las etiquetas.
type PartInfo struct {
	PartName          string
	Brand             string
	Model             string
	PN                string // part number
	SN                string // serial number
	TTTAT             string
	TSO               string
	TREM              string
	TC                string
	CSO               string
	CREM              string
	RegistrationDate  string
	Organization      string
	TechnicianName    string
	TechnicianLicense string
	InspectorName     string
	InspectorLicense  string
	Observations      string
	Photo             string // data URL o URL http(s)
}

// TagDetails variante de datos que solo tiene sentido para una etiqueta concreta.
type TagDetails interface {
	Tag() TagColor
}

// ServiceableDetails datos de una parte YELLOW.
type ServiceableDetails struct {
	ShelfLife string
}

// RepairableDetails datos de una parte GREEN.
type RepairableDetails struct {
	RemovalReason   string
	TechnicalReport string
	RemovedFromAC   string
	Position        string
}

// RemovedNoDefectDetails datos de una parte WHITE.
type RemovedNoDefectDetails struct {
	RemovalReason           string
	RemovedFromAC           string
	Position                string
	PhysicalStorageLocation string
}

// RejectedDetails datos de una parte RED.
type RejectedDetails struct {
	RejectionReason         string
	FinalDisposition        string
	PhysicalStorageLocation string
}

func (ServiceableDetails) Tag() TagColor     { return TagServiceable }
func (RepairableDetails) Tag() TagColor      { return TagRepairable }
func (RemovedNoDefectDetails) Tag() TagColor { return TagRemovedNoDefect }
func (RejectedDetails) Tag() TagColor        { return TagRejected }

// Part identidad y estado de un componente físico.
// TagColor no cambia durante el flujo; Location solo cambia por un MovementEvent confirmado;
// History es append-only en orden cronológico.
type Part struct {
	ID       string
	TagColor TagColor
	Location string
	Info     PartInfo
	Details  TagDetails
	History  []MovementEvent
}

// NewPart construye una parte validando que la variante de detalles coincida con la etiqueta.
// Si details es nil se usa la variante vacía de la etiqueta.
func NewPart(id string, tag TagColor, location string, info PartInfo, details TagDetails, history []MovementEvent) (*Part, error) {
	if id == "" || !tag.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if details == nil {
		details = EmptyDetails(tag)
	}
	if details.Tag() != tag {
		return nil, fmt.Errorf("%w: detalles %s no corresponden a etiqueta %s", domain.ErrInvalidInput, details.Tag(), tag)
	}
	h := make([]MovementEvent, len(history))
	copy(h, history)
	return &Part{ID: id, TagColor: tag, Location: location, Info: info, Details: details, History: h}, nil
}

// EmptyDetails devuelve la variante sin datos para la etiqueta.
func EmptyDetails(tag TagColor) TagDetails {
	switch tag {
	case TagServiceable:
		return ServiceableDetails{}
	case TagRepairable:
		return RepairableDetails{}
	case TagRemovedNoDefect:
		return RemovedNoDefectDetails{}
	case TagRejected:
		return RejectedDetails{}
	}
	return nil
}

// Clone copia profunda: la copia no comparte el arreglo de historial.
func (p *Part) Clone() *Part {
	if p == nil {
		return nil
	}
	c := *p
	c.History = make([]MovementEvent, len(p.History))
	copy(c.History, p.History)
	return &c
}

// LastEvent devuelve el último evento del historial, si existe.
func (p *Part) LastEvent() (MovementEvent, bool) {
	if p == nil || len(p.History) == 0 {
		return MovementEvent{}, false
	}
	return p.History[len(p.History)-1], true
}
