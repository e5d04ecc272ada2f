package dto

import (
	"fmt"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// PartDTO representación plana de una parte, con los nombres camelCase del backend
// (GET/POST /api/inventory). Los campos de detalle que no corresponden a la etiqueta
// se ignoran al convertir a entidad.
type PartDTO struct {
	ID                string `json:"id"`
	TagColor          string `json:"tagColor"`
	PartName          string `json:"partName"`
	Brand             string `json:"brand,omitempty"`
	Model             string `json:"model,omitempty"`
	PN                string `json:"pn"`
	SN                string `json:"sn"`
	TTTAT             string `json:"ttTat,omitempty"`
	TSO               string `json:"tso,omitempty"`
	TREM              string `json:"trem,omitempty"`
	TC                string `json:"tc,omitempty"`
	CSO               string `json:"cso,omitempty"`
	CREM              string `json:"crem,omitempty"`
	RegistrationDate  string `json:"registrationDate,omitempty"`
	Location          string `json:"location"`
	Photo             string `json:"photo,omitempty"`
	Organization      string `json:"organization,omitempty"`
	TechnicianName    string `json:"technicianName,omitempty"`
	TechnicianLicense string `json:"technicianLicense,omitempty"`
	InspectorName     string `json:"inspectorName,omitempty"`
	InspectorLicense  string `json:"inspectorLicense,omitempty"`
	Observations      string `json:"observations,omitempty"`

	// Detalle según etiqueta.
	ShelfLife               string `json:"shelfLife,omitempty"`
	RemovalReason           string `json:"removalReason,omitempty"`
	TechnicalReport         string `json:"technicalReport,omitempty"`
	RemovedFromAC           string `json:"removedFromAc,omitempty"`
	Position                string `json:"position,omitempty"`
	PhysicalStorageLocation string `json:"physicalStorageLocation,omitempty"`
	RejectionReason         string `json:"rejectionReason,omitempty"`
	FinalDisposition        string `json:"finalDisposition,omitempty"`

	History []entity.MovementEvent `json:"history"`
}

// PartFromEntity aplana la parte para la respuesta.
func PartFromEntity(p *entity.Part) PartDTO {
	out := PartDTO{
		ID:       p.ID,
		TagColor: string(p.TagColor),
		Location: p.Location,
		History:  append([]entity.MovementEvent{}, p.History...),
	}
	out.setInfo(p.Info)
	switch d := p.Details.(type) {
	case entity.ServiceableDetails:
		out.ShelfLife = d.ShelfLife
	case entity.RepairableDetails:
		out.RemovalReason = d.RemovalReason
		out.TechnicalReport = d.TechnicalReport
		out.RemovedFromAC = d.RemovedFromAC
		out.Position = d.Position
	case entity.RemovedNoDefectDetails:
		out.RemovalReason = d.RemovalReason
		out.RemovedFromAC = d.RemovedFromAC
		out.Position = d.Position
		out.PhysicalStorageLocation = d.PhysicalStorageLocation
	case entity.RejectedDetails:
		out.RejectionReason = d.RejectionReason
		out.FinalDisposition = d.FinalDisposition
		out.PhysicalStorageLocation = d.PhysicalStorageLocation
	}
	return out
}

// PartsFromEntities aplana una lista.
func PartsFromEntities(parts []*entity.Part) []PartDTO {
	out := make([]PartDTO, 0, len(parts))
	for _, p := range parts {
		out = append(out, PartFromEntity(p))
	}
	return out
}

// ToEntity convierte a la unión etiquetada. La etiqueta es obligatoria.
func (d PartDTO) ToEntity() (*entity.Part, error) {
	tag := entity.TagColor(d.TagColor)
	if !tag.Valid() {
		return nil, fmt.Errorf("%w: tagColor %q", domain.ErrInvalidInput, d.TagColor)
	}
	return entity.NewPart(d.ID, tag, d.Location, d.Info(), d.Details(tag), d.History)
}

// Info datos comunes.
func (d PartDTO) Info() entity.PartInfo {
	return entity.PartInfo{
		PartName:          d.PartName,
		Brand:             d.Brand,
		Model:             d.Model,
		PN:                d.PN,
		SN:                d.SN,
		TTTAT:             d.TTTAT,
		TSO:               d.TSO,
		TREM:              d.TREM,
		TC:                d.TC,
		CSO:               d.CSO,
		CREM:              d.CREM,
		RegistrationDate:  d.RegistrationDate,
		Organization:      d.Organization,
		TechnicianName:    d.TechnicianName,
		TechnicianLicense: d.TechnicianLicense,
		InspectorName:     d.InspectorName,
		InspectorLicense:  d.InspectorLicense,
		Observations:      d.Observations,
		Photo:             d.Photo,
	}
}

// Details variante de detalle para tag, tomando solo los campos válidos para ella.
func (d PartDTO) Details(tag entity.TagColor) entity.TagDetails {
	switch tag {
	case entity.TagServiceable:
		return entity.ServiceableDetails{ShelfLife: d.ShelfLife}
	case entity.TagRepairable:
		return entity.RepairableDetails{
			RemovalReason:   d.RemovalReason,
			TechnicalReport: d.TechnicalReport,
			RemovedFromAC:   d.RemovedFromAC,
			Position:        d.Position,
		}
	case entity.TagRemovedNoDefect:
		return entity.RemovedNoDefectDetails{
			RemovalReason:           d.RemovalReason,
			RemovedFromAC:           d.RemovedFromAC,
			Position:                d.Position,
			PhysicalStorageLocation: d.PhysicalStorageLocation,
		}
	case entity.TagRejected:
		return entity.RejectedDetails{
			RejectionReason:         d.RejectionReason,
			FinalDisposition:        d.FinalDisposition,
			PhysicalStorageLocation: d.PhysicalStorageLocation,
		}
	}
	return nil
}

func (d *PartDTO) setInfo(i entity.PartInfo) {
	d.PartName = i.PartName
	d.Brand = i.Brand
	d.Model = i.Model
	d.PN = i.PN
	d.SN = i.SN
	d.TTTAT = i.TTTAT
	d.TSO = i.TSO
	d.TREM = i.TREM
	d.TC = i.TC
	d.CSO = i.CSO
	d.CREM = i.CREM
	d.RegistrationDate = i.RegistrationDate
	d.Organization = i.Organization
	d.TechnicianName = i.TechnicianName
	d.TechnicianLicense = i.TechnicianLicense
	d.InspectorName = i.InspectorName
	d.InspectorLicense = i.InspectorLicense
	d.Observations = i.Observations
	d.Photo = i.Photo
}

// CreatePartRequest body para POST /api/parts. El ID es opcional (se genera UUID).
type CreatePartRequest struct {
	PartDTO
}

// UpdatePartRequest body para PUT /api/parts/:id. tagColor, location e history se ignoran.
type UpdatePartRequest struct {
	PartDTO
}

// PartListResponse respuesta paginada de partes.
type PartListResponse struct {
	Items []PartDTO    `json:"items"`
	Page  PageResponse `json:"page"`
}

// PartStatsResponse conteos por etiqueta y por ubicación (GET /api/stats).
type PartStatsResponse struct {
	ByTag      map[string]int `json:"byTag"`
	ByLocation map[string]int `json:"byLocation"`
}

// StockLookupResponse existencias de un P/N por etiqueta (GET /api/stock-lookup).
type StockLookupResponse struct {
	PartName  string         `json:"partName"`
	PN        string         `json:"pn"`
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// TagBreakdownResponse conteo por etiqueta de una ubicación o de un tipo de parte
// (GET /api/stats/location-breakdown, /api/stats/type-breakdown).
type TagBreakdownResponse struct {
	Location  string         `json:"location,omitempty"`
	PartName  string         `json:"partName,omitempty"`
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// LocationDTO destino del catálogo para selección rápida.
type LocationDTO struct {
	Code     string `json:"code"`
	Category string `json:"category"`
}

// SyncResponse respuesta de POST /api/inventory.
type SyncResponse struct {
	Message string `json:"message"`
	Saved   int    `json:"saved"`
}
