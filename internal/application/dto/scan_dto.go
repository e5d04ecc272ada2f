package dto

import (
	"time"

	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// ScanRequest texto decodificado por el lector (POST /api/scan/sessions/:id/part|scan).
type ScanRequest struct {
	Code string `json:"code"`
}

// DestinationRequest destino escaneado o elegido en la selección rápida.
type DestinationRequest struct {
	Code  string `json:"code"`
	Quick bool   `json:"quick,omitempty"` // true: selección rápida, el código no pasa por el parser
}

// NoticeDTO aviso al operador.
type NoticeDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// SessionResponse estado visible de una sesión de escaneo.
type SessionResponse struct {
	ID              string                `json:"id"`
	Step            string                `json:"step"`
	Part            *PartDTO              `json:"part,omitempty"`
	TargetLocation  string                `json:"targetLocation,omitempty"`
	TargetCategory  string                `json:"targetCategory,omitempty"`
	OverrideOffered bool                  `json:"overrideOffered"`
	PendingOverride string                `json:"pendingOverride,omitempty"`
	Override        bool                  `json:"override,omitempty"`
	LastError       *NoticeDTO            `json:"lastError,omitempty"`
	PrintNotice     *NoticeDTO            `json:"printNotice,omitempty"`
	LastEvent       *entity.MovementEvent `json:"lastEvent,omitempty"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// SessionFromScanflow convierte la instantánea de la máquina.
func SessionFromScanflow(s scanflow.Session) SessionResponse {
	out := SessionResponse{
		ID:              s.ID,
		Step:            string(s.Step),
		TargetLocation:  s.TargetLocation,
		TargetCategory:  string(s.TargetCategory),
		OverrideOffered: s.OverrideOffered(),
		PendingOverride: s.PendingOverride,
		Override:        s.Override,
		LastError:       noticeDTO(s.LastError),
		PrintNotice:     noticeDTO(s.PrintNotice),
		LastEvent:       s.LastEvent,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.Part != nil {
		p := PartFromEntity(s.Part)
		out.Part = &p
	}
	return out
}

func noticeDTO(n *scanflow.Notice) *NoticeDTO {
	if n == nil {
		return nil
	}
	return &NoticeDTO{Code: n.Code, Message: n.Message, Kind: string(n.Kind)}
}
