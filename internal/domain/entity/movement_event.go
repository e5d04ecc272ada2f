package entity

import "time"

// Tipos de evento del historial de una parte.
const (
	EventTypeCreation       = "CREATION"        // alta de la parte
	EventTypeLocationChange = "LOCATION_CHANGE" // traslado por doble escaneo
	EventTypeDataUpdate     = "DATA_UPDATE"     // edición de datos descriptivos
)

// MovementEvent registro de auditoría inmutable de una acción sobre la parte.
// Para LOCATION_CHANGE, NewLocation siempre está presente y PreviousLocation es la
// ubicación inmediatamente anterior al evento.
type MovementEvent struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	Type             string    `json:"type"`
	PreviousLocation string    `json:"previousLocation,omitempty"`
	NewLocation      string    `json:"newLocation,omitempty"`
	ActorID          string    `json:"actorId"`
	ActorName        string    `json:"actorName"`
	Override         bool      `json:"override,omitempty"` // traslado forzado sobre la política de destino
}

// Actor operador que ejecuta una acción.
type Actor struct {
	ID   string
	Name string
}
