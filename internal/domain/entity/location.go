package entity

// LocationCategory categoría física de un destino.
type LocationCategory string

const (
	CategoryQuarantine   LocationCategory = "QUARANTINE"
	CategoryStorage      LocationCategory = "STORAGE"
	CategoryHangar       LocationCategory = "HANGAR"
	CategoryUnclassified LocationCategory = "UNCLASSIFIED" // código libre sin categoría
)

// Location destino conocido del catálogo.
type Location struct {
	Code     string           `json:"code"`
	Category LocationCategory `json:"category"`
}
