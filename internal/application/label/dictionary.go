package label

import "golang.org/x/text/language"

// Dictionary textos de la etiqueta según idioma.
type Dictionary struct {
	Lang             string
	Heading          string
	Status           string
	PartName         string
	PartNumber       string
	SerialNumber     string
	Brand            string
	Model            string
	Location         string
	LastMove         string
	MovedBy          string
	Override         string
	ShelfLife        string
	RemovalReason    string
	TechnicalReport  string
	RemovedFromAC    string
	Position         string
	StorageLocation  string
	RejectionReason  string
	FinalDisposition string
	Technician       string
	Inspector        string
	ScanHint         string
}

var (
	dictES = Dictionary{
		Lang:             "es",
		Heading:          "ETIQUETA DE MATERIAL AERONÁUTICO",
		Status:           "Estado",
		PartName:         "Descripción",
		PartNumber:       "P/N",
		SerialNumber:     "S/N",
		Brand:            "Marca",
		Model:            "Modelo",
		Location:         "Ubicación",
		LastMove:         "Último movimiento",
		MovedBy:          "Responsable",
		Override:         "TRASLADO FORZADO (override)",
		ShelfLife:        "Vida útil",
		RemovalReason:    "Motivo de remoción",
		TechnicalReport:  "Reporte técnico",
		RemovedFromAC:    "Removido de aeronave",
		Position:         "Posición",
		StorageLocation:  "Almacenamiento físico",
		RejectionReason:  "Motivo de rechazo",
		FinalDisposition: "Disposición final",
		Technician:       "Técnico",
		Inspector:        "Inspector",
		ScanHint:         "Escanee para ver la trazabilidad",
	}
	dictEN = Dictionary{
		Lang:             "en",
		Heading:          "AVIATION MATERIAL TAG",
		Status:           "Status",
		PartName:         "Description",
		PartNumber:       "P/N",
		SerialNumber:     "S/N",
		Brand:            "Brand",
		Model:            "Model",
		Location:         "Location",
		LastMove:         "Last move",
		MovedBy:          "Moved by",
		Override:         "OVERRIDE TRANSFER",
		ShelfLife:        "Shelf life",
		RemovalReason:    "Removal reason",
		TechnicalReport:  "Technical report",
		RemovedFromAC:    "Removed from A/C",
		Position:         "Position",
		StorageLocation:  "Physical storage",
		RejectionReason:  "Rejection reason",
		FinalDisposition: "Final disposition",
		Technician:       "Technician",
		Inspector:        "Inspector",
		ScanHint:         "Scan for traceability",
	}
)

var dictMatcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

// DictionaryFor elige el diccionario más cercano al locale (ej. "es-CO", "en-US").
// Español por defecto.
func DictionaryFor(locale string) Dictionary {
	_, idx := language.MatchStrings(dictMatcher, locale)
	if idx == 1 {
		return dictEN
	}
	return dictES
}
