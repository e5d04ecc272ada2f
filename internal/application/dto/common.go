package dto

// Límites de paginación de los listados de partes.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación pedida por el cliente.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la página: Limit cero o negativo toma DefaultPageLimit, Limit por
// encima de MaxPageLimit se recorta y Offset negativo pasa a cero.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse página efectivamente aplicada y total de coincidencias.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP: código estable y mensaje legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
