// Package scan interpreta el texto decodificado por el lector de códigos de barras/QR.
package scan

import (
	"net/url"
	"strings"

	"github.com/jhoicas/aviation-inventory/internal/domain/location"
)

// Kind tipo de código reconocido.
type Kind string

const (
	KindPart     Kind = "PART"     // URL con segmento /scan/{id}
	KindLocation Kind = "LOCATION" // URL con segmento /location/{code}
	KindRaw      Kind = "RAW"      // texto sin URL reconocible
)

const (
	segmentPart     = "scan"
	segmentLocation = "location"
)

// Code resultado etiquetado del parser.
type Code struct {
	Kind  Kind
	Value string
}

// Parse reconoce las dos formas de URL embebida; cualquier otra cosa se devuelve tal cual.
// Soporta rutas con hash (https://host/#/scan/P-1) y query strings.
func Parse(raw string) Code {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Code{Kind: KindRaw}
	}
	for _, p := range candidatePaths(raw) {
		if kind, value, ok := matchSegments(p); ok {
			return Code{Kind: kind, Value: value}
		}
	}
	return Code{Kind: KindRaw, Value: raw}
}

// ParsePart interpreta un escaneo de parte. Un RAW se usa literal como ID.
func ParsePart(raw string) Code {
	return Parse(raw)
}

// ParseLocation interpreta un escaneo de destino; el valor queda normalizado a mayúsculas.
func ParseLocation(raw string) Code {
	c := Parse(raw)
	c.Value = location.Normalize(c.Value)
	return c
}

// PartURL URL que se imprime en el QR de la etiqueta de una parte.
func PartURL(baseURL, partID string) string {
	return strings.TrimRight(baseURL, "/") + "/" + segmentPart + "/" + url.PathEscape(partID)
}

// LocationURL URL que se imprime en el QR de una ubicación.
func LocationURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/" + segmentLocation + "/" + url.PathEscape(code)
}

// candidatePaths rutas donde buscar los segmentos: path y fragmento de la URL, o el texto completo.
func candidatePaths(raw string) []string {
	if !strings.Contains(raw, "/") {
		return nil
	}
	if u, err := url.Parse(raw); err == nil && (u.Scheme != "" || u.Host != "") {
		paths := []string{u.EscapedPath()}
		if u.Fragment != "" {
			paths = append(paths, u.EscapedFragment())
		}
		return paths
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return []string{raw}
}

func matchSegments(path string) (Kind, string, bool) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(path, "/")
	for i := 0; i+1 < len(segs); i++ {
		var kind Kind
		switch strings.ToLower(segs[i]) {
		case segmentPart:
			kind = KindPart
		case segmentLocation:
			kind = KindLocation
		default:
			continue
		}
		value, err := url.PathUnescape(segs[i+1])
		if err != nil {
			value = segs[i+1]
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		return kind, value, true
	}
	return "", "", false
}
