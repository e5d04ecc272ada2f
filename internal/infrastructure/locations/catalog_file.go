// Package locations carga el catálogo de destinos del hangar desde un archivo YAML.
package locations

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/aviation-inventory/internal/domain/location"
)

// File formato del archivo. Una lista ausente conserva los códigos por defecto; una lista
// presente (aunque vacía) los reemplaza.
//
//	quarantine: [CUARENTENA, MRB]
//	storage: [RACK-01, RACK-02]
//	hangar: [HANGAR A]
//	quarantine_tokens: [CUARENTENA, QRNT]
type File struct {
	Quarantine       *[]string `yaml:"quarantine"`
	Storage          *[]string `yaml:"storage"`
	Hangar           *[]string `yaml:"hangar"`
	QuarantineTokens *[]string `yaml:"quarantine_tokens"`
}

// Load lee path. Ruta vacía = catálogo por defecto.
func Load(path string) (*location.Catalog, error) {
	if path == "" {
		return location.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo de ubicaciones: %w", err)
	}
	return Parse(data)
}

// Parse interpreta el YAML. Campos desconocidos son error (evita listas mal escritas que
// se ignorarían en silencio).
func Parse(data []byte) (*location.Catalog, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse catálogo de ubicaciones: %w", err)
	}
	return location.NewCatalog(
		orDefault(f.Quarantine, location.DefaultQuarantine),
		orDefault(f.Storage, location.DefaultStorage),
		orDefault(f.Hangar, location.DefaultHangar),
		orDefault(f.QuarantineTokens, location.DefaultQuarantineTokens),
	), nil
}

func orDefault(list *[]string, def []string) []string {
	if list == nil {
		return def
	}
	return *list
}
