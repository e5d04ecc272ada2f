// Package label secuencia la impresión de la etiqueta de una parte ya confirmada:
// render → espera de imágenes (con tope) → asentamiento → impresión única → restauración.
package label

import (
	"context"
	"time"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// Asset imagen raster referenciada por la superficie (QR, foto de la parte).
type Asset struct {
	Name string
	Load func(ctx context.Context) ([]byte, error)
}

// Surface superficie de salida desacoplada: no se imprime hasta que Compose recibe
// las imágenes que alcanzaron a cargar.
type Surface struct {
	Title   string
	Assets  []Asset
	Compose func(loaded map[string][]byte) ([]byte, error)
}

// Renderer dibuja la representación de la etiqueta de una parte.
type Renderer interface {
	Render(ctx context.Context, part *entity.Part, dict Dictionary) (*Surface, error)
}

// Printer invoca la salida impresa. Se asume síncrona una vez invocada.
type Printer interface {
	Print(ctx context.Context, doc []byte) error
}

// Presentation estado de presentación ambiental: el título vigente nombra la salida impresa.
type Presentation interface {
	Title() string
	SetTitle(title string)
}

// Recorder métricas opcionales del ciclo de impresión.
type Recorder interface {
	AssetTimeout()
	Printed()
	PrintFailed()
}

// Config tiempos del ciclo de impresión.
type Config struct {
	AssetTimeout time.Duration // tope de espera de imágenes
	SettleDelay  time.Duration // espera de maquetación antes de imprimir
	Locale       string
}

// Valores por defecto.
const (
	DefaultAssetTimeout = 4 * time.Second
	DefaultSettleDelay  = 300 * time.Millisecond
)

// Result resumen de un ciclo de impresión.
type Result struct {
	Title        string
	Printed      bool
	TimedOut     bool     // la espera de imágenes se cortó por tiempo
	FailedAssets []string // imágenes que terminaron en error
	Pending      []string // imágenes que no terminaron antes del tope
}
