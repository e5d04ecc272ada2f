package label

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

// Trigger ejecuta el ciclo de impresión sobre la instantánea confirmada de una parte.
type Trigger struct {
	renderer     Renderer
	printer      Printer
	presentation Presentation
	recorder     Recorder
	dict         Dictionary
	cfg          Config
	log          zerolog.Logger

	printMu sync.Mutex
}

// NewTrigger construye el disparador. presentation y recorder pueden ser nil.
func NewTrigger(renderer Renderer, printer Printer, presentation Presentation, recorder Recorder, cfg Config, log zerolog.Logger) *Trigger {
	if cfg.AssetTimeout <= 0 {
		cfg.AssetTimeout = DefaultAssetTimeout
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Trigger{
		renderer:     renderer,
		printer:      printer,
		presentation: presentation,
		recorder:     recorder,
		dict:         DictionaryFor(cfg.Locale),
		cfg:          cfg,
		log:          log,
	}
}

// Render solo dibuja y compone el documento, sin imprimir (descargas desde oficina).
func (t *Trigger) Render(ctx context.Context, part *entity.Part) ([]byte, Result, error) {
	surface, err := t.render(ctx, part)
	if err != nil {
		return nil, Result{}, err
	}
	res, loaded := t.await(ctx, surface)
	doc, err := surface.Compose(loaded)
	if err != nil {
		return nil, res, fmt.Errorf("label: componer documento: %w", err)
	}
	return doc, res, nil
}

// PrintLabel renderiza, espera imágenes (con tope), deja asentar la maquetación e imprime
// exactamente una vez. El título de presentación se restaura tanto si imprime como si falla.
// Un timeout de imágenes no es fatal: se imprime lo que alcanzó a cargar.
func (t *Trigger) PrintLabel(ctx context.Context, part *entity.Part) (Result, error) {
	surface, err := t.render(ctx, part)
	if err != nil {
		return Result{}, err
	}

	res, loaded := t.await(ctx, surface)

	if t.cfg.SettleDelay > 0 {
		timer := time.NewTimer(t.cfg.SettleDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return res, fmt.Errorf("label: impresión cancelada: %w", ctx.Err())
		}
	}

	doc, err := surface.Compose(loaded)
	if err != nil {
		t.failed()
		return res, fmt.Errorf("label: componer documento: %w", err)
	}
	if err := t.print(ctx, surface.Title, doc); err != nil {
		t.failed()
		return res, fmt.Errorf("label: imprimir: %w", err)
	}
	res.Printed = true
	if t.recorder != nil {
		t.recorder.Printed()
	}
	t.log.Info().Str("part_id", part.ID).Str("title", surface.Title).Msg("etiqueta impresa")
	return res, nil
}

func (t *Trigger) render(ctx context.Context, part *entity.Part) (*Surface, error) {
	if part == nil {
		return nil, domain.ErrInvalidInput
	}
	surface, err := t.renderer.Render(ctx, part, t.dict)
	if err != nil {
		t.failed()
		return nil, fmt.Errorf("label: render: %w", err)
	}
	if surface == nil || surface.Compose == nil {
		t.failed()
		return nil, fmt.Errorf("label: render sin superficie")
	}
	return surface, nil
}

func (t *Trigger) await(ctx context.Context, surface *Surface) (Result, map[string][]byte) {
	s := AwaitAssets(ctx, surface.Assets, t.cfg.AssetTimeout)
	res := Result{Title: surface.Title, TimedOut: s.TimedOut, Pending: s.Pending}
	for name, err := range s.Failed {
		res.FailedAssets = append(res.FailedAssets, name)
		t.log.Warn().Err(err).Str("asset", name).Msg("imagen de etiqueta no cargó")
	}
	sort.Strings(res.FailedAssets)
	if s.TimedOut {
		if t.recorder != nil {
			t.recorder.AssetTimeout()
		}
		t.log.Warn().
			Err(domain.ErrAssetLoadTimeout).
			Strs("pending", s.Pending).
			Dur("timeout", t.cfg.AssetTimeout).
			Msg("se imprime con render parcial")
	}
	return res, s.Loaded
}

// print invoca la impresora con el título del trabajo fijado. El título es estado compartido,
// por eso las impresiones se serializan.
func (t *Trigger) print(ctx context.Context, title string, doc []byte) error {
	t.printMu.Lock()
	defer t.printMu.Unlock()
	restore := t.scopeTitle(title)
	defer restore()
	return t.printer.Print(ctx, doc)
}

// scopeTitle fija el título del trabajo y devuelve la función que restaura el anterior.
func (t *Trigger) scopeTitle(title string) func() {
	if t.presentation == nil {
		return func() {}
	}
	prev := t.presentation.Title()
	t.presentation.SetTitle(title)
	return func() { t.presentation.SetTitle(prev) }
}

func (t *Trigger) failed() {
	if t.recorder != nil {
		t.recorder.PrintFailed()
	}
}
