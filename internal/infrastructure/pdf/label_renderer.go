// Package pdf genera la etiqueta imprimible de una parte aeronáutica con Maroto v2.
//
// Layout de la etiqueta (100 x 150 mm):
//
//	┌──────────────────────────────────────┐
//	│  BANDA DE COLOR: estado FAA/EASA     │
//	│  Descripción / P/N / S/N             │
//	│  ──────────────────────────────────  │
//	│  Datos según etiqueta                │
//	│  Ubicación + último movimiento       │
//	│  ──────────────────────────────────  │
//	│  QR parte │ QR ubicación │ foto      │
//	└──────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/aviation-inventory/internal/application/label"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/scan"
)

// Nombres de las imágenes de la superficie.
const (
	AssetPartQR     = "qr-part"
	AssetLocationQR = "qr-location"
	AssetPhoto      = "photo"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorDark  = &props.Color{Red: 30, Green: 30, Blue: 30}
	colorGray  = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert = &props.Color{Red: 190, Green: 0, Blue: 0}
)

func tagColor(t entity.TagColor) (bg, fg *props.Color) {
	switch t {
	case entity.TagServiceable:
		return &props.Color{Red: 255, Green: 204, Blue: 0}, colorDark
	case entity.TagRepairable:
		return &props.Color{Red: 0, Green: 140, Blue: 70}, colorWhite
	case entity.TagRejected:
		return &props.Color{Red: 200, Green: 0, Blue: 0}, colorWhite
	}
	return &props.Color{Red: 235, Green: 235, Blue: 235}, colorDark
}

// ── Renderer ─────────────────────────────────────────────────────────────────

// LabelRenderer implementa label.Renderer. Los QR apuntan a PublicBaseURL.
type LabelRenderer struct {
	baseURL string
	client  *http.Client
}

var _ label.Renderer = (*LabelRenderer)(nil)

// NewLabelRenderer construye el renderer. client nil = http.DefaultClient (solo para fotos remotas).
func NewLabelRenderer(publicBaseURL string, client *http.Client) *LabelRenderer {
	if client == nil {
		client = http.DefaultClient
	}
	return &LabelRenderer{baseURL: publicBaseURL, client: client}
}

// Render arma la superficie: título del trabajo, imágenes a cargar y el compositor del PDF.
// Los datos de la parte se copian aquí, así el documento refleja la instantánea recibida.
func (r *LabelRenderer) Render(_ context.Context, part *entity.Part, dict label.Dictionary) (*label.Surface, error) {
	if part == nil {
		return nil, fmt.Errorf("pdf: parte nil")
	}
	p := part.Clone()

	partURL := scan.PartURL(r.baseURL, p.ID)
	locURL := scan.LocationURL(r.baseURL, p.Location)
	assets := []label.Asset{
		{Name: AssetPartQR, Load: func(context.Context) ([]byte, error) { return qrPNG(partURL) }},
		{Name: AssetLocationQR, Load: func(context.Context) ([]byte, error) { return qrPNG(locURL) }},
	}
	if photo := p.Info.Photo; photo != "" {
		assets = append(assets, label.Asset{
			Name: AssetPhoto,
			Load: func(ctx context.Context) ([]byte, error) { return loadPhoto(ctx, r.client, photo) },
		})
	}

	return &label.Surface{
		Title:   Title(p),
		Assets:  assets,
		Compose: func(loaded map[string][]byte) ([]byte, error) { return compose(p, dict, loaded) },
	}, nil
}

// Title nombre del trabajo de impresión: Etiqueta_<ETIQUETA>_<P/N o ID>.
func Title(p *entity.Part) string {
	ref := p.Info.PN
	if ref == "" {
		ref = p.ID
	}
	ref = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, ref)
	return fmt.Sprintf("Etiqueta_%s_%s", p.TagColor, ref)
}

func compose(p *entity.Part, dict label.Dictionary, loaded map[string][]byte) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(100, 150).
		WithLeftMargin(5).WithRightMargin(5).
		WithTopMargin(5).WithBottomMargin(5).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(Title(p), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(statusRow(p, dict))
	m.AddRows(identityRows(p, dict)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(fieldRows(detailFields(p.Details, dict))...)
	m.AddRows(fieldRows(signatureFields(p.Info, dict))...)
	m.AddRows(locationRows(p, dict)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(imageRow(loaded), hintRow(dict))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiqueta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// statusRow: banda con el color de la etiqueta y el estado FAA/EASA.
func statusRow(p *entity.Part, dict label.Dictionary) core.Row {
	bg, fg := tagColor(p.TagColor)
	return row.New(16).Add(
		col.New(12).Add(
			text.New(dict.Heading, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Color: fg, Top: 1.5,
			}),
			text.New(strings.ToUpper(p.TagColor.Label()), props.Text{
				Style: fontstyle.Bold, Size: 13, Align: align.Center, Color: fg, Top: 7,
			}),
		),
	).WithStyle(&props.Cell{BackgroundColor: bg})
}

// identityRows: descripción, P/N, S/N, marca y modelo.
func identityRows(p *entity.Part, dict label.Dictionary) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New(nonEmpty(p.Info.PartName, p.ID), props.Text{Style: fontstyle.Bold, Size: 11, Top: 2}),
		)),
	}
	return append(rows, fieldRows([]field{
		{dict.PartNumber, p.Info.PN},
		{dict.SerialNumber, p.Info.SN},
		{dict.Brand, p.Info.Brand},
		{dict.Model, p.Info.Model},
	})...)
}

// locationRows: ubicación actual y último evento registrado.
func locationRows(p *entity.Part, dict label.Dictionary) []core.Row {
	rows := []core.Row{
		row.New(9).Add(
			col.New(4).Add(text.New(dict.Location+":", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2})),
			col.New(8).Add(text.New(nonEmpty(p.Location, "—"), props.Text{Style: fontstyle.Bold, Size: 11, Top: 1.5})),
		),
	}
	ev, ok := p.LastEvent()
	if !ok {
		return rows
	}
	rows = append(rows, fieldRows([]field{
		{dict.LastMove, ev.Timestamp.In(time.Local).Format("02/01/2006 15:04")},
		{dict.MovedBy, ev.ActorName},
	})...)
	if ev.Override {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(dict.Override, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 1}),
		)))
	}
	return rows
}

// imageRow: QR de la parte, QR de la ubicación y foto. Una imagen que no alcanzó a cargar
// deja su columna vacía.
func imageRow(loaded map[string][]byte) core.Row {
	cell := func(name string) core.Col {
		c := col.New(4)
		data, ok := loaded[name]
		if !ok {
			return c
		}
		ext, ok := imageExtension(data)
		if !ok {
			return c
		}
		return c.Add(image.NewFromBytes(data, ext, props.Rect{Center: true, Percent: 90}))
	}
	return row.New(30).Add(cell(AssetPartQR), cell(AssetLocationQR), cell(AssetPhoto))
}

func hintRow(dict label.Dictionary) core.Row {
	return row.New(5).Add(col.New(12).Add(
		text.New(dict.ScanHint, props.Text{Size: 6.5, Align: align.Center, Color: colorGray, Top: 1}),
	))
}

// ── Campos ────────────────────────────────────────────────────────────────────

type field struct {
	label, value string
}

// detailFields campos propios de la variante de la etiqueta.
func detailFields(d entity.TagDetails, dict label.Dictionary) []field {
	switch v := d.(type) {
	case entity.ServiceableDetails:
		return []field{{dict.ShelfLife, v.ShelfLife}}
	case entity.RepairableDetails:
		return []field{
			{dict.RemovalReason, v.RemovalReason},
			{dict.TechnicalReport, v.TechnicalReport},
			{dict.RemovedFromAC, v.RemovedFromAC},
			{dict.Position, v.Position},
		}
	case entity.RemovedNoDefectDetails:
		return []field{
			{dict.RemovalReason, v.RemovalReason},
			{dict.RemovedFromAC, v.RemovedFromAC},
			{dict.Position, v.Position},
			{dict.StorageLocation, v.PhysicalStorageLocation},
		}
	case entity.RejectedDetails:
		return []field{
			{dict.RejectionReason, v.RejectionReason},
			{dict.FinalDisposition, v.FinalDisposition},
			{dict.StorageLocation, v.PhysicalStorageLocation},
		}
	}
	return nil
}

func signatureFields(info entity.PartInfo, dict label.Dictionary) []field {
	person := func(name, license string) string {
		if license == "" {
			return name
		}
		return fmt.Sprintf("%s (%s)", name, license)
	}
	return []field{
		{dict.Technician, person(info.TechnicianName, info.TechnicianLicense)},
		{dict.Inspector, person(info.InspectorName, info.InspectorLicense)},
	}
}

// fieldRows una fila etiqueta/valor por campo con valor.
func fieldRows(fields []field) []core.Row {
	var rows []core.Row
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(f.label+":", props.Text{Style: fontstyle.Bold, Size: 7.5, Top: 1})),
			col.New(8).Add(text.New(f.value, props.Text{Size: 7.5, Top: 1})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
