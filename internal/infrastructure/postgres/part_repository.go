package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

// PartRepo implementación de PartRepository sobre PostgreSQL (usable con pool o tx).
// Datos descriptivos, detalle por etiqueta e historial se guardan como JSONB.
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

const partColumns = `id, tag_color, location, info, details, history`

// Create inserta una parte nueva.
func (r *PartRepo) Create(ctx context.Context, part *entity.Part) error {
	row, err := toRow(part)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO aviation_parts (id, tag_color, location, part_name, pn, sn, info, details, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		part.ID, string(part.TagColor), part.Location, part.Info.PartName, part.Info.PN, part.Info.SN,
		row.info, row.details, row.history,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert part: %w", err)
	}
	return nil
}

// GetByID obtiene una parte; (nil, nil) si no existe.
func (r *PartRepo) GetByID(ctx context.Context, id string) (*entity.Part, error) {
	return r.get(ctx, `SELECT `+partColumns+` FROM aviation_parts WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la fila hasta el fin de la transacción.
func (r *PartRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	return r.get(ctx, `SELECT `+partColumns+` FROM aviation_parts WHERE id = $1 FOR UPDATE`, id)
}

func (r *PartRepo) get(ctx context.Context, query, id string) (*entity.Part, error) {
	p, err := scanPart(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

// Update reemplaza ubicación, datos e historial. La etiqueta no se toca.
func (r *PartRepo) Update(ctx context.Context, part *entity.Part) error {
	row, err := toRow(part)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE aviation_parts
		SET location = $2, part_name = $3, pn = $4, sn = $5, info = $6, details = $7, history = $8, updated_at = now()
		WHERE id = $1`,
		part.ID, part.Location, part.Info.PartName, part.Info.PN, part.Info.SN, row.info, row.details, row.history,
	)
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista partes filtradas, más recientes primero.
func (r *PartRepo) List(ctx context.Context, f repository.PartFilter) ([]*entity.Part, error) {
	where, args := buildWhere(f)
	query := `SELECT ` + partColumns + ` FROM aviation_parts` + where + ` ORDER BY updated_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	var out []*entity.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count total de partes que cumplen el filtro (sin paginación).
func (r *PartRepo) Count(ctx context.Context, f repository.PartFilter) (int, error) {
	where, args := buildWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM aviation_parts`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count parts: %w", err)
	}
	return n, nil
}

// CountByTag conteo por etiqueta.
func (r *PartRepo) CountByTag(ctx context.Context, f repository.PartFilter) (map[entity.TagColor]int, error) {
	where, args := buildWhere(f)
	rows, err := r.q.Query(ctx, `SELECT tag_color, count(*) FROM aviation_parts`+where+` GROUP BY tag_color`, args...)
	if err != nil {
		return nil, fmt.Errorf("count by tag: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.TagColor]int)
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, err
		}
		out[entity.TagColor(tag)] = n
	}
	return out, rows.Err()
}

// CountByLocation conteo por ubicación.
func (r *PartRepo) CountByLocation(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT location, count(*) FROM aviation_parts GROUP BY location`)
	if err != nil {
		return nil, fmt.Errorf("count by location: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var loc string
		var n int
		if err := rows.Scan(&loc, &n); err != nil {
			return nil, err
		}
		out[loc] = n
	}
	return out, rows.Err()
}

// CountByBrand top de marcas por número de partes.
func (r *PartRepo) CountByBrand(ctx context.Context, limit int) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT info->>'brand' AS brand, count(*) FROM aviation_parts
		WHERE coalesce(info->>'brand', '') <> ''
		GROUP BY brand ORDER BY count(*) DESC, brand LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("count by brand: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var brand string
		var n int
		if err := rows.Scan(&brand, &n); err != nil {
			return nil, err
		}
		out[brand] = n
	}
	return out, rows.Err()
}

func buildWhere(f repository.PartFilter) (string, []any) {
	var conds []string
	var args []any
	if f.TagColor != "" {
		args = append(args, string(f.TagColor))
		conds = append(conds, fmt.Sprintf("tag_color = $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, f.Location)
		conds = append(conds, fmt.Sprintf("lower(location) = lower($%d)", len(args)))
	}
	if f.PN != "" {
		args = append(args, f.PN)
		conds = append(conds, fmt.Sprintf("lower(pn) = lower($%d)", len(args)))
	}
	if f.PartName != "" {
		args = append(args, f.PartName)
		conds = append(conds, fmt.Sprintf("lower(part_name) = lower($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ── Mapeo fila ↔ entidad ─────────────────────────────────────────────────────

type partRow struct {
	info, details, history []byte
}

// infoJSON y detailsJSON fijan los nombres de las columnas JSONB independientemente de la API.
type infoJSON struct {
	PartName          string `json:"part_name,omitempty"`
	Brand             string `json:"brand,omitempty"`
	Model             string `json:"model,omitempty"`
	PN                string `json:"pn,omitempty"`
	SN                string `json:"sn,omitempty"`
	TTTAT             string `json:"tt_tat,omitempty"`
	TSO               string `json:"tso,omitempty"`
	TREM              string `json:"trem,omitempty"`
	TC                string `json:"tc,omitempty"`
	CSO               string `json:"cso,omitempty"`
	CREM              string `json:"crem,omitempty"`
	RegistrationDate  string `json:"registration_date,omitempty"`
	Organization      string `json:"organization,omitempty"`
	TechnicianName    string `json:"technician_name,omitempty"`
	TechnicianLicense string `json:"technician_license,omitempty"`
	InspectorName     string `json:"inspector_name,omitempty"`
	InspectorLicense  string `json:"inspector_license,omitempty"`
	Observations      string `json:"observations,omitempty"`
	Photo             string `json:"photo,omitempty"`
}

type detailsJSON struct {
	ShelfLife               string `json:"shelf_life,omitempty"`
	RemovalReason           string `json:"removal_reason,omitempty"`
	TechnicalReport         string `json:"technical_report,omitempty"`
	RemovedFromAC           string `json:"removed_from_ac,omitempty"`
	Position                string `json:"position,omitempty"`
	PhysicalStorageLocation string `json:"physical_storage_location,omitempty"`
	RejectionReason         string `json:"rejection_reason,omitempty"`
	FinalDisposition        string `json:"final_disposition,omitempty"`
}

func toRow(p *entity.Part) (partRow, error) {
	var row partRow
	var err error
	if row.info, err = json.Marshal(infoJSON(p.Info)); err != nil {
		return row, fmt.Errorf("marshal info: %w", err)
	}
	if row.details, err = json.Marshal(detailsToJSON(p.Details)); err != nil {
		return row, fmt.Errorf("marshal details: %w", err)
	}
	history := p.History
	if history == nil {
		history = []entity.MovementEvent{}
	}
	if row.history, err = json.Marshal(history); err != nil {
		return row, fmt.Errorf("marshal history: %w", err)
	}
	return row, nil
}

func scanPart(row pgxScanner) (*entity.Part, error) {
	var id, tag, loc string
	var infoRaw, detailsRaw, historyRaw []byte
	if err := row.Scan(&id, &tag, &loc, &infoRaw, &detailsRaw, &historyRaw); err != nil {
		return nil, err
	}
	var info infoJSON
	if err := json.Unmarshal(infoRaw, &info); err != nil {
		return nil, fmt.Errorf("unmarshal info: %w", err)
	}
	var det detailsJSON
	if err := json.Unmarshal(detailsRaw, &det); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	var history []entity.MovementEvent
	if err := json.Unmarshal(historyRaw, &history); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	t := entity.TagColor(tag)
	return entity.NewPart(id, t, loc, entity.PartInfo(info), detailsFromJSON(t, det), history)
}

type pgxScanner interface {
	Scan(dest ...any) error
}

func detailsToJSON(d entity.TagDetails) detailsJSON {
	switch v := d.(type) {
	case entity.ServiceableDetails:
		return detailsJSON{ShelfLife: v.ShelfLife}
	case entity.RepairableDetails:
		return detailsJSON{RemovalReason: v.RemovalReason, TechnicalReport: v.TechnicalReport, RemovedFromAC: v.RemovedFromAC, Position: v.Position}
	case entity.RemovedNoDefectDetails:
		return detailsJSON{RemovalReason: v.RemovalReason, RemovedFromAC: v.RemovedFromAC, Position: v.Position, PhysicalStorageLocation: v.PhysicalStorageLocation}
	case entity.RejectedDetails:
		return detailsJSON{RejectionReason: v.RejectionReason, FinalDisposition: v.FinalDisposition, PhysicalStorageLocation: v.PhysicalStorageLocation}
	}
	return detailsJSON{}
}

func detailsFromJSON(tag entity.TagColor, d detailsJSON) entity.TagDetails {
	switch tag {
	case entity.TagServiceable:
		return entity.ServiceableDetails{ShelfLife: d.ShelfLife}
	case entity.TagRepairable:
		return entity.RepairableDetails{RemovalReason: d.RemovalReason, TechnicalReport: d.TechnicalReport, RemovedFromAC: d.RemovedFromAC, Position: d.Position}
	case entity.TagRemovedNoDefect:
		return entity.RemovedNoDefectDetails{RemovalReason: d.RemovalReason, RemovedFromAC: d.RemovedFromAC, Position: d.Position, PhysicalStorageLocation: d.PhysicalStorageLocation}
	case entity.TagRejected:
		return entity.RejectedDetails{RejectionReason: d.RejectionReason, FinalDisposition: d.FinalDisposition, PhysicalStorageLocation: d.PhysicalStorageLocation}
	}
	return nil
}
