package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
	"github.com/jhoicas/aviation-inventory/internal/domain/movement"
	"github.com/jhoicas/aviation-inventory/internal/domain/repository"
	apphttp "github.com/jhoicas/aviation-inventory/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/aviation-inventory/pkg/jwt"
)

// ── Fakes ────────────────────────────────────────────────────────────────────

// fakeParts implementa los casos de uso de partes con respuestas fijas.
type fakeParts struct {
	mu       sync.Mutex
	actor    entity.Actor
	synced   []dto.PartDTO
	syncErr  error
	getErr   error
	labelDoc []byte
}

func (f *fakeParts) Register(_ context.Context, actor entity.Actor, in dto.CreatePartRequest) (*dto.PartDTO, error) {
	f.mu.Lock()
	f.actor = actor
	f.mu.Unlock()
	out := in.PartDTO
	out.ID = "NEW-1"
	return &out, nil
}

func (f *fakeParts) lastActor() entity.Actor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actor
}

func (f *fakeParts) lastSynced() []dto.PartDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synced
}

func (f *fakeParts) UpdateData(_ context.Context, _ entity.Actor, id string, in dto.UpdatePartRequest) (*dto.PartDTO, error) {
	if id != "P1" {
		return nil, domain.ErrNotFound
	}
	out := in.PartDTO
	out.ID = id
	return &out, nil
}

func (f *fakeParts) Get(_ context.Context, id string) (*dto.PartDTO, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dto.PartDTO{ID: id, TagColor: "RED"}, nil
}

func (f *fakeParts) List(_ context.Context, filter repository.PartFilter, page dto.PageRequest) (*dto.PartListResponse, error) {
	if filter.TagColor != "" && !filter.TagColor.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return &dto.PartListResponse{Items: []dto.PartDTO{{ID: "P1", TagColor: string(filter.TagColor)}}, Page: dto.PageResponse{Limit: page.Limit, Total: 1}}, nil
}

func (f *fakeParts) All(context.Context) ([]dto.PartDTO, error) { return nil, nil }

func (f *fakeParts) Sync(_ context.Context, in []dto.PartDTO) (int, error) {
	if f.syncErr != nil {
		return 0, f.syncErr
	}
	f.mu.Lock()
	f.synced = in
	f.mu.Unlock()
	return len(in), nil
}

func (f *fakeParts) Locations(category string) ([]dto.LocationDTO, error) {
	if category == "garaje" {
		return nil, domain.ErrInvalidInput
	}
	return []dto.LocationDTO{{Code: "MRB", Category: "QUARANTINE"}}, nil
}

func (f *fakeParts) Stats(context.Context) (*dto.PartStatsResponse, error) {
	return &dto.PartStatsResponse{ByTag: map[string]int{"RED": 1}, ByLocation: map[string]int{"MRB": 1}}, nil
}

func (f *fakeParts) StockLookup(_ context.Context, pn string) (*dto.StockLookupResponse, error) {
	if pn != "PN-1" {
		return nil, domain.ErrNotFound
	}
	return &dto.StockLookupResponse{PN: pn, Total: 2, Breakdown: map[string]int{"YELLOW": 2}}, nil
}

func (f *fakeParts) BrandStats(context.Context) (map[string]int, error) {
	return map[string]int{"Honeywell": 3}, nil
}

func (f *fakeParts) LocationBreakdown(_ context.Context, loc string) (*dto.TagBreakdownResponse, error) {
	if loc == "" {
		return nil, domain.ErrInvalidInput
	}
	return &dto.TagBreakdownResponse{Location: loc, Total: 1, Breakdown: map[string]int{"RED": 1}}, nil
}

func (f *fakeParts) TypeBreakdown(_ context.Context, name string) (*dto.TagBreakdownResponse, error) {
	if name != "Actuador" {
		return nil, domain.ErrNotFound
	}
	return &dto.TagBreakdownResponse{PartName: name, Total: 2, Breakdown: map[string]int{"GREEN": 2}}, nil
}

func (f *fakeParts) Label(_ context.Context, id string) ([]byte, string, error) {
	if id != "P1" {
		return nil, "", domain.ErrPartNotFound
	}
	return f.labelDoc, "Etiqueta_RED_PN-1", nil
}

type memInventory struct {
	mu    sync.Mutex
	parts map[string]*entity.Part
}

func (m *memInventory) FindPart(_ context.Context, id string) (*entity.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parts[id]
	if !ok {
		return nil, domain.ErrPartNotFound
	}
	return p.Clone(), nil
}

func (m *memInventory) Save(_ context.Context, p *entity.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts[p.ID] = p.Clone()
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type testServer struct {
	app   *fiber.App
	parts *fakeParts
	inv   *memInventory
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	red, err := entity.NewPart("P1", entity.TagRejected, "HANGAR A", entity.PartInfo{PN: "PN-1"}, nil, nil)
	require.NoError(t, err)
	inv := &memInventory{parts: map[string]*entity.Part{"P1": red}}
	reg := scanflow.NewRegistry(scanflow.Deps{
		Inventory: inv,
		Gateway:   inv,
		Validator: location.NewValidator(nil),
		Builder:   movement.NewBuilder(),
		Logger:    zerolog.Nop(),
	}, 0)
	parts := &fakeParts{labelDoc: []byte("%PDF-1.3 etiqueta")}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Parts: parts, Sessions: reg, JWTSecret: authSecret})
	return &testServer{app: app, parts: parts, inv: inv}
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(authSecret, userID, "Operador "+userID, role, "aviation-inventory-test", 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) call(t *testing.T, method, path, auth string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

// ── Parts e inventario ───────────────────────────────────────────────────────

func TestRouter_SinTokenRetorna401(t *testing.T) {
	s := newServer(t)
	resp, _ := s.call(t, http.MethodGet, "/api/parts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestParts_CrearRegistraAlOperador(t *testing.T) {
	s := newServer(t)
	resp, body := s.call(t, http.MethodPost, "/api/parts", bearer(t, "U-1", "tecnico"),
		dto.PartDTO{TagColor: "YELLOW", Location: "RACK-01", PartName: "Actuador"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "NEW-1", decode[dto.PartDTO](t, body).ID)
	assert.Equal(t, entity.Actor{ID: "U-1", Name: "Operador U-1"}, s.parts.lastActor())

	resp, _ = s.call(t, http.MethodPost, "/api/parts", bearer(t, "U-1", "tecnico"), dto.PartDTO{TagColor: "YELLOW"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = s.call(t, http.MethodPost, "/api/parts", bearer(t, "U-2", "bodega"),
		dto.PartDTO{TagColor: "YELLOW", Location: "RACK-01"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestParts_ConsultasYErrores(t *testing.T) {
	s := newServer(t)
	auth := bearer(t, "U-1", "bodega")

	resp, body := s.call(t, http.MethodGet, "/api/parts?tagColor=red&limit=500", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.PartListResponse](t, body)
	assert.Equal(t, "RED", list.Items[0].TagColor)
	assert.Equal(t, 100, list.Page.Limit)

	resp, _ = s.call(t, http.MethodGet, "/api/parts?tagColor=BLUE", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.call(t, http.MethodPut, "/api/parts/NOPE", bearer(t, "U-1", "inspector"), dto.PartDTO{PartName: "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.call(t, http.MethodGet, "/api/locations?category=quarantine", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MRB", decode[[]dto.LocationDTO](t, body)[0].Code)
	resp, _ = s.call(t, http.MethodGet, "/api/locations?category=garaje", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = s.call(t, http.MethodGet, "/api/stock-lookup?pn=PN-1", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[dto.StockLookupResponse](t, body).Total)
	resp, _ = s.call(t, http.MethodGet, "/api/stock-lookup?pn=ZZ", auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.call(t, http.MethodGet, "/api/stats", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.PartStatsResponse](t, body).ByTag["RED"])

	resp, body = s.call(t, http.MethodGet, "/api/stats/brands", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[map[string]int](t, body)["Honeywell"])
	resp, body = s.call(t, http.MethodGet, "/api/stats/type-breakdown?name=Actuador", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[dto.TagBreakdownResponse](t, body).Total)
	resp, _ = s.call(t, http.MethodGet, "/api/stats/type-breakdown?name=Otro", auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.call(t, http.MethodGet, "/api/stats/location-breakdown", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	s.parts.getErr = assert.AnError
	resp, body = s.call(t, http.MethodGet, "/api/parts/P1", auth, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "INTERNAL")
}

func TestParts_EtiquetaPDF(t *testing.T) {
	s := newServer(t)
	resp, body := s.call(t, http.MethodGet, "/api/parts/P1/label", bearer(t, "U-1", "bodega"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Etiqueta_RED_PN-1.pdf")
	assert.Equal(t, "%PDF-1.3 etiqueta", string(body))

	resp, _ = s.call(t, http.MethodGet, "/api/parts/P9/label", bearer(t, "U-1", "bodega"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInventory_ListaYGuarda(t *testing.T) {
	s := newServer(t)
	auth := bearer(t, "U-1", "bodega")

	resp, body := s.call(t, http.MethodGet, "/api/inventory", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))

	resp, body = s.call(t, http.MethodPost, "/api/inventory", auth, []dto.PartDTO{{ID: "P1", TagColor: "RED", Location: "MRB"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.SyncResponse](t, body).Saved)
	assert.Equal(t, "MRB", s.parts.lastSynced()[0].Location)

	s.parts.syncErr = domain.ErrConflict
	resp, body = s.call(t, http.MethodPost, "/api/inventory", auth, []dto.PartDTO{{ID: "P1"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "CONFLICT")
}
