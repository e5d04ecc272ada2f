package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
)

func openSession(t *testing.T, s *testServer, auth string) dto.SessionResponse {
	t.Helper()
	resp, body := s.call(t, http.MethodPost, "/api/scan/sessions", auth, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	sess := decode[dto.SessionResponse](t, body)
	require.Equal(t, "IDLE", sess.Step)
	return sess
}

func TestScan_OverrideDeMaterialRechazado(t *testing.T) {
	s := newServer(t)
	auth := bearer(t, "U-1", "bodega")
	sess := openSession(t, s, auth)
	base := "/api/scan/sessions/" + sess.ID

	resp, body := s.call(t, http.MethodPost, base+"/scan", auth, dto.ScanRequest{Code: "https://inv.example.com/scan/P1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SessionResponse](t, body)
	assert.Equal(t, "PART_IDENTIFIED", got.Step)
	assert.Equal(t, "HANGAR A", got.Part.Location)

	// RED a almacén: rechazado, se ofrece override
	resp, body = s.call(t, http.MethodPost, base+"/destination", auth, dto.DestinationRequest{Code: "https://inv.example.com/location/RACK-01"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[dto.SessionResponse](t, body)
	assert.Equal(t, "PART_IDENTIFIED", got.Step)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "INVALID_DESTINATION", got.LastError.Code)
	assert.True(t, got.OverrideOffered)

	resp, body = s.call(t, http.MethodPost, base+"/override", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	got = decode[dto.SessionResponse](t, body)
	assert.Equal(t, "SUCCESS", got.Step)
	require.NotNil(t, got.LastEvent)
	assert.True(t, got.LastEvent.Override)
	assert.Equal(t, "HANGAR A", got.LastEvent.PreviousLocation)
	assert.Equal(t, "RACK-01", got.LastEvent.NewLocation)
	assert.Equal(t, "Operador U-1", got.LastEvent.ActorName)

	stored, err := s.inv.FindPart(t.Context(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "RACK-01", stored.Location)
	assert.Len(t, stored.History, 1)

	resp, body = s.call(t, http.MethodPost, base+"/reset", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "IDLE", decode[dto.SessionResponse](t, body).Step)
}

func TestScan_SeleccionRapidaYConfirmacion(t *testing.T) {
	s := newServer(t)
	auth := bearer(t, "U-1", "bodega")
	base := "/api/scan/sessions/" + openSession(t, s, auth).ID

	s.call(t, http.MethodPost, base+"/part", auth, dto.ScanRequest{Code: "P1"})
	resp, body := s.call(t, http.MethodPost, base+"/destination", auth, dto.DestinationRequest{Code: "mrb", Quick: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SessionResponse](t, body)
	assert.Equal(t, "LOCATION_SCANNED", got.Step)
	assert.Equal(t, "MRB", got.TargetLocation)
	assert.Equal(t, "QUARANTINE", got.TargetCategory)

	resp, body = s.call(t, http.MethodPost, base+"/back", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PART_IDENTIFIED", decode[dto.SessionResponse](t, body).Step)

	s.call(t, http.MethodPost, base+"/destination", auth, dto.DestinationRequest{Code: "CUARENTENA"})
	resp, body = s.call(t, http.MethodPost, base+"/confirm", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[dto.SessionResponse](t, body)
	assert.Equal(t, "SUCCESS", got.Step)
	assert.False(t, got.LastEvent.Override)
}

func TestScan_ParteNoEncontradaEsAvisoDeSesion(t *testing.T) {
	s := newServer(t)
	auth := bearer(t, "U-1", "bodega")
	base := "/api/scan/sessions/" + openSession(t, s, auth).ID

	resp, body := s.call(t, http.MethodPost, base+"/part", auth, dto.ScanRequest{Code: "NOPE"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SessionResponse](t, body)
	assert.Equal(t, "IDLE", got.Step)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "PART_NOT_FOUND", got.LastError.Code)
}

func TestScan_ErroresHTTP(t *testing.T) {
	s := newServer(t)
	auth := bearer(t, "U-1", "bodega")
	sess := openSession(t, s, auth)
	base := "/api/scan/sessions/" + sess.ID

	resp, body := s.call(t, http.MethodPost, base+"/confirm", auth, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_TRANSITION")

	resp, _ = s.call(t, http.MethodGet, base, bearer(t, "U-2", "bodega"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.call(t, http.MethodPost, base+"/cancel", bearer(t, "U-2", "bodega"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/scan/sessions/no-existe", auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.call(t, http.MethodDelete, base, auth, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = s.call(t, http.MethodGet, base, auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
