package movement_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/movement"
)

var (
	t0    = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	actor = entity.Actor{ID: "U-3", Name: "Carlos Ruiz"}
)

func seqBuilder() movement.Builder {
	n := 0
	return movement.NewBuilderWithIDs(func() string {
		n++
		return fmt.Sprintf("EV-%d", n)
	})
}

func basePart(t *testing.T) *entity.Part {
	t.Helper()
	p, err := entity.NewPart("P1", entity.TagRepairable, "HANGAR A", entity.PartInfo{PN: "123-A"},
		entity.RepairableDetails{RemovalReason: "fuga"}, nil)
	require.NoError(t, err)
	p, _, err = seqBuilder().Creation(p, actor, t0)
	require.NoError(t, err)
	return p
}

func TestLocationChange_NoModificaLaEntrada(t *testing.T) {
	p := basePart(t)
	before := p.Clone()

	next, ev, err := seqBuilder().LocationChange(p, "RACK-02", actor, t0.Add(time.Hour), false)
	require.NoError(t, err)

	assert.Equal(t, before, p, "la parte original no cambia")
	assert.Equal(t, "RACK-02", next.Location)
	assert.Equal(t, p.ID, next.ID)
	assert.Equal(t, p.TagColor, next.TagColor)
	require.Len(t, next.History, 2)
	assert.Equal(t, ev, next.History[1])
	assert.Equal(t, entity.MovementEvent{
		ID:               "EV-1",
		Timestamp:        t0.Add(time.Hour),
		Type:             entity.EventTypeLocationChange,
		PreviousLocation: "HANGAR A",
		NewLocation:      "RACK-02",
		ActorID:          actor.ID,
		ActorName:        actor.Name,
	}, ev)

	// el historial nuevo no comparte arreglo con el original
	next.History[0].NewLocation = "X"
	assert.Equal(t, "HANGAR A", p.History[0].NewLocation)
}

func TestLocationChange_NMovimientosSonAppendOnly(t *testing.T) {
	b := seqBuilder()
	p := basePart(t)
	pre := len(p.History)
	firstEvent := p.History[0]
	targets := []string{"RACK-01", "HANGAR B", "CUARENTENA", "RACK-04"}

	var snapshots [][]entity.MovementEvent
	for i, target := range targets {
		next, _, err := b.LocationChange(p, target, actor, t0.Add(time.Duration(i+1)*time.Minute), false)
		require.NoError(t, err)
		snapshots = append(snapshots, next.History)
		p = next
	}

	require.Len(t, p.History, pre+len(targets))
	assert.Equal(t, firstEvent, p.History[0])
	for i := 1; i < len(p.History); i++ {
		assert.True(t, p.History[i].Timestamp.After(p.History[i-1].Timestamp))
		assert.Equal(t, p.History[i-1].NewLocation, p.History[i].PreviousLocation)
	}
	// ningún evento previo cambió entre instantáneas
	for i, snap := range snapshots {
		assert.Equal(t, snap, p.History[:len(snap)], "instantánea %d", i)
	}
}

func TestLocationChange_OverrideQuedaMarcado(t *testing.T) {
	p := basePart(t)
	_, ev, err := seqBuilder().LocationChange(p, "RACK-01", actor, t0, true)
	require.NoError(t, err)
	assert.True(t, ev.Override)
	assert.Equal(t, "RACK-01", ev.NewLocation)
}

func TestLocationChange_EntradaInvalida(t *testing.T) {
	_, _, err := seqBuilder().LocationChange(nil, "RACK-01", actor, t0, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = seqBuilder().LocationChange(basePart(t), "", actor, t0, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreation_SoloSinHistorial(t *testing.T) {
	p := basePart(t)
	require.Len(t, p.History, 1)
	assert.Equal(t, entity.EventTypeCreation, p.History[0].Type)
	assert.Equal(t, "HANGAR A", p.History[0].NewLocation)
	assert.Empty(t, p.History[0].PreviousLocation)

	_, _, err := seqBuilder().Creation(p, actor, t0)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDataUpdate_NoCambiaEtiquetaNiUbicacion(t *testing.T) {
	p := basePart(t)

	next, ev, err := seqBuilder().DataUpdate(p, entity.PartInfo{PN: "123-B"}, entity.RepairableDetails{TechnicalReport: "RT-9"}, actor, t0)
	require.NoError(t, err)
	assert.Equal(t, entity.EventTypeDataUpdate, ev.Type)
	assert.Equal(t, "HANGAR A", next.Location)
	assert.Equal(t, "123-B", next.Info.PN)
	assert.Equal(t, "123-A", p.Info.PN)

	_, _, err = seqBuilder().DataUpdate(p, p.Info, entity.RejectedDetails{}, actor, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVerifyAppend(t *testing.T) {
	b := seqBuilder()
	stored := basePart(t)
	next, _, err := b.LocationChange(stored, "RACK-01", actor, t0.Add(time.Minute), false)
	require.NoError(t, err)

	assert.NoError(t, movement.VerifyAppend(stored, next))
	assert.NoError(t, movement.VerifyAppend(stored, stored), "sin cambios de historial también es válido")

	edited := next.Clone()
	edited.History[0].NewLocation = "OTRO"
	assert.ErrorIs(t, movement.VerifyAppend(stored, edited), domain.ErrConflict)

	truncated := next.Clone()
	truncated.History = nil
	assert.ErrorIs(t, movement.VerifyAppend(stored, truncated), domain.ErrConflict)

	retagged := next.Clone()
	retagged.TagColor = entity.TagServiceable
	assert.ErrorIs(t, movement.VerifyAppend(stored, retagged), domain.ErrConflict)

	// un traslado concurrente ya guardado invalida la instantánea construida antes
	other, _, err := b.LocationChange(stored, "HANGAR B", actor, t0.Add(2*time.Minute), false)
	require.NoError(t, err)
	assert.ErrorIs(t, movement.VerifyAppend(other, next), domain.ErrConflict)
}

func TestVerifyAppend_UbicacionSoloConTraslado(t *testing.T) {
	stored := basePart(t)

	moved := stored.Clone()
	moved.Location = "RACK-04"
	assert.ErrorIs(t, movement.VerifyAppend(stored, moved), domain.ErrConflict, "cambio de ubicación sin evento")

	forged := stored.Clone()
	forged.Location = "RACK-01"
	forged.History = append(forged.History, entity.MovementEvent{
		ID: "EV-X", Timestamp: t0.Add(time.Hour), Type: entity.EventTypeLocationChange,
		PreviousLocation: "NOWHERE", NewLocation: "RACK-01", ActorID: actor.ID, ActorName: actor.Name,
	})
	assert.ErrorIs(t, movement.VerifyAppend(stored, forged), domain.ErrConflict, "origen distinto de la ubicación guardada")

	mismatch := stored.Clone()
	mismatch.Location = "RACK-02"
	mismatch.History = append(mismatch.History, entity.MovementEvent{
		ID: "EV-Y", Timestamp: t0.Add(time.Hour), Type: entity.EventTypeLocationChange,
		PreviousLocation: "HANGAR A", NewLocation: "RACK-01", ActorID: actor.ID, ActorName: actor.Name,
	})
	assert.ErrorIs(t, movement.VerifyAppend(stored, mismatch), domain.ErrConflict, "destino del evento distinto de la ubicación")

	// dos traslados encadenados en una misma escritura
	b := seqBuilder()
	first, _, err := b.LocationChange(stored, "RACK-01", actor, t0.Add(time.Minute), false)
	require.NoError(t, err)
	second, _, err := b.LocationChange(first, "MRB", actor, t0.Add(2*time.Minute), false)
	require.NoError(t, err)
	assert.NoError(t, movement.VerifyAppend(stored, second))
}
