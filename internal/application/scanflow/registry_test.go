package scanflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
	"github.com/jhoicas/aviation-inventory/internal/domain/movement"
)

func newRegistry(t *testing.T, now *time.Time, gw *fakeGateway) *scanflow.Registry {
	t.Helper()
	inv := &fakeInventory{parts: map[string]*entity.Part{"P1": newPart(t, "P1", entity.TagServiceable, "RACK-01")}}
	return scanflow.NewRegistry(scanflow.Deps{
		Inventory: inv,
		Gateway:   gw,
		Validator: location.NewValidator(nil),
		Builder:   movement.NewBuilder(),
		Logger:    zerolog.Nop(),
		Clock:     func() time.Time { return *now },
	}, 10*time.Minute)
}

func TestRegistry_SesionPerteneceAlOperador(t *testing.T) {
	now := testNow
	r := newRegistry(t, &now, &fakeGateway{})

	m := r.Open(entity.Actor{ID: "U-1", Name: "Ana"})
	got, err := r.Get(m.ID(), "U-1")
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = r.Get(m.ID(), "U-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = r.Get("no-existe", "U-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, r.Close(m.ID(), "U-1"))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SweepDescartaInactivasPeroNoConfirmando(t *testing.T) {
	now := testNow
	gw := &fakeGateway{block: make(chan struct{}), entered: make(chan struct{})}
	r := newRegistry(t, &now, gw)
	ctx := context.Background()

	idle := r.Open(entity.Actor{ID: "U-1"})
	busy := r.Open(entity.Actor{ID: "U-2"})
	_, err := busy.ScanPart(ctx, "P1")
	require.NoError(t, err)
	_, err = busy.SelectDestination(ctx, "RACK-02")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = busy.Confirm(ctx)
	}()
	<-gw.entered

	now = now.Add(time.Hour)
	assert.Equal(t, 1, r.Sweep(now))
	assert.Equal(t, 1, r.Len())
	_, err = r.Get(idle.ID(), "U-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Close(busy.ID(), "U-2"), domain.ErrSessionBusy)

	close(gw.block)
	<-done
	_, err = r.Get(busy.ID(), "U-2")
	require.NoError(t, err)
}

type gaugeFunc func(int)

func (g gaugeFunc) SessionsOpen(n int) { g(n) }

func TestRegistry_ReportaSesionesAbiertas(t *testing.T) {
	now := testNow
	var seen []int
	r := newRegistry(t, &now, &fakeGateway{}).WithGauge(gaugeFunc(func(n int) { seen = append(seen, n) }))

	a := r.Open(entity.Actor{ID: "U-1"})
	r.Open(entity.Actor{ID: "U-2"})
	require.NoError(t, r.Close(a.ID(), "U-1"))
	assert.Equal(t, 1, r.Sweep(now.Add(time.Hour)))
	assert.Equal(t, []int{1, 2, 1, 0}, seen)
}
