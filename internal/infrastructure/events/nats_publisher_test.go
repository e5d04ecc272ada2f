package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/events"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
	drained bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subject, c.data = subject, data
	return c.err
}
func (c *fakeConn) Drain() error { c.drained = true; return nil }
func (c *fakeConn) Close()       {}

func TestPublishMovement_PublicaAvisoJSON(t *testing.T) {
	conn := &fakeConn{}
	pub := events.NewPublisher(conn, "inventory.parts.moved")
	part, err := entity.NewPart("P1", entity.TagRejected, "RACK-01", entity.PartInfo{PN: "PN-1"}, nil, nil)
	require.NoError(t, err)
	ev := entity.MovementEvent{
		ID: "E1", Timestamp: time.Date(2025, 5, 2, 15, 0, 0, 0, time.UTC), Type: entity.EventTypeLocationChange,
		PreviousLocation: "HANGAR A", NewLocation: "RACK-01", ActorID: "U-1", ActorName: "María", Override: true,
	}

	require.NoError(t, pub.PublishMovement(context.Background(), part, ev))
	assert.Equal(t, "inventory.parts.moved", conn.subject)

	var got events.MovementNotice
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, events.NoticeFrom(part, ev), got)
	assert.True(t, got.Override)
	assert.Equal(t, "RED", got.TagColor)

	pub.Close()
	assert.True(t, conn.drained)
}

func TestPublishMovement_Errores(t *testing.T) {
	conn := &fakeConn{err: errors.New("desconectado")}
	pub := events.NewPublisher(conn, "s")
	part, _ := entity.NewPart("P1", entity.TagServiceable, "RACK-01", entity.PartInfo{}, nil, nil)

	assert.Error(t, pub.PublishMovement(context.Background(), part, entity.MovementEvent{}))
	assert.Error(t, pub.PublishMovement(context.Background(), nil, entity.MovementEvent{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.PublishMovement(ctx, part, entity.MovementEvent{}), context.Canceled)

	var nilPub *events.Publisher
	assert.Error(t, nilPub.PublishMovement(context.Background(), part, entity.MovementEvent{}))
}
