// Package events publica en NATS los traslados confirmados para que otros sistemas
// (tablero de hangar, reportes de cumplimiento) se enteren sin consultar la base.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

var _ scanflow.MovementPublisher = (*Publisher)(nil)

// MovementNotice mensaje publicado por cada traslado confirmado.
type MovementNotice struct {
	EventID          string    `json:"eventId"`
	PartID           string    `json:"partId"`
	PN               string    `json:"pn,omitempty"`
	SN               string    `json:"sn,omitempty"`
	TagColor         string    `json:"tagColor"`
	PreviousLocation string    `json:"previousLocation"`
	NewLocation      string    `json:"newLocation"`
	ActorID          string    `json:"actorId"`
	ActorName        string    `json:"actorName"`
	Override         bool      `json:"override"`
	Timestamp        time.Time `json:"timestamp"`
}

// NoticeFrom arma el mensaje a partir de la parte guardada y su evento.
func NoticeFrom(part *entity.Part, ev entity.MovementEvent) MovementNotice {
	return MovementNotice{
		EventID:          ev.ID,
		PartID:           part.ID,
		PN:               part.Info.PN,
		SN:               part.Info.SN,
		TagColor:         string(part.TagColor),
		PreviousLocation: ev.PreviousLocation,
		NewLocation:      ev.NewLocation,
		ActorID:          ev.ActorID,
		ActorName:        ev.ActorName,
		Override:         ev.Override,
		Timestamp:        ev.Timestamp,
	}
}

// Conn lo que el publicador usa de *nats.Conn.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// Publisher publica MovementNotice en un subject fijo.
type Publisher struct {
	conn    Conn
	subject string
}

// Connect abre la conexión a NATS.
func Connect(url, subject string, opts ...nats.Option) (*Publisher, error) {
	opts = append([]nats.Option{nats.Name("aviation-inventory")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return NewPublisher(nc, subject), nil
}

// NewPublisher publicador sobre una conexión existente.
func NewPublisher(conn Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject}
}

// PublishMovement serializa y publica el aviso.
func (p *Publisher) PublishMovement(ctx context.Context, part *entity.Part, ev entity.MovementEvent) error {
	if p == nil || p.conn == nil {
		return errors.New("events: publicador sin conexión")
	}
	if part == nil {
		return errors.New("events: parte nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(NoticeFrom(part, ev))
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}

// Close vacía y cierra la conexión.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
