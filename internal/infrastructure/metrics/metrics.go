// Package metrics métricas Prometheus del flujo de escaneo y de la impresión de etiquetas.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/aviation-inventory/internal/application/label"
	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
)

const namespace = "inventory"

var (
	_ scanflow.Recorder = (*Metrics)(nil)
	_ label.Recorder    = (*Metrics)(nil)
)

// Metrics colectores registrados en un Registerer propio (tests) o en el global.
type Metrics struct {
	transitions   *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	prints        *prometheus.CounterVec
	assetTimeouts prometheus.Counter
	sessions      prometheus.Gauge
}

// New crea y registra los colectores. reg nil = prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_transitions_total",
				Help:      "Transiciones de la máquina de doble escaneo por paso origen y destino",
			},
			[]string{"from", "to"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_outcomes_total",
				Help:      "Resultados del flujo de traslado",
			},
			[]string{"outcome"},
		),
		prints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "label_prints_total",
				Help:      "Impresiones de etiqueta por resultado",
			},
			[]string{"result"},
		),
		assetTimeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "label_asset_timeouts_total",
				Help:      "Impresiones hechas con render parcial por timeout de imágenes",
			},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scan_sessions_open",
				Help:      "Sesiones de escaneo abiertas",
			},
		),
	}
	reg.MustRegister(m.transitions, m.outcomes, m.prints, m.assetTimeouts, m.sessions)
	return m
}

// Transition implementa scanflow.Recorder.
func (m *Metrics) Transition(from, to scanflow.Step) {
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// Outcome implementa scanflow.Recorder.
func (m *Metrics) Outcome(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}

// AssetTimeout implementa label.Recorder.
func (m *Metrics) AssetTimeout() { m.assetTimeouts.Inc() }

// Printed implementa label.Recorder.
func (m *Metrics) Printed() { m.prints.WithLabelValues("printed").Inc() }

// PrintFailed implementa label.Recorder.
func (m *Metrics) PrintFailed() { m.prints.WithLabelValues("failed").Inc() }

// SessionsOpen fija el número de sesiones abiertas.
func (m *Metrics) SessionsOpen(n int) { m.sessions.Set(float64(n)) }
