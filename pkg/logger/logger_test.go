package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/pkg/logger"
)

func TestComponent_EtiquetaYNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	sub := log.Component("scanflow")
	sub.Info().Msg("no debe salir")
	sub.Warn().Str("part_id", "P1").Msg("destino rechazado")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "scanflow", entry["component"])
	assert.Equal(t, "P1", entry["part_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNew_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "ruido", Output: &buf})
	log.Debug().Msg("oculto")
	log.Info().Msg("visible")
	assert.NotContains(t, buf.String(), "oculto")
	assert.Contains(t, buf.String(), "visible")
}
