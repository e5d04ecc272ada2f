package printer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/infrastructure/printer"
)

func TestSpool_NombraElArchivoConElTitulo(t *testing.T) {
	dir := t.TempDir()
	s, err := printer.NewSpool(dir)
	require.NoError(t, err)
	assert.Equal(t, printer.DefaultTitle, s.Title())

	s.SetTitle("Etiqueta_RED_PN-1")
	require.NoError(t, s.Print(context.Background(), []byte("%PDF-a")))
	require.NoError(t, s.Print(context.Background(), []byte("%PDF-b")))

	first, err := os.ReadFile(filepath.Join(dir, "Etiqueta_RED_PN-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-a", string(first))
	second, err := os.ReadFile(filepath.Join(dir, "Etiqueta_RED_PN-1-2.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-b", string(second))
}

func TestSpool_TituloInseguroYErrores(t *testing.T) {
	dir := t.TempDir()
	s, err := printer.NewSpool(dir)
	require.NoError(t, err)

	s.SetTitle("../fuera")
	require.NoError(t, s.Print(context.Background(), []byte("x")))
	_, err = os.Stat(filepath.Join(dir, ".._fuera.pdf"))
	assert.NoError(t, err)

	assert.Error(t, s.Print(context.Background(), nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Print(ctx, []byte("x")), context.Canceled)
}
