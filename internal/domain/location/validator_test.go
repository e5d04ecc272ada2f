package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
)

var allTags = []entity.TagColor{entity.TagServiceable, entity.TagRepairable, entity.TagRemovedNoDefect, entity.TagRejected}

func TestValidate_RechazadaSoloACuarentena(t *testing.T) {
	v := location.NewValidator(nil)
	candidates := append(append(append([]string{}, location.DefaultStorage...), location.DefaultHangar...),
		"TALLER-3", "zona libre", "MRB2", "CUARENTENAX")

	for _, d := range candidates {
		got := v.Validate(entity.TagRejected, d)
		assert.False(t, got.Valid, "destino %q no es cuarentena", d)
		assert.NotEmpty(t, got.Reason)
	}
	for _, d := range location.DefaultQuarantine {
		got := v.Validate(entity.TagRejected, d)
		assert.True(t, got.Valid, "destino %q es cuarentena", d)
		assert.Equal(t, entity.CategoryQuarantine, got.Category)
	}
}

func TestValidate_OtrasEtiquetasSinRestriccion(t *testing.T) {
	v := location.NewValidator(nil)
	for _, tag := range allTags[:3] {
		for _, d := range []string{"RACK-01", "HANGAR A", "CUARENTENA", "CUALQUIER-LUGAR"} {
			assert.True(t, v.Validate(tag, d).Valid, "%s → %s", tag, d)
		}
	}
}

func TestValidate_CodigoLibreConTokenReservadoEsCuarentena(t *testing.T) {
	v := location.NewValidator(nil)
	for _, d := range []string{"qrnt-hangar-2", "Jaula / CUARENTENA", "BODEGA_QUARANTINE"} {
		got := v.Validate(entity.TagRejected, d)
		assert.True(t, got.Valid, d)
		assert.Equal(t, entity.CategoryQuarantine, got.Category)
	}
	assert.Equal(t, entity.CategoryUnclassified, v.Validate(entity.TagServiceable, "TALLER-3").Category)
}

func TestValidate_DestinoVacioEsInvalido(t *testing.T) {
	v := location.NewValidator(nil)
	for _, tag := range allTags {
		got := v.Validate(tag, "   ")
		assert.False(t, got.Valid)
	}
}

func TestValidate_EsDeterminista(t *testing.T) {
	v := location.NewValidator(nil)
	for _, tag := range allTags {
		for _, d := range []string{"RACK-01", "cuarentena", "", "X"} {
			assert.Equal(t, v.Validate(tag, d), v.Validate(tag, d))
		}
	}
}

func TestCatalog_NormalizaYAgrupa(t *testing.T) {
	c := location.NewCatalog([]string{"mrb"}, []string{" rack-9 ", "MRB"}, []string{"hangar   c"}, nil)

	assert.Equal(t, entity.CategoryQuarantine, c.Classify("MRB"), "la primera categoría gana")
	assert.Equal(t, entity.CategoryStorage, c.Classify("Rack-9"))
	assert.Equal(t, entity.CategoryHangar, c.Classify("HANGAR C"))
	assert.True(t, c.Known("rack-9"))
	assert.False(t, c.Known("CUARENTENA"))

	storage := c.ByCategory(entity.CategoryStorage)
	require.Len(t, storage, 1)
	assert.Equal(t, "RACK-9", storage[0].Code)
	assert.Len(t, c.List(), 3)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "HANGAR A", location.Normalize("  hangar \t a "))
	assert.Equal(t, "", location.Normalize("   "))
	assert.Equal(t, "BODEGA-NIÑO", location.Normalize("bodega-niño"))
}
