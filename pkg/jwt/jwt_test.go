package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/pkg/jwt"
)

func TestGenerateParse_IdentidadDelOperador(t *testing.T) {
	tok, err := jwt.Generate("s3cr3t", "U-1", "Ana Ruiz", "bodega", "aviation-inventory", 10)
	require.NoError(t, err)

	claims, err := jwt.Parse("s3cr3t", tok)
	require.NoError(t, err)
	assert.Equal(t, "U-1", claims.UserID)
	assert.Equal(t, "U-1", claims.Subject)
	assert.Equal(t, "Ana Ruiz", claims.UserName)
	assert.Equal(t, "bodega", claims.Role)
	assert.Equal(t, "aviation-inventory", claims.Issuer)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := jwt.Generate("s3cr3t", "U-1", "Ana", "admin", "x", 10)
	require.NoError(t, err)
	expired, err := jwt.Generate("s3cr3t", "U-1", "Ana", "admin", "x", -1)
	require.NoError(t, err)
	noUser, err := jwt.Generate("s3cr3t", "", "Ana", "admin", "x", 10)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", valid)
	assert.Error(t, err)
	_, err = jwt.Parse("s3cr3t", expired)
	assert.Error(t, err)
	_, err = jwt.Parse("s3cr3t", noUser)
	assert.Error(t, err)
	_, err = jwt.Parse("", valid)
	assert.Error(t, err)

	_, err = jwt.Generate("", "U-1", "Ana", "admin", "x", 10)
	assert.Error(t, err)
}
